package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gowvp/tally/internal/conf"
	"github.com/gowvp/tally/internal/data"
)

// Run 启动 HTTP 服务，阻塞直到 ctx 取消
func Run(ctx context.Context, bc *conf.Bootstrap) error {
	db, err := data.SetupDB(bc)
	if err != nil {
		// 存储不可用时历史功能降级，计数会话仍可正常运行
		slog.Error("setup database failed, history disabled", "err", err)
		db = nil
	}

	handler, cleanup, err := wireApp(bc, db)
	if err != nil {
		return fmt.Errorf("wire app: %w", err)
	}
	defer cleanup()

	srv := http.Server{
		Addr:    fmt.Sprintf(":%d", bc.Server.HTTP.Port),
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("http server started", "port", bc.Server.HTTP.Port, "version", bc.BuildVersion)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
