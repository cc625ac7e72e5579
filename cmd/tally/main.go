package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gowvp/tally/internal/app"
	"github.com/gowvp/tally/internal/conf"
	"github.com/ixugo/goddd/pkg/system"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// buildVersion 由编译参数注入
var buildVersion = "dev"

func main() {
	configPath := flag.String("c", filepath.Join(system.Getwd(), "configs", "config.toml"), "配置文件路径")
	flag.Parse()

	cfg, err := conf.SetupConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	cfg.BuildVersion = buildVersion

	setupLogger(cfg.Debug)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

// setupLogger 日志同时输出到控制台与按天滚动的日志文件
func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	writer, err := rotatelogs.New(
		filepath.Join(system.Getwd(), "logs", "tally.%Y%m%d.log"),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err == nil {
		out = io.MultiWriter(os.Stdout, writer)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})))
}
