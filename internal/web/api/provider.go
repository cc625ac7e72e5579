package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/gowvp/tally/internal/conf"
	"github.com/gowvp/tally/internal/core/counting"
	"github.com/gowvp/tally/internal/core/detect"
	"github.com/gowvp/tally/internal/core/history"
	"github.com/gowvp/tally/internal/core/history/store/historydb"
	"github.com/gowvp/tally/internal/rpc"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/web"
	"gorm.io/gorm"
)

var ProviderSet = wire.NewSet(
	wire.Struct(new(Usecase), "*"),
	NewHTTPHandler,
	NewHistoryStore, NewHistoryCore, NewHistoryAPI,
	NewDetector, NewController, NewCounterAPI,
	NewUserAPI,
)

type Usecase struct {
	Conf *conf.Bootstrap
	DB   *gorm.DB

	UserAPI    UserAPI
	CounterAPI CounterAPI
	HistoryAPI HistoryAPI
}

// NewHTTPHandler 生成Gin框架路由内容
func NewHTTPHandler(uc *Usecase) http.Handler {
	cfg := uc.Conf.Server
	if cfg.HTTP.JwtSecret == "" {
		uc.Conf.Server.HTTP.JwtSecret = orm.GenerateRandomString(32)
	}
	if !uc.Conf.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	g := gin.New()
	// 如果启用了 Pprof，设置 Pprof 监控
	if cfg.HTTP.PProf.Enabled {
		web.SetupPProf(g, &cfg.HTTP.PProf.AccessIps)
	}

	setupRouter(g, uc)
	return g
}

// NewHistoryStore 创建会话历史存储层
// db 为 nil 时返回 nil store，历史域进入降级模式
func NewHistoryStore(db *gorm.DB) history.Storer {
	if db == nil {
		return nil
	}
	return historydb.NewDB(db).AutoMigrate(orm.GetEnabledAutoMigrate())
}

// NewHistoryCore 创建会话历史核心服务
func NewHistoryCore(store history.Storer, cfg *conf.Bootstrap) history.Core {
	core := history.NewCore(store, history.WithConfig(&cfg.Server.History))

	// 启动过期会话清理协程
	go core.StartCleanupWorker()

	return core
}

// NewDetector 创建检测能力客户端，未配置地址时返回 nil（会话无法启动）
func NewDetector(cfg *conf.Bootstrap) detect.Detector {
	if cfg.Detector.Addr == "" {
		return nil
	}
	return rpc.NewAnalysisClient(cfg.Detector.Addr, cfg.Detector.Timeout.Duration())
}

// NewController 创建会话控制器
// 依赖 counting.SessionSaver 接口而非 history.Core，避免循环依赖
func NewController(cfg *conf.Bootstrap, detector detect.Detector, historyCore history.Core) *counting.Controller {
	ctrl := counting.NewController(detector, historyCore,
		counting.WithThreshold(cfg.Detector.Threshold),
		counting.WithAllowed(cfg.Detector.Classes),
		counting.WithDisplay(cfg.Counter.DisplayWidth, cfg.Counter.DisplayHeight),
	)

	// 配置了拉流源时启动节拍循环
	if cfg.Counter.SourcePath != "" {
		go ctrl.Run(context.Background(), counting.NewStaticSource(cfg.Counter.SourcePath), cfg.Counter.TickInterval.Duration())
	}
	return ctrl
}
