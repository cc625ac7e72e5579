package data

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/wire"
	"github.com/gowvp/tally/internal/conf"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/system"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(SetupDB)

// SetupDB 初始化会话历史存储
// 单机默认内嵌 sqlite，dsn 带 postgres/mysql 前缀时切换对应数据库
func SetupDB(c *conf.Bootstrap) (*gorm.DB, error) {
	cfg := c.Data.Database
	dial, isSQLite := getDialector(cfg.Dsn)
	if isSQLite {
		// sqlite 单写者，连接数收敛到 1 避免锁竞争
		cfg.MaxIdleConns = 1
		cfg.MaxOpenConns = 1
	}
	slog.Info("setup database", "driver", dial.Name())
	return orm.New(dial, orm.Config{
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime.Duration(),
		SlowThreshold:   cfg.SlowThreshold.Duration(),
	})
}

// getDialector 返回 dial 和 是否 sqlite
func getDialector(dsn string) (gorm.Dialector, bool) {
	switch {
	case strings.HasPrefix(dsn, "postgres"):
		return postgres.New(postgres.Config{
			DriverName: "pgx",
			DSN:        dsn,
		}), false
	case strings.HasPrefix(dsn, "mysql"):
		return mysql.Open(dsn), false
	default:
		return sqlite.Open(filepath.Join(system.Getwd(), dsn)), true
	}
}
