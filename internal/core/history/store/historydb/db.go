package historydb

import (
	"log/slog"

	"github.com/gowvp/tally/internal/core/history"
	"gorm.io/gorm"
)

var _ history.Storer = DB{}

type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) DB {
	return DB{db: db}
}

// AutoMigrate 按需建表
func (d DB) AutoMigrate(ok bool) DB {
	if !ok {
		return d
	}
	if err := d.db.AutoMigrate(new(history.Session)); err != nil {
		slog.Error("AutoMigrate", "err", err)
	}
	return d
}

// Session implements history.Storer.
func (d DB) Session() history.SessionStorer {
	return &Session{db: d.db}
}
