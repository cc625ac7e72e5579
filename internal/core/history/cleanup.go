package history

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// StartCleanupWorker 启动定时清理协程，按天清理一次过期会话
// days 指定保留天数，<=0 表示不清理
func (c Core) StartCleanupWorker() {
	days := 0
	if c.conf != nil {
		days = c.conf.RetainDays
	}
	if days <= 0 || c.store == nil {
		slog.Info("session cleanup disabled", "days", days)
		return
	}

	slog.Info("session cleanup worker started", "retain_days", days)

	// 启动时先执行一次清理
	c.cleanupExpiredSessions(days)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanupExpiredSessions(days)
	}
}

// cleanupExpiredSessions 删除超过保留期的会话记录，单事务执行
func (c Core) cleanupExpiredSessions(days int) {
	ctx := context.Background()
	cutoff := time.Now().AddDate(0, 0, -days)

	slog.Info("starting session cleanup", "cutoff_time", cutoff.Format(time.DateTime), "retain_days", days)

	var deleted int64
	err := c.store.Session().Session(ctx, func(tx *gorm.DB) error {
		result := tx.Where("created_at < ?", cutoff).Delete(&Session{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		slog.Error("session cleanup failed", "err", err)
		return
	}

	slog.Info("session cleanup completed", "sessions_deleted", deleted)
}
