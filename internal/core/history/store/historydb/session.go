package historydb

import (
	"context"

	"github.com/gowvp/tally/internal/core/history"
	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
)

var _ history.SessionStorer = (*Session)(nil)

type Session struct {
	db *gorm.DB
}

func (s *Session) model(ctx context.Context, opts []orm.QueryOption) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(new(history.Session))
	for _, opt := range opts {
		tx = opt(tx)
	}
	return tx
}

// Find implements history.SessionStorer.
func (s *Session) Find(ctx context.Context, out *[]*history.Session, pager orm.Pager, opts ...orm.QueryOption) (int64, error) {
	var total int64
	if err := s.model(ctx, opts).Count(&total).Error; err != nil {
		return 0, err
	}
	err := s.model(ctx, opts).Offset(pager.Offset()).Limit(pager.Limit()).Find(out).Error
	return total, err
}

// Get implements history.SessionStorer.
func (s *Session) Get(ctx context.Context, out *history.Session, opts ...orm.QueryOption) error {
	return s.model(ctx, opts).First(out).Error
}

// Add implements history.SessionStorer.
func (s *Session) Add(ctx context.Context, b *history.Session) error {
	return s.db.WithContext(ctx).Create(b).Error
}

// Count implements history.SessionStorer.
func (s *Session) Count(ctx context.Context, opts ...orm.QueryOption) (int64, error) {
	var total int64
	err := s.model(ctx, opts).Count(&total).Error
	return total, err
}

// Session implements history.SessionStorer.
// 所有变更在单个事务内执行，保证整体成功或整体回滚
func (s *Session) Session(ctx context.Context, changeFns ...func(*gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, fn := range changeFns {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	})
}
