package history

import (
	"context"

	"github.com/gowvp/tally/internal/conf"
	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
)

// Storer data persistence
type Storer interface {
	Session() SessionStorer
}

// SessionStorer Instantiation interface
// 会话记录只增不改，不提供 Edit；删除仅通过事务批量执行
type SessionStorer interface {
	Find(context.Context, *[]*Session, orm.Pager, ...orm.QueryOption) (int64, error)
	Get(context.Context, *Session, ...orm.QueryOption) error
	Add(context.Context, *Session) error
	Count(context.Context, ...orm.QueryOption) (int64, error)

	Session(context.Context, ...func(*gorm.DB) error) error
}

// Core business domain
type Core struct {
	store Storer
	conf  *conf.ServerHistory
}

type Option func(*Core)

// WithConfig 注入历史保留配置
func WithConfig(conf *conf.ServerHistory) Option {
	return func(c *Core) {
		c.conf = conf
	}
}

// NewCore create business domain
// store 为 nil 时进入降级模式，所有操作返回存储错误，调用方自行容错
func NewCore(store Storer, opts ...Option) Core {
	c := Core{store: store}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
