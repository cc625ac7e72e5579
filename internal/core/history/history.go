package history

import (
	"context"
	"log/slog"

	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/ixugo/goddd/pkg/web"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// AddSession Insert into database
// 保存时刻即记录时间戳；冗余列与 total 由 counts 计算
func (c Core) AddSession(ctx context.Context, in *AddSessionInput) (*Session, error) {
	if c.store == nil {
		return nil, reason.ErrDB.SetMsg("历史存储不可用")
	}
	if in.Duration < 0 {
		return nil, reason.ErrBadRequest.SetMsg("duration 不能为负")
	}

	var out Session
	if err := copier.Copy(&out, in); err != nil {
		slog.ErrorContext(ctx, "Copy", "err", err)
	}
	if out.Counts == nil {
		out.Counts = make(Counts)
	}
	out.CreatedAt = orm.Now()
	out.applyDerived()

	if err := c.store.Session().Add(ctx, &out); err != nil {
		return nil, reason.ErrDB.Withf(`Add err[%s]`, err.Error())
	}
	return &out, nil
}

// SaveSession 会话控制器的落库入口，实现 counting.SessionSaver
func (c Core) SaveSession(ctx context.Context, counts map[string]int, durationSeconds int) (int64, error) {
	out, err := c.AddSession(ctx, &AddSessionInput{Counts: counts, Duration: durationSeconds})
	if err != nil {
		return 0, err
	}
	return out.ID, nil
}

// FindSessions 查询会话列表
// 展示用默认按保存时间倒序；Sort=asc 时按插入顺序正序（趋势图）
func (c Core) FindSessions(ctx context.Context, in *FindSessionInput) ([]*Session, int64, error) {
	if c.store == nil {
		return nil, 0, reason.ErrDB.SetMsg("历史存储不可用")
	}
	// 单机追加型数据，规模可控，默认不分页
	if in.Size <= 0 {
		in.PagerFilter = web.NewPagerFilterMaxSize()
	}

	query := orm.NewQuery(2)
	if in.Sort == "asc" {
		query.OrderBy("id ASC")
	} else {
		query.OrderBy("created_at DESC, id DESC")
	}
	if in.StartMs > 0 && in.EndMs > 0 {
		query.Where("created_at >= ? AND created_at <= ?", in.StartAt(), in.EndAt())
	}

	items := make([]*Session, 0, in.Limit())
	total, err := c.store.Session().Find(ctx, &items, in, query.Encode()...)
	if err != nil {
		return nil, 0, reason.ErrDB.Withf(`Find in[%+v] err[%s]`, in, err.Error())
	}
	return items, total, nil
}

// GetSession Query a single object
func (c Core) GetSession(ctx context.Context, id int64) (*Session, error) {
	if c.store == nil {
		return nil, reason.ErrDB.SetMsg("历史存储不可用")
	}
	out := Session{ID: id}
	if err := c.store.Session().Get(ctx, &out, orm.Where("id=?", id)); err != nil {
		if orm.IsErrRecordNotFound(err) {
			return nil, reason.ErrNotFound.Withf(`Get id[%v] err[%s]`, id, err.Error())
		}
		return nil, reason.ErrDB.Withf(`Get id[%v] err[%s]`, id, err.Error())
	}
	return &out, nil
}

// ClearSessions 清空全部会话记录，单事务执行，要么全清要么不动
func (c Core) ClearSessions(ctx context.Context) error {
	if c.store == nil {
		return reason.ErrDB.SetMsg("历史存储不可用")
	}
	err := c.store.Session().Session(ctx, func(tx *gorm.DB) error {
		return tx.Where("1 = 1").Delete(&Session{}).Error
	})
	if err != nil {
		return reason.ErrDB.Withf(`Clear err[%s]`, err.Error())
	}
	slog.InfoContext(ctx, "session history cleared")
	return nil
}
