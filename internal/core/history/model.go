package history

import "github.com/ixugo/goddd/pkg/orm"

// Counts 各类别计数映射，序列化为 JSON 存储
type Counts map[string]int

// Session 一次已完成检测会话的持久化摘要，入库后不可变
type Session struct {
	ID        int64    `gorm:"primaryKey" json:"id"`                           // 存储层自增分配
	CreatedAt orm.Time `gorm:"column:created_at;notNull" json:"created_at"`    // 保存时刻（会话结束），非开始时刻
	Duration  int      `gorm:"column:duration;notNull;default:0" json:"duration"` // 会话时长（秒），四舍五入
	Counts    Counts   `gorm:"column:counts;serializer:json" json:"counts"`    // 结束时刻的最后一帧计数快照

	// 固定类别的冗余列，便于查询与导出，映射缺失时为 0
	People int `gorm:"column:people;notNull;default:0" json:"people"`
	Cars   int `gorm:"column:cars;notNull;default:0" json:"cars"`
	Trucks int `gorm:"column:trucks;notNull;default:0" json:"trucks"`
	Buses  int `gorm:"column:buses;notNull;default:0" json:"buses"`
	// Total 全部类别计数之和，含非固定类别
	Total int `gorm:"column:total;notNull;default:0" json:"total"`
}

func (*Session) TableName() string {
	return "sessions"
}

// applyDerived 由 counts 计算冗余列
func (s *Session) applyDerived() {
	s.People = s.Counts["person"]
	s.Cars = s.Counts["car"]
	s.Trucks = s.Counts["truck"]
	s.Buses = s.Counts["bus"]
	s.Total = 0
	for _, v := range s.Counts {
		s.Total += v
	}
}
