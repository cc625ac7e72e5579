package history

import (
	"github.com/ixugo/goddd/pkg/web"
)

type FindSessionInput struct {
	web.PagerFilter
	web.DateFilter
	// Sort 为 asc 时按插入顺序正序返回（趋势图用），默认按保存时间倒序
	Sort string `form:"sort"`
}

type AddSessionInput struct {
	Counts   map[string]int `json:"counts"`
	Duration int            `json:"duration"` // 秒
}
