package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/tally/internal/core/history"
	"github.com/ixugo/goddd/pkg/web"
	"golang.org/x/text/language"
)

// HistoryAPI 会话历史查询与导出接口
type HistoryAPI struct {
	historyCore history.Core
}

func NewHistoryAPI(core history.Core) HistoryAPI {
	return HistoryAPI{historyCore: core}
}

func RegisterHistory(g gin.IRouter, api HistoryAPI, handler ...gin.HandlerFunc) {
	group := g.Group("/sessions")
	group.GET("", web.WrapH(api.findSessions))
	group.GET("/export", api.exportSessions)
	group.GET("/:id", web.WrapH(api.getSession))
	group.DELETE("", append(handler, web.WrapH(api.clearSessions))...)
}

// findSessions 查询会话历史，默认按保存时间倒序，sort=asc 时按插入顺序
func (a HistoryAPI) findSessions(c *gin.Context, in *history.FindSessionInput) (any, error) {
	items, total, err := a.historyCore.FindSessions(c.Request.Context(), in)
	return gin.H{"items": items, "total": total}, err
}

func (a HistoryAPI) getSession(c *gin.Context, _ *struct{}) (*history.Session, error) {
	sessionID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	return a.historyCore.GetSession(c.Request.Context(), sessionID)
}

// clearSessions 清空全部历史，不可恢复
func (a HistoryAPI) clearSessions(c *gin.Context, _ *struct{}) (gin.H, error) {
	if err := a.historyCore.ClearSessions(c.Request.Context()); err != nil {
		return nil, err
	}
	return gin.H{"msg": "历史已清空"}, nil
}

// exportSessions 导出 CSV 文件，时间戳格式跟随 Accept-Language
func (a HistoryAPI) exportSessions(c *gin.Context) {
	in := history.FindSessionInput{PagerFilter: web.NewPagerFilterMaxSize()}
	items, _, err := a.historyCore.FindSessions(c.Request.Context(), &in)
	if err != nil {
		web.Fail(c, err)
		return
	}

	var tag language.Tag
	if tags, _, err := language.ParseAcceptLanguage(c.GetHeader("Accept-Language")); err == nil && len(tags) > 0 {
		tag = tags[0]
	}
	data, err := history.ExportCSV(items, tag)
	if err != nil {
		web.Fail(c, err)
		return
	}

	filename := fmt.Sprintf("sessions_%s.csv", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
