package api

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/tally/internal/conf"
	"github.com/gowvp/tally/internal/core/counting"
	"github.com/gowvp/tally/internal/core/detect"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/ixugo/goddd/pkg/web"
)

// CounterAPI 计数会话控制接口
type CounterAPI struct {
	controller *counting.Controller
	conf       *conf.Bootstrap
}

func NewCounterAPI(controller *counting.Controller, conf *conf.Bootstrap) CounterAPI {
	return CounterAPI{controller: controller, conf: conf}
}

func RegisterCounter(g gin.IRouter, api CounterAPI, handler ...gin.HandlerFunc) {
	group := g.Group("/counter")
	group.GET("/live", web.WrapH(api.getLive))
	// 帧推送即一次节拍，由宿主渲染循环驱动，不走鉴权
	group.POST("/frame", web.WrapH(api.onFrame))

	ctl := group.Group("", handler...)
	ctl.POST("/start", web.WrapH(api.startSession))
	ctl.POST("/stop", web.WrapH(api.stopSession))
	ctl.POST("/reset", web.WrapH(api.resetSession))
	ctl.PUT("/config", web.WrapH(api.updateConfig))
}

// startSession 开始检测会话
func (a CounterAPI) startSession(c *gin.Context, _ *struct{}) (counting.LiveStatus, error) {
	if err := a.controller.Start(c.Request.Context()); err != nil {
		return counting.LiveStatus{}, err
	}
	return a.controller.Live(), nil
}

type stopSessionOutput struct {
	Stopped bool                 `json:"stopped"` // false 表示本就处于空闲态
	Result  *counting.StopResult `json:"result,omitempty"`
	// PersistError 持久化失败原因，会话仍正常结束
	PersistError string `json:"persist_error,omitempty"`
}

// stopSession 结束会话并持久化快照
// 持久化失败只上报，不让会话回到运行态
func (a CounterAPI) stopSession(c *gin.Context, _ *struct{}) (stopSessionOutput, error) {
	result, err := a.controller.Stop(c.Request.Context())
	if result == nil {
		return stopSessionOutput{Stopped: false}, nil
	}
	out := stopSessionOutput{Stopped: true, Result: result}
	if err != nil {
		out.PersistError = err.Error()
	}
	return out, nil
}

// resetSession 输入源切换时的硬复位，不持久化
func (a CounterAPI) resetSession(c *gin.Context, _ *struct{}) (counting.LiveStatus, error) {
	a.controller.Reset(c.Request.Context())
	return a.controller.Live(), nil
}

func (a CounterAPI) getLive(_ *gin.Context, _ *struct{}) (counting.LiveStatus, error) {
	return a.controller.Live(), nil
}

// onFrame 接收宿主推送的一帧，返回该帧的计数与绘制指令
func (a CounterAPI) onFrame(c *gin.Context, in *frameInput) (frameOutput, error) {
	data, err := base64.StdEncoding.DecodeString(in.Snapshot)
	if err != nil {
		return frameOutput{}, reason.ErrBadRequest.Withf("decode base64: %s", err.Error())
	}

	frame := detect.Frame{Data: data, Width: in.SnapshotWidth, Height: in.SnapshotHeight}
	counts, anns, err := a.controller.OnFrame(c.Request.Context(), &frame)
	if err != nil {
		return frameOutput{}, err
	}
	// counts 为 nil 表示该帧被跳过（空闲态/检测失败/迟到结果）
	return frameOutput{
		Applied:     counts != nil,
		Counts:      counts,
		Annotations: anns,
	}, nil
}

// updateConfig 运行期调整阈值与类别过滤
func (a CounterAPI) updateConfig(_ *gin.Context, in *counterConfigInput) (counting.LiveStatus, error) {
	if in.Threshold != nil {
		if err := a.controller.SetThreshold(*in.Threshold); err != nil {
			return counting.LiveStatus{}, err
		}
	}
	if in.Classes != nil {
		a.controller.SetAllowed(in.Classes)
	}
	return a.controller.Live(), nil
}
