package counting

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gowvp/tally/internal/core/detect"
	"github.com/ixugo/goddd/pkg/conc"
	"github.com/ixugo/goddd/pkg/reason"
)

// State 会话状态，仅 空闲 <-> 运行 两态，无暂停
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// SessionSaver 会话落库抽象，解耦计数域与历史域
type SessionSaver interface {
	SaveSession(ctx context.Context, counts map[string]int, durationSeconds int) (int64, error)
}

// Controller 检测会话控制器，独占持有实时计数与运行标记
// 所有状态变更串行通过内部锁，检测调用在锁外执行
type Controller struct {
	mu      sync.Mutex
	state   State
	epoch   string // 会话令牌，翻转后迟到的检测结果被丢弃
	startAt time.Time
	live    FrameCounts
	anns    []Annotation
	opts    Options

	detector detect.Detector
	saver    SessionSaver
	// errOnce 同一类错误每个会话只上报一次，避免逐帧刷屏
	errOnce *conc.Map[string, struct{}]
	log     *slog.Logger
}

type ControllerOption func(*Controller)

// WithThreshold 设置置信度阈值
func WithThreshold(v float64) ControllerOption {
	return func(c *Controller) {
		if v > 0 && v <= 1 {
			c.opts.Threshold = v
		}
	}
}

// WithAllowed 设置计数/展示类别
func WithAllowed(labels []string) ControllerOption {
	return func(c *Controller) {
		c.opts.Allowed = AllowAll(labels)
	}
}

// WithDisplay 设置标注缩放的显示尺寸
func WithDisplay(w, h int) ControllerOption {
	return func(c *Controller) {
		c.opts.DisplayW = w
		c.opts.DisplayH = h
	}
}

// NewController 创建会话控制器
func NewController(detector detect.Detector, saver SessionSaver, opts ...ControllerOption) *Controller {
	c := Controller{
		state:    StateIdle,
		live:     NewFrameCounts(),
		detector: detector,
		saver:    saver,
		errOnce:  conc.NewMap[string, struct{}](),
		log:      slog.With("module", "counting"),
		opts: Options{
			Threshold: DefaultThreshold,
			Allowed:   AllowAll(TrackedLabels),
		},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Start 开始会话：清零实时计数，记录开始时间，进入运行态
// 无检测能力时启动失败
func (c *Controller) Start(_ context.Context) error {
	if c.detector == nil {
		return reason.ErrBadRequest.SetMsg("检测服务不可用，无法开始会话")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		return reason.ErrBadRequest.SetMsg("会话已在运行")
	}

	c.state = StateRunning
	c.epoch = uuid.NewString()
	c.startAt = time.Now()
	c.live = NewFrameCounts()
	c.anns = nil
	c.errOnce = conc.NewMap[string, struct{}]()

	c.log.Info("session started", "epoch", c.epoch)
	return nil
}

// OnFrame 处理一个节拍：调用检测、过滤聚合、替换实时计数
// 非运行态为空操作；检测失败记录日志后跳帧，会话继续
// 检测期间发生 Stop/Reset 时（令牌翻转），迟到结果被丢弃
func (c *Controller) OnFrame(ctx context.Context, frame *detect.Frame) (FrameCounts, []Annotation, error) {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return nil, nil, nil
	}
	epoch := c.epoch
	opts := c.opts
	c.mu.Unlock()

	dets, err := c.detector.Detect(ctx, frame)
	if err != nil {
		c.reportDetectErr(ctx, err)
		return nil, nil, nil
	}

	counts, anns := Classify(dets, frame.Width, frame.Height, opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning || c.epoch != epoch {
		// 检测发起后会话已结束或切换，结果作废
		c.log.Debug("stale detection discarded", "epoch", epoch)
		return nil, nil, nil
	}
	c.live = counts
	c.anns = anns
	return counts, anns, nil
}

// StopResult 会话结束结果
type StopResult struct {
	ID        int64       `json:"id"` // 持久化失败时为 0
	Duration  int         `json:"duration"`
	Counts    FrameCounts `json:"counts"`
	Persisted bool        `json:"persisted"`
}

// Stop 结束会话：计算时长，快照当前计数并持久化，回到空闲态
// 空闲态下为空操作；持久化失败不会使会话重新进入运行态
func (c *Controller) Stop(ctx context.Context) (*StopResult, error) {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return nil, nil
	}

	duration := int(math.Round(time.Since(c.startAt).Seconds()))
	if duration < 0 {
		duration = 0
	}
	snapshot := c.live.Clone()
	c.state = StateIdle
	c.epoch = uuid.NewString()
	c.mu.Unlock()

	result := StopResult{Duration: duration, Counts: snapshot}

	if c.saver == nil {
		c.log.Warn("session saver 未配置，会话未持久化")
		return &result, nil
	}

	id, err := c.saver.SaveSession(ctx, snapshot, duration)
	if err != nil {
		c.log.ErrorContext(ctx, "save session failed", "err", err)
		return &result, err
	}
	result.ID = id
	result.Persisted = true
	c.log.InfoContext(ctx, "session stopped", "id", id, "duration", duration, "total", snapshot.Total())
	return &result, nil
}

// Reset 输入源切换时的硬复位：清零显示、取消后续节拍，不持久化
func (c *Controller) Reset(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.epoch = uuid.NewString()
	c.startAt = time.Time{}
	c.live = NewFrameCounts()
	c.anns = nil
	c.errOnce = conc.NewMap[string, struct{}]()
	c.log.Info("session reset")
}

// SetThreshold 运行期调整置信度阈值，范围 [0,1]
func (c *Controller) SetThreshold(v float64) error {
	if v < 0 || v > 1 {
		return reason.ErrBadRequest.SetMsg("阈值必须在 [0,1] 范围内")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Threshold = v
	return nil
}

// SetAllowed 运行期调整允许类别
func (c *Controller) SetAllowed(labels []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Allowed = AllowAll(labels)
}

// Live 当前展示状态快照，供显示层读取
type LiveStatus struct {
	State       State        `json:"state"`
	Counts      FrameCounts  `json:"counts"`
	Annotations []Annotation `json:"annotations"`
	Elapsed     int          `json:"elapsed"` // 运行秒数，空闲时为 0
	Threshold   float64      `json:"threshold"`
}

func (c *Controller) Live() LiveStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := LiveStatus{
		State:       c.state,
		Counts:      c.live.Clone(),
		Annotations: c.anns,
		Threshold:   c.opts.Threshold,
	}
	if c.state == StateRunning {
		out.Elapsed = int(math.Round(time.Since(c.startAt).Seconds()))
	}
	return out
}

func (c *Controller) reportDetectErr(ctx context.Context, err error) {
	key := err.Error()
	if _, ok := c.errOnce.Load(key); ok {
		c.log.DebugContext(ctx, "detect failed, frame skipped", "err", err)
		return
	}
	c.errOnce.Store(key, struct{}{})
	c.log.ErrorContext(ctx, "detect failed, frame skipped", "err", err)
}
