package counting

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"time"

	"github.com/gowvp/tally/internal/core/detect"
	"github.com/ixugo/goddd/pkg/conc"
)

// FrameSource 帧来源抽象，按需产出当前帧
type FrameSource interface {
	NextFrame(ctx context.Context) (*detect.Frame, error)
}

// StaticSource 静态图片源，每次产出同一张图片
type StaticSource struct {
	path string
}

func NewStaticSource(path string) *StaticSource {
	return &StaticSource{path: path}
}

// NextFrame implements [FrameSource].
func (s *StaticSource) NextFrame(_ context.Context) (*detect.Frame, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	frame := detect.Frame{Data: data}
	// 尺寸解析失败不致命，标注缩放会退化为 1:1
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		frame.Width = cfg.Width
		frame.Height = cfg.Height
	}
	return &frame, nil
}

// Run 拉流模式的节拍循环，每个周期取一帧并处理
// 阻塞直到 ctx 取消；节拍周期即宿主刷新信号的服务化等价物，
// 上一帧检测未完成时后续节拍顺延，天然形成背压
func (c *Controller) Run(ctx context.Context, src FrameSource, interval time.Duration) {
	if src == nil {
		return
	}
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}

	conc.Timer(ctx, interval, interval, func() {
		frame, err := src.NextFrame(ctx)
		if err != nil {
			slog.DebugContext(ctx, "frame source", "err", err)
			return
		}
		_, _, _ = c.OnFrame(ctx, frame)
	})
}
