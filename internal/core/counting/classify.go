package counting

import (
	"fmt"

	"github.com/gowvp/tally/internal/core/detect"
)

// TrackedLabels 参与计数与持久化的固定类别集合
var TrackedLabels = []string{"person", "car", "truck", "bus"}

// DefaultThreshold 默认置信度阈值
const DefaultThreshold = 0.5

// FrameCounts 单帧各类别计数，每帧独立计算，替换而非累加
type FrameCounts map[string]int

// NewFrameCounts 返回固定类别全为 0 的新计数
func NewFrameCounts() FrameCounts {
	m := make(FrameCounts, len(TrackedLabels))
	for _, label := range TrackedLabels {
		m[label] = 0
	}
	return m
}

// Total 所有类别计数之和，包含非固定类别
func (f FrameCounts) Total() int {
	var n int
	for _, v := range f {
		n += v
	}
	return n
}

// Clone 复制计数快照
func (f FrameCounts) Clone() FrameCounts {
	m := make(FrameCounts, len(f))
	for k, v := range f {
		m[k] = v
	}
	return m
}

// Annotation 显示层的绘制指令，边界框已缩放到显示像素空间
type Annotation struct {
	Box   detect.Box `json:"box"`
	Label string     `json:"label"` // "<类别> <置信度百分比>%"
}

// Options 分类过滤参数
type Options struct {
	// Threshold 置信度阈值 [0,1]
	Threshold float64
	// Allowed 用户选择的展示/计数类别，区别于检测器能识别的类别
	Allowed map[string]struct{}
	// DisplayW/DisplayH 显示空间尺寸，0 表示不缩放
	DisplayW int
	DisplayH int
}

// AllowAll 将类别列表转换为允许集合
func AllowAll(labels []string) map[string]struct{} {
	m := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		m[l] = struct{}{}
	}
	return m
}

var tracked = AllowAll(TrackedLabels)

// Classify 对单帧检测结果做阈值与类别过滤
// 计数使用全新清零的 FrameCounts，不保留上一帧状态
// 仅固定类别与允许集合的交集计入计数，其余通过过滤的类别只产出标注
func Classify(dets []detect.Detection, frameW, frameH int, opts Options) (FrameCounts, []Annotation) {
	counts := NewFrameCounts()
	anns := make([]Annotation, 0, len(dets))

	// 独立的水平/垂直缩放系数，帧像素空间映射到显示像素空间
	sx, sy := 1.0, 1.0
	if opts.DisplayW > 0 && frameW > 0 {
		sx = float64(opts.DisplayW) / float64(frameW)
	}
	if opts.DisplayH > 0 && frameH > 0 {
		sy = float64(opts.DisplayH) / float64(frameH)
	}

	for _, det := range dets {
		if det.Confidence < opts.Threshold {
			continue
		}
		if _, ok := opts.Allowed[det.Label]; !ok {
			continue
		}

		if _, ok := tracked[det.Label]; ok {
			counts[det.Label]++
		}

		anns = append(anns, Annotation{
			Box: detect.Box{
				X: int(float64(det.Box.X) * sx),
				Y: int(float64(det.Box.Y) * sy),
				W: int(float64(det.Box.W) * sx),
				H: int(float64(det.Box.H) * sy),
			},
			Label: fmt.Sprintf("%s %.1f%%", det.Label, det.Confidence*100),
		})
	}
	return counts, anns
}
