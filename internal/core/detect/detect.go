package detect

import "context"

// Detection 单帧内的一个检测对象
type Detection struct {
	Label      string  `json:"label"`      // 物体类别
	Confidence float64 `json:"confidence"` // 置信度 (0.0 - 1.0)
	Box        Box     `json:"box"`        // 像素坐标边界框
}

// Box 像素坐标边界框，x/y 为左上角
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Frame 一帧待分析的图像数据，已解码为可识别的图片编码（jpeg/png）
type Frame struct {
	Data   []byte // 图像字节
	Width  int    // 像素宽，未知时为 0
	Height int    // 像素高，未知时为 0
}

// Detector 检测能力抽象，每次调用相互独立，不保留跨帧状态
// 单帧失败视为可恢复错误，调用方跳帧重试
type Detector interface {
	Detect(ctx context.Context, frame *Frame) ([]Detection, error)
}
