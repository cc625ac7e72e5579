package api

import "github.com/gowvp/tally/internal/core/counting"

// frameInput 帧推送请求体
type frameInput struct {
	Snapshot       string `json:"snapshot" binding:"required"` // Base64 编码的帧图像 (JPEG/PNG)
	SnapshotWidth  int    `json:"snapshot_width"`              // 帧像素宽
	SnapshotHeight int    `json:"snapshot_height"`             // 帧像素高
}

// frameOutput 单帧处理结果
type frameOutput struct {
	Applied     bool                  `json:"applied"` // 该帧计数是否生效
	Counts      counting.FrameCounts  `json:"counts,omitempty"`
	Annotations []counting.Annotation `json:"annotations,omitempty"`
}

// counterConfigInput 运行期过滤参数调整
type counterConfigInput struct {
	Threshold *float64 `json:"threshold"` // 置信度阈值 [0,1]，nil 表示不修改
	Classes   []string `json:"classes"`   // 允许的类别，nil 表示不修改
}
