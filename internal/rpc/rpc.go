package rpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gowvp/tally/internal/core/detect"
)

var _ detect.Detector = (*AnalysisClient)(nil)

const defaultTimeout = 30 * time.Second

// AnalysisClient 封装分析服务的 HTTP 调用，提供统一的检测入口
type AnalysisClient struct {
	addr string
	cli  *http.Client
}

// NewAnalysisClient 创建分析服务客户端实例
func NewAnalysisClient(addr string, timeout time.Duration) *AnalysisClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	addr = strings.TrimSuffix(addr, "/")
	c := AnalysisClient{
		addr: addr,
		cli:  &http.Client{Timeout: timeout},
	}

	go func() {
		resp, err := c.cli.Get(addr + "/healthz")
		if err != nil {
			slog.Error("HealthCheck", "err", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			slog.Info("HealthCheck OK", "addr", addr)
		} else {
			slog.Error("HealthCheck", "status", resp.StatusCode)
		}
	}()

	return &c
}

// analyzeInput 分析请求体，快照采用 Base64 编码 (JPEG/PNG)
type analyzeInput struct {
	Snapshot       string `json:"snapshot"`
	SnapshotWidth  int    `json:"snapshot_width,omitempty"`
	SnapshotHeight int    `json:"snapshot_height,omitempty"`
}

type analyzeOutput struct {
	Code       int                `json:"code"`
	Msg        string             `json:"msg"`
	Detections []detect.Detection `json:"detections"`
}

// Detect implements [detect.Detector].
func (c *AnalysisClient) Detect(ctx context.Context, frame *detect.Frame) ([]detect.Detection, error) {
	if frame == nil || len(frame.Data) == 0 {
		return nil, fmt.Errorf("empty frame")
	}

	body, err := json.Marshal(analyzeInput{
		Snapshot:       base64.StdEncoding.EncodeToString(frame.Data),
		SnapshotWidth:  frame.Width,
		SnapshotHeight: frame.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal frame: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.addr+"/api/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyze request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("analyze status %d: %s", resp.StatusCode, string(data))
	}

	var out analyzeOutput
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}
	if out.Code != 0 {
		return nil, fmt.Errorf("analyze code %d: %s", out.Code, out.Msg)
	}
	return out.Detections, nil
}
