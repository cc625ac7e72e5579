package counting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gowvp/tally/internal/core/detect"
)

type detectorFunc func(ctx context.Context, frame *detect.Frame) ([]detect.Detection, error)

func (f detectorFunc) Detect(ctx context.Context, frame *detect.Frame) ([]detect.Detection, error) {
	return f(ctx, frame)
}

type fakeSaver struct {
	mu       sync.Mutex
	calls    int
	counts   map[string]int
	duration int
	err      error
}

func (s *fakeSaver) SaveSession(_ context.Context, counts map[string]int, durationSeconds int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.calls++
	s.counts = counts
	s.duration = durationSeconds
	return int64(s.calls), nil
}

func persons(n int) []detect.Detection {
	out := make([]detect.Detection, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, detect.Detection{Label: "person", Confidence: 0.9})
	}
	return out
}

func TestControllerLifecycle(t *testing.T) {
	ctx := context.Background()
	var dets []detect.Detection
	saver := fakeSaver{}
	ctrl := NewController(detectorFunc(func(context.Context, *detect.Frame) ([]detect.Detection, error) {
		return dets, nil
	}), &saver)

	if err := ctrl.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctrl.Live().State; got != StateRunning {
		t.Fatalf("state = %s, want running", got)
	}

	dets = persons(2)
	counts, _, err := ctrl.OnFrame(ctx, &detect.Frame{Data: []byte{1}})
	if err != nil {
		t.Fatal(err)
	}
	if counts["person"] != 2 {
		t.Fatalf("person = %d, want 2", counts["person"])
	}

	// 下一帧替换而非累加
	dets = persons(1)
	counts, _, err = ctrl.OnFrame(ctx, &detect.Frame{Data: []byte{1}})
	if err != nil {
		t.Fatal(err)
	}
	if counts["person"] != 1 {
		t.Fatalf("person = %d, want 1", counts["person"])
	}

	result, err := ctrl.Stop(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || !result.Persisted {
		t.Fatalf("result = %+v, want persisted", result)
	}
	if result.Duration < 0 {
		t.Fatalf("duration = %d, want >= 0", result.Duration)
	}
	if result.Counts["person"] != 1 {
		t.Fatalf("snapshot person = %d, want 1", result.Counts["person"])
	}
	if saver.calls != 1 || saver.counts["person"] != 1 {
		t.Fatalf("saver calls = %d counts = %v", saver.calls, saver.counts)
	}
	if got := ctrl.Live().State; got != StateIdle {
		t.Fatalf("state = %s, want idle", got)
	}

	// 空闲态 stop 为空操作
	result, err = ctrl.Stop(ctx)
	if err != nil || result != nil {
		t.Fatalf("second stop = %+v err = %v, want no-op", result, err)
	}
	if saver.calls != 1 {
		t.Fatalf("saver calls = %d, want 1", saver.calls)
	}
}

func TestControllerStartWithoutDetector(t *testing.T) {
	ctrl := NewController(nil, &fakeSaver{})
	if err := ctrl.Start(context.Background()); err == nil {
		t.Fatal("无检测能力时 Start 应失败")
	}
}

func TestControllerIdleFrameNoop(t *testing.T) {
	called := false
	ctrl := NewController(detectorFunc(func(context.Context, *detect.Frame) ([]detect.Detection, error) {
		called = true
		return nil, nil
	}), &fakeSaver{})

	counts, anns, err := ctrl.OnFrame(context.Background(), &detect.Frame{Data: []byte{1}})
	if err != nil || counts != nil || anns != nil {
		t.Fatalf("idle OnFrame = %v %v %v, want 全 nil", counts, anns, err)
	}
	if called {
		t.Fatal("空闲态不应调用检测器")
	}
}

func TestControllerDetectorErrorContinues(t *testing.T) {
	ctx := context.Background()
	var fail bool
	ctrl := NewController(detectorFunc(func(context.Context, *detect.Frame) ([]detect.Detection, error) {
		if fail {
			return nil, errors.New("model unavailable")
		}
		return persons(3), nil
	}), &fakeSaver{})

	if err := ctrl.Start(ctx); err != nil {
		t.Fatal(err)
	}

	fail = true
	counts, _, err := ctrl.OnFrame(ctx, &detect.Frame{Data: []byte{1}})
	if err != nil {
		t.Fatalf("检测失败应被吞掉, got %v", err)
	}
	if counts != nil {
		t.Fatalf("counts = %v, want nil (跳帧)", counts)
	}
	if got := ctrl.Live().State; got != StateRunning {
		t.Fatalf("state = %s, 检测失败不应结束会话", got)
	}

	// 下一帧恢复正常
	fail = false
	counts, _, _ = ctrl.OnFrame(ctx, &detect.Frame{Data: []byte{1}})
	if counts["person"] != 3 {
		t.Fatalf("person = %d, want 3", counts["person"])
	}
}

func TestControllerStaleTickDiscarded(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	entered := make(chan struct{})
	var block bool

	saver := fakeSaver{}
	ctrl := NewController(detectorFunc(func(context.Context, *detect.Frame) ([]detect.Detection, error) {
		if block {
			close(entered)
			<-release
			return persons(5), nil
		}
		return persons(2), nil
	}), &saver)

	if err := ctrl.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ctrl.OnFrame(ctx, &detect.Frame{Data: []byte{1}}); err != nil {
		t.Fatal(err)
	}

	// 发起一个在 stop 之后才完成的检测
	block = true
	done := make(chan FrameCounts, 1)
	go func() {
		counts, _, _ := ctrl.OnFrame(ctx, &detect.Frame{Data: []byte{1}})
		done <- counts
	}()
	<-entered

	result, err := ctrl.Stop(ctx)
	if err != nil {
		t.Fatal(err)
	}
	close(release)

	select {
	case counts := <-done:
		if counts != nil {
			t.Fatalf("迟到结果 = %v, 应被丢弃", counts)
		}
	case <-time.After(time.Second):
		t.Fatal("OnFrame 未返回")
	}

	// 快照与落库的都是 stop 时刻的计数，不含迟到结果
	if result.Counts["person"] != 2 {
		t.Fatalf("snapshot person = %d, want 2", result.Counts["person"])
	}
	if saver.counts["person"] != 2 {
		t.Fatalf("saved person = %d, want 2", saver.counts["person"])
	}
	if got := ctrl.Live().Counts["person"]; got != 2 {
		t.Fatalf("live person = %d, 迟到结果不应覆盖", got)
	}
}

func TestControllerStopPersistFailure(t *testing.T) {
	ctx := context.Background()
	saver := fakeSaver{err: errors.New("db down")}
	ctrl := NewController(detectorFunc(func(context.Context, *detect.Frame) ([]detect.Detection, error) {
		return persons(1), nil
	}), &saver)

	if err := ctrl.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ctrl.OnFrame(ctx, &detect.Frame{Data: []byte{1}}); err != nil {
		t.Fatal(err)
	}

	result, err := ctrl.Stop(ctx)
	if err == nil {
		t.Fatal("落库失败应上报错误")
	}
	if result == nil || result.Persisted {
		t.Fatalf("result = %+v, want 未持久化", result)
	}
	// 落库失败不回到运行态
	if got := ctrl.Live().State; got != StateIdle {
		t.Fatalf("state = %s, want idle", got)
	}
}

func TestControllerReset(t *testing.T) {
	ctx := context.Background()
	saver := fakeSaver{}
	ctrl := NewController(detectorFunc(func(context.Context, *detect.Frame) ([]detect.Detection, error) {
		return persons(4), nil
	}), &saver)

	if err := ctrl.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ctrl.OnFrame(ctx, &detect.Frame{Data: []byte{1}}); err != nil {
		t.Fatal(err)
	}

	// 切换输入源：硬复位，不持久化
	ctrl.Reset(ctx)
	live := ctrl.Live()
	if live.State != StateIdle || live.Counts.Total() != 0 {
		t.Fatalf("live = %+v, want 空闲且清零", live)
	}
	if saver.calls != 0 {
		t.Fatalf("saver calls = %d, 复位不应落库", saver.calls)
	}
}

func TestControllerSetThreshold(t *testing.T) {
	ctrl := NewController(nil, nil)
	if err := ctrl.SetThreshold(1.5); err == nil {
		t.Fatal("阈值越界应报错")
	}
	if err := ctrl.SetThreshold(0.9); err != nil {
		t.Fatal(err)
	}
	if got := ctrl.Live().Threshold; got != 0.9 {
		t.Fatalf("threshold = %v, want 0.9", got)
	}
}
