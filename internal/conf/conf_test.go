package conf

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	if got := Duration("200ms").Duration(); got != 200*time.Millisecond {
		t.Fatalf("got %v", got)
	}
	if got := Duration("bad").Duration(); got != 0 {
		t.Fatalf("非法时长应为 0, got %v", got)
	}
}

func TestSetupConfigWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := SetupConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.HTTP.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.HTTP.Port)
	}
	if cfg.Detector.Threshold != 0.5 {
		t.Fatalf("threshold = %v", cfg.Detector.Threshold)
	}

	// 再次读取应解析出同样的配置
	cfg2, err := SetupConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg2.Data.Database.Dsn != cfg.Data.Database.Dsn {
		t.Fatalf("dsn = %s", cfg2.Data.Database.Dsn)
	}
	if len(cfg2.Detector.Classes) != 4 {
		t.Fatalf("classes = %v", cfg2.Detector.Classes)
	}
}

func TestSetupConfigFillsDefaults(t *testing.T) {
	cfg := Bootstrap{}
	setupDefault(&cfg)
	if cfg.Server.HTTP.Port != 8080 || cfg.Counter.TickInterval.Duration() != 200*time.Millisecond {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Detector.Timeout.Duration() != 30*time.Second {
		t.Fatalf("timeout = %v", cfg.Detector.Timeout)
	}
}
