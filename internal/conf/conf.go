package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration 支持 "30s"、"1h" 等字符串写法的时长配置
type Duration string

func (d Duration) Duration() time.Duration {
	v, err := time.ParseDuration(string(d))
	if err != nil {
		return 0
	}
	return v
}

// Bootstrap 服务启动配置
type Bootstrap struct {
	ConfigPath   string `toml:"-"`
	BuildVersion string `toml:"-"`
	Debug        bool   `toml:"debug"`

	Server   Server   `toml:"server"`
	Data     Data     `toml:"data"`
	Detector Detector `toml:"detector"`
	Counter  Counter  `toml:"counter"`
}

type Server struct {
	Username string        `toml:"username"`
	Password string        `toml:"password"`
	HTTP     HTTP          `toml:"http"`
	History  ServerHistory `toml:"history"`
}

type HTTP struct {
	Port      int    `toml:"port"`
	JwtSecret string `toml:"jwt_secret"`
	PProf     PProf  `toml:"pprof"`
}

type PProf struct {
	Enabled   bool     `toml:"enabled"`
	AccessIps []string `toml:"access_ips"`
}

// ServerHistory 会话历史保留策略
type ServerHistory struct {
	// RetainDays 保留天数，<=0 表示永久保留
	RetainDays int `toml:"retain_days"`
}

type Data struct {
	Database Database `toml:"database"`
}

type Database struct {
	// Dsn 以 postgres/mysql 前缀区分数据库类型，其余视为 sqlite 文件路径
	Dsn             string   `toml:"dsn"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	MaxOpenConns    int      `toml:"max_open_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
	SlowThreshold   Duration `toml:"slow_threshold"`
}

// Detector 外部分析服务配置
type Detector struct {
	Addr string `toml:"addr"`
	// Threshold 置信度阈值，0 时取默认值 0.5
	Threshold float64  `toml:"threshold"`
	Classes   []string `toml:"classes"`
	Timeout   Duration `toml:"timeout"`
}

// Counter 计数会话配置
type Counter struct {
	// TickInterval 拉流模式下的取帧周期，对应宿主刷新节拍
	TickInterval Duration `toml:"tick_interval"`
	// DisplayWidth/DisplayHeight 标注框缩放的目标显示尺寸，0 表示不缩放
	DisplayWidth  int `toml:"display_width"`
	DisplayHeight int `toml:"display_height"`
	// SourcePath 静态图片源路径，为空则仅接受推帧
	SourcePath string `toml:"source_path"`
}

// SetupConfig 读取配置文件，文件不存在时写入默认配置
func SetupConfig(path string) (*Bootstrap, error) {
	cfg := defaultBootstrap()
	cfg.ConfigPath = path

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := WriteConfig(cfg, path); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	setupDefault(cfg)
	return cfg, nil
}

// WriteConfig 将配置写回文件
func WriteConfig(cfg *Bootstrap, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultBootstrap() *Bootstrap {
	cfg := Bootstrap{
		Server: Server{
			HTTP: HTTP{Port: 8080},
		},
		Data: Data{
			Database: Database{
				Dsn:             "tally.db",
				MaxIdleConns:    10,
				MaxOpenConns:    50,
				ConnMaxLifetime: "1h",
				SlowThreshold:   "200ms",
			},
		},
		Detector: Detector{
			Addr:      "http://127.0.0.1:8000",
			Threshold: 0.5,
			Classes:   []string{"person", "car", "truck", "bus"},
			Timeout:   "30s",
		},
		Counter: Counter{
			TickInterval: "200ms",
		},
	}
	return &cfg
}

func setupDefault(cfg *Bootstrap) {
	if cfg.Server.HTTP.Port <= 0 {
		cfg.Server.HTTP.Port = 8080
	}
	if cfg.Data.Database.Dsn == "" {
		cfg.Data.Database.Dsn = "tally.db"
	}
	if cfg.Detector.Addr == "" {
		cfg.Detector.Addr = "http://127.0.0.1:8000"
	}
	if cfg.Detector.Threshold <= 0 || cfg.Detector.Threshold > 1 {
		cfg.Detector.Threshold = 0.5
	}
	if len(cfg.Detector.Classes) == 0 {
		cfg.Detector.Classes = []string{"person", "car", "truck", "bus"}
	}
	if cfg.Detector.Timeout.Duration() <= 0 {
		cfg.Detector.Timeout = "30s"
	}
	if cfg.Counter.TickInterval.Duration() <= 0 {
		cfg.Counter.TickInterval = "200ms"
	}
}
