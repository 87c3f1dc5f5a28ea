package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/omeyang/xcoord/pkg/config/xconf"
	"github.com/omeyang/xcoord/pkg/observability/xlog"
)

// Settings 是 xcoordctl 的配置文件结构。
type Settings struct {
	Log        LogSettings        `koanf:"log" json:"log"`
	Dispatcher DispatcherSettings `koanf:"dispatcher" json:"dispatcher"`
	Overflow   OverflowSettings   `koanf:"overflow" json:"overflow"`
	Shared     SharedSettings     `koanf:"shared" json:"shared"`
	Metrics    MetricsSettings    `koanf:"metrics" json:"metrics"`
}

// LogSettings 日志配置。
type LogSettings struct {
	Level      string `koanf:"level" json:"level"`
	Format     string `koanf:"format" json:"format"`
	File       string `koanf:"file" json:"file,omitempty"`
	MaxSizeMB  int    `koanf:"max_size_mb" json:"max_size_mb,omitempty"`
	MaxBackups int    `koanf:"max_backups" json:"max_backups,omitempty"`
}

// DispatcherSettings 分发器配置。
type DispatcherSettings struct {
	// Backing 为 fifo（有界去重 FIFO）或 delay（按延迟排序）。
	Backing         string        `koanf:"backing" json:"backing"`
	Capacity        int           `koanf:"capacity" json:"capacity"`
	Delay           time.Duration `koanf:"delay" json:"delay"`
	AlertThreshold  int           `koanf:"alert_threshold" json:"alert_threshold"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
}

// OverflowSettings 溢出缓存配置。
type OverflowSettings struct {
	Capacity int `koanf:"capacity" json:"capacity"`
	// Delegate 为 lru 或 redis。
	Delegate string        `koanf:"delegate" json:"delegate"`
	LRUSize  int           `koanf:"lru_size" json:"lru_size"`
	Redis    RedisSettings `koanf:"redis" json:"redis"`
}

// RedisSettings Redis 委托缓存配置。
type RedisSettings struct {
	Addr            string        `koanf:"addr" json:"addr"`
	Hash            string        `koanf:"hash" json:"hash"`
	BreakerFailures uint32        `koanf:"breaker_failures" json:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" json:"breaker_timeout"`
	RetryAttempts   uint          `koanf:"retry_attempts" json:"retry_attempts"`
	RetryBackoff    time.Duration `koanf:"retry_backoff" json:"retry_backoff"`
}

// SharedSettings 共享值缓存配置。
type SharedSettings struct {
	TTLSeconds int           `koanf:"ttl_seconds" json:"ttl_seconds"`
	PruneSpec  string        `koanf:"prune_spec" json:"prune_spec"`
	MemoTTL    time.Duration `koanf:"memo_ttl" json:"memo_ttl"`
	MemoCost   int64         `koanf:"memo_cost" json:"memo_cost"`
}

// MetricsSettings 指标配置。
type MetricsSettings struct {
	// Exporter 为 local（仅进程内计数）或 otel（全局 MeterProvider）。
	Exporter string `koanf:"exporter" json:"exporter"`
}

// DefaultSettings 返回默认配置。
func DefaultSettings() Settings {
	return Settings{
		Log: LogSettings{Level: "info", Format: "text"},
		Dispatcher: DispatcherSettings{
			Backing:         "fifo",
			Capacity:        10000,
			Delay:           time.Second,
			AlertThreshold:  1000,
			ShutdownTimeout: 10 * time.Second,
		},
		Overflow: OverflowSettings{
			Capacity: 1024,
			Delegate: "lru",
			LRUSize:  65536,
			Redis: RedisSettings{
				Addr:          "127.0.0.1:6379",
				Hash:          "xcoord:overflow",
				RetryAttempts: 3,
				RetryBackoff:  50 * time.Millisecond,
			},
		},
		Shared: SharedSettings{
			TTLSeconds: 60,
			PruneSpec:  "@every 30s",
			MemoTTL:    5 * time.Minute,
			MemoCost:   4096,
		},
		Metrics: MetricsSettings{Exporter: "local"},
	}
}

var errInvalidSettings = errors.New("invalid settings")

// Validate 检查配置取值。
func (s Settings) Validate() error {
	var errs []error
	if _, err := xlog.ParseLevel(s.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch s.Dispatcher.Backing {
	case "fifo":
		if s.Dispatcher.Capacity <= 0 {
			errs = append(errs, fmt.Errorf("dispatcher.capacity must be positive, got %d", s.Dispatcher.Capacity))
		}
	case "delay":
	default:
		errs = append(errs, fmt.Errorf("dispatcher.backing must be fifo or delay, got %q", s.Dispatcher.Backing))
	}
	if s.Dispatcher.Delay < 0 {
		errs = append(errs, fmt.Errorf("dispatcher.delay must not be negative, got %s", s.Dispatcher.Delay))
	}
	if s.Overflow.Capacity < 0 {
		errs = append(errs, fmt.Errorf("overflow.capacity must not be negative, got %d", s.Overflow.Capacity))
	}
	switch s.Overflow.Delegate {
	case "lru":
		if s.Overflow.LRUSize <= 0 {
			errs = append(errs, fmt.Errorf("overflow.lru_size must be positive, got %d", s.Overflow.LRUSize))
		}
	case "redis":
		if s.Overflow.Redis.Addr == "" || s.Overflow.Redis.Hash == "" {
			errs = append(errs, errors.New("overflow.redis.addr and overflow.redis.hash are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("overflow.delegate must be lru or redis, got %q", s.Overflow.Delegate))
	}
	if s.Shared.PruneSpec == "" {
		errs = append(errs, errors.New("shared.prune_spec is required"))
	}
	if s.Shared.MemoCost <= 0 {
		errs = append(errs, fmt.Errorf("shared.memo_cost must be positive, got %d", s.Shared.MemoCost))
	}
	switch s.Metrics.Exporter {
	case "local", "otel":
	default:
		errs = append(errs, fmt.Errorf("metrics.exporter must be local or otel, got %q", s.Metrics.Exporter))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", errInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// loadSettings 读取配置文件并在默认值之上覆盖。
func loadSettings(path string) (Settings, *xconf.Config, error) {
	cfg, err := xconf.New(path)
	if err != nil {
		return Settings{}, nil, err
	}
	s, err := decodeSettings(cfg)
	if err != nil {
		return Settings{}, nil, err
	}
	return s, cfg, nil
}

func decodeSettings(cfg *xconf.Config) (Settings, error) {
	s := DefaultSettings()
	if err := cfg.Unmarshal("", &s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
