package xmetrics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xcoord/pkg/observability/xmetrics"
	defaultPrefix              = "xcoord."
	unknownComponent           = "unknown"
)

type otelConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
	component           string
	prefix              string
	logger              *slog.Logger
}

// Option 定义 OTel 计数器的配置选项。
type Option func(*otelConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider，默认使用 otel.GetMeterProvider()。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// WithComponent 设置 component 属性值。
func WithComponent(component string) Option {
	return func(cfg *otelConfig) {
		if component != "" {
			cfg.component = component
		}
	}
}

// WithPrefix 设置导出指标名前缀，默认 "xcoord."。
func WithPrefix(prefix string) Option {
	return func(cfg *otelConfig) {
		cfg.prefix = prefix
	}
}

// WithLogger 设置日志记录器，用于记录 Counter 创建失败。
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *otelConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// OTel 是基于 OpenTelemetry 的计数器实现。
//
// 每个名称首次使用时创建 Int64Counter 并缓存。
// 创建失败时记录一次日志并退化为空 Counter，进程内计数照常累加，Snapshot 不受影响。
type OTel struct {
	local       Local
	meter       metric.Meter
	prefix      string
	attrs       metric.MeasurementOption
	logger      *slog.Logger
	mu          sync.Mutex
	instruments map[string]metric.Int64Counter
}

// NewOTel 创建基于 OpenTelemetry 的计数器。
func NewOTel(opts ...Option) *OTel {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
		component:           unknownComponent,
		prefix:              defaultPrefix,
		logger:              slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	return &OTel{
		meter:       cfg.meterProvider.Meter(cfg.instrumentationName),
		prefix:      cfg.prefix,
		attrs:       metric.WithAttributes(attribute.String("component", cfg.component)),
		logger:      cfg.logger,
		instruments: make(map[string]metric.Int64Counter),
	}
}

// Add 给 name 计数器加上 delta，同时导出到 OTel。
func (o *OTel) Add(ctx context.Context, name string, delta int64) {
	o.local.Add(ctx, name, delta)

	// 使用不可取消的 context，请求超时后计数仍能记录
	o.instrument(name).Add(context.WithoutCancel(ctx), delta, o.attrs)
}

// Snapshot 返回进程内计数的拷贝。
func (o *OTel) Snapshot() map[string]int64 {
	return o.local.Snapshot()
}

func (o *OTel) instrument(name string) metric.Int64Counter {
	o.mu.Lock()
	defer o.mu.Unlock()

	if c, ok := o.instruments[name]; ok {
		return c
	}
	c, err := o.meter.Int64Counter(o.prefix+name, metric.WithUnit("1"))
	if err != nil {
		o.logger.Warn("xmetrics: counter unavailable",
			slog.String("name", name),
			slog.Any("error", fmt.Errorf("%w: %w", ErrCreateCounter, err)),
		)
		c = noop.Int64Counter{}
	}
	o.instruments[name] = c
	return c
}

var _ Counters = (*OTel)(nil)
