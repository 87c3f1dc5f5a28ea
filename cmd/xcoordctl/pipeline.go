package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omeyang/xcoord/pkg/observability/xmetrics"
	"github.com/omeyang/xcoord/pkg/queue/xbatch"
	"github.com/omeyang/xcoord/pkg/schedule/xsched"
	"github.com/omeyang/xcoord/pkg/storage/xoverflow"
	"github.com/omeyang/xcoord/pkg/storage/xshared"
	"github.com/omeyang/xcoord/pkg/util/xttl"
)

// event 是一条合成的摄入事件。
type event struct {
	ID       string
	Template string
}

// template 是由模板名解析出的共享值，多个事件共享同一个实例。
type template struct {
	Name   string
	Fields []string
}

// record 是写入溢出缓存的处理结果。
type record struct {
	Template string    `json:"template"`
	Fields   int       `json:"fields"`
	Seen     time.Time `json:"seen"`
}

// pipeline 把各组件装配成一条摄入链路：
// 事件 -> 分发器 -> 共享模板缓存 + 溢出结果缓存。
type pipeline struct {
	settings Settings
	logger   *slog.Logger
	counters xmetrics.Counters

	sched      *xsched.Scheduler
	dispatcher *xbatch.Processor[event]
	shared     *xshared.Cache[string, string, *template]
	results    *xoverflow.Cache[string, record]
	memo       *xttl.Admission[string, *template]
	recent     *xttl.Memory[string, struct{}]
}

func newCounters(s Settings) xmetrics.Counters {
	if s.Metrics.Exporter == "otel" {
		return xmetrics.NewOTel(xmetrics.WithComponent("xcoordctl"))
	}
	return xmetrics.NewLocal()
}

func newPipeline(s Settings, logger *slog.Logger, counters xmetrics.Counters) (*pipeline, error) {
	p := &pipeline{settings: s, logger: logger, counters: counters}

	p.sched = xsched.New(
		xsched.WithLogger(logger),
		xsched.WithCounters(counters),
		xsched.WithSeconds(),
	)

	memo, err := xttl.NewAdmission[string, *template](xttl.AdmissionConfig{MaxCost: s.Shared.MemoCost})
	if err != nil {
		return nil, err
	}
	p.memo = memo
	p.recent = xttl.NewMemory[string, struct{}](xttl.MemoryConfig{DefaultTTL: time.Minute})

	p.shared = xshared.New[string, string, *template](
		xshared.WithLogger(logger),
		xshared.WithCounters(counters),
	)
	if _, err := p.shared.Schedule(p.sched, s.Shared.PruneSpec); err != nil {
		p.closeCaches()
		return nil, fmt.Errorf("schedule prune: %w", err)
	}

	delegate, err := newDelegate(s.Overflow, logger)
	if err != nil {
		p.closeCaches()
		return nil, err
	}
	p.results, err = xoverflow.New(s.Overflow.Capacity, delegate,
		xoverflow.WithLogger(logger),
		xoverflow.WithCounters(counters),
	)
	if err != nil {
		_ = delegate.Close()
		p.closeCaches()
		return nil, err
	}
	p.results.OnCreated(func(id string, r record) {
		logger.Debug("result created", slog.String("id", id), slog.String("template", r.Template))
	})

	buffer, err := newBuffer[event](s.Dispatcher)
	if err != nil {
		p.closeAll()
		return nil, err
	}
	p.dispatcher, err = xbatch.New(buffer, xbatch.HandlerFunc[event](p.handle), p.sched,
		xbatch.WithName("ingest"),
		xbatch.WithDelay(s.Dispatcher.Delay),
		xbatch.WithAlertThreshold(s.Dispatcher.AlertThreshold),
		xbatch.WithLogger(logger),
		xbatch.WithCounters(counters),
	)
	if err != nil {
		p.closeAll()
		return nil, err
	}

	p.sched.Start()
	return p, nil
}

func newBuffer[T comparable](s DispatcherSettings) (xbatch.Buffer[T], error) {
	if s.Backing == "delay" {
		return xbatch.NewDelayed[T](s.Delay), nil
	}
	return xbatch.NewFIFO[T](s.Capacity)
}

func newDelegate(s OverflowSettings, logger *slog.Logger) (xoverflow.Delegate[string, record], error) {
	if s.Delegate == "redis" {
		client := redis.NewClient(&redis.Options{Addr: s.Redis.Addr})
		return xoverflow.NewRedisDelegate[record](client, s.Redis.Hash,
			xoverflow.WithOwnClient[record](),
			xoverflow.WithBreaker[record](s.Redis.BreakerFailures, s.Redis.BreakerTimeout),
			xoverflow.WithRetry[record](s.Redis.RetryAttempts, s.Redis.RetryBackoff),
			xoverflow.WithRedisLogger[record](logger),
		)
	}
	return xoverflow.NewLRUDelegate[string, record](s.LRUSize)
}

// handle 处理一条事件：解析共享模板并记录结果。
func (p *pipeline) handle(ctx context.Context, ev event) error {
	if _, seen := p.recent.Get(ev.ID); seen {
		xmetrics.Incr(ctx, p.counters, "ingest.repeat")
	}
	p.recent.PutDefault(ev.ID, struct{}{})

	tpl, _, err := p.shared.Put(ev.ID, ev.Template, p.parseTemplate, p.settings.Shared.TTLSeconds)
	if err != nil {
		return fmt.Errorf("template %q: %w", ev.Template, err)
	}
	return p.results.Put(ctx, ev.ID, record{
		Template: tpl.Name,
		Fields:   len(tpl.Fields),
		Seen:     time.Now(),
	})
}

// parseTemplate 是共享缓存的 provider。解析结果按 memo_ttl 记忆，
// 共享条目被清理后再次出现的模板不必重新解析。
func (p *pipeline) parseTemplate(name string) (*template, error) {
	if tpl, ok := p.memo.Get(name); ok {
		return tpl, nil
	}
	if name == "" {
		return nil, errors.New("empty template name")
	}
	tpl := &template{Name: name, Fields: strings.Split(name, "-")}
	p.memo.Put(name, tpl, p.settings.Shared.MemoTTL)
	return tpl, nil
}

// shutdown 按依赖顺序关闭：先排空分发器，再停调度器，最后关闭缓存。
func (p *pipeline) shutdown(ctx context.Context) error {
	var errs []error
	if err := p.dispatcher.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("dispatcher: %w", err))
	}
	select {
	case <-p.sched.Stop().Done():
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("scheduler: %w", ctx.Err()))
	}
	errs = append(errs, p.closeCaches())
	return errors.Join(errs...)
}

func (p *pipeline) closeAll() {
	p.sched.Stop()
	_ = p.closeCaches()
}

func (p *pipeline) closeCaches() error {
	var err error
	if p.results != nil {
		err = p.results.Close()
	}
	p.memo.Close()
	p.recent.Close()
	return err
}

// report 记录分发器健康状态和计数器。
func (p *pipeline) report(context.Context) error {
	h := p.dispatcher.Health()
	attrs := []any{
		slog.String("status", string(h.Status)),
		slog.String("state", h.State),
		slog.Int("depth", h.Depth),
		slog.Int("threshold", h.Threshold),
		slog.Int("results_internal", p.results.InternalSize()),
		slog.Int("templates", p.shared.SharedLen()),
	}
	for name, v := range p.counters.Snapshot() {
		attrs = append(attrs, slog.Int64(name, v))
	}
	if h.Healthy() {
		p.logger.Info("health", attrs...)
	} else {
		p.logger.Warn("health", append(attrs, slog.String("message", h.Message))...)
	}
	return nil
}
