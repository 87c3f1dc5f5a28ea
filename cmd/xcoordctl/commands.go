package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xcoord/pkg/config/xconf"
	"github.com/omeyang/xcoord/pkg/lifecycle/xrun"
	"github.com/omeyang/xcoord/pkg/observability/xlog"
	"github.com/omeyang/xcoord/pkg/queue/xbatch"
)

var configFlag = &cli.StringFlag{
	Name:     "config",
	Aliases:  []string{"c"},
	Usage:    "配置文件路径（.yaml/.yml/.json）",
	Required: true,
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "校验配置并打印生效的配置",
		Flags: []cli.Flag{configFlag},
		Action: func(_ context.Context, cmd *cli.Command) error {
			s, _, err := loadSettings(cmd.String("config"))
			if err != nil {
				return &usageError{err: err}
			}
			enc := json.NewEncoder(cmd.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "运行合成摄入链路",
		Flags: []cli.Flag{
			configFlag,
			&cli.FloatFlag{Name: "rate", Usage: "每秒生成的事件数", Value: 100},
			&cli.DurationFlag{Name: "report", Usage: "健康状态记录间隔", Value: 10 * time.Second},
			&cli.IntFlag{Name: "keys", Usage: "事件 ID 空间大小，越小重复越多", Value: 500},
			&cli.IntFlag{Name: "templates", Usage: "模板数量", Value: 8},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rate := cmd.Float("rate")
			if rate <= 0 || cmd.Int("keys") <= 0 || cmd.Int("templates") <= 0 {
				return &usageError{err: errors.New("--rate, --keys and --templates must be positive")}
			}
			s, cfg, err := loadSettings(cmd.String("config"))
			if err != nil {
				return &usageError{err: err}
			}
			return serve(ctx, s, cfg, runOptions{
				interval:  time.Duration(float64(time.Second) / rate),
				report:    cmd.Duration("report"),
				keys:      int(cmd.Int("keys")),
				templates: int(cmd.Int("templates")),
			})
		},
	}
}

type runOptions struct {
	interval  time.Duration
	report    time.Duration
	keys      int
	templates int
}

func newLogger(s LogSettings, level *slog.LevelVar) (*slog.Logger, func() error, error) {
	b := xlog.New().
		SetLevelVar(level).
		SetLevelString(s.Level).
		SetFormat(s.Format).
		SetAttrs(slog.String("app", "xcoordctl"))
	if s.File != "" {
		var opts []xlog.RotationOption
		if s.MaxSizeMB > 0 {
			opts = append(opts, xlog.WithMaxSize(s.MaxSizeMB))
		}
		if s.MaxBackups > 0 {
			opts = append(opts, xlog.WithMaxBackups(s.MaxBackups))
		}
		b = b.SetRotation(s.File, opts...)
	}
	return b.Build()
}

func serve(ctx context.Context, s Settings, cfg *xconf.Config, o runOptions) error {
	level := new(slog.LevelVar)
	logger, cleanup, err := newLogger(s.Log, level)
	if err != nil {
		return &usageError{err: err}
	}
	defer func() { _ = cleanup() }()

	p, err := newPipeline(s, logger, newCounters(s))
	if err != nil {
		return err
	}

	watcher, err := xconf.Watch(cfg, reloader(p, level, logger), xconf.WithWatchLogger(logger))
	if err != nil {
		_ = p.shutdown(context.Background())
		return err
	}

	g, _ := xrun.NewGroup(ctx, xrun.WithName("xcoordctl"), xrun.WithLogger(logger))
	g.GoWithName("signals", xrun.HandleSignals(g))
	g.GoWithName("config", watcher.Run)
	g.GoWithName("generator", xrun.Ticker(o.interval, false, generator(p, o)))
	if o.report > 0 {
		g.GoWithName("report", xrun.Ticker(o.report, false, p.report))
	}
	g.GoWithName("drain", xrun.OnShutdown(s.Dispatcher.ShutdownTimeout, p.shutdown))

	logger.Info("xcoordctl started",
		slog.String("backing", s.Dispatcher.Backing),
		slog.String("delegate", s.Overflow.Delegate),
		slog.Duration("interval", o.interval))

	err = g.Wait()
	if errors.Is(err, xrun.ErrSignal) {
		logger.Info("xcoordctl stopped", slog.Any("reason", err))
		return nil
	}
	return err
}

// generator 每次调用提交一条随机事件。缓冲区满时记录并丢弃。
func generator(p *pipeline, o runOptions) func(context.Context) error {
	return func(context.Context) error {
		ev := event{
			ID:       fmt.Sprintf("evt-%d", rand.IntN(o.keys)),
			Template: fmt.Sprintf("tpl-%d", rand.IntN(o.templates)),
		}
		err := p.dispatcher.Submit(ev)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, xbatch.ErrBufferFull):
			p.logger.Warn("buffer full, event dropped", slog.String("id", ev.ID))
			return nil
		case errors.Is(err, xbatch.ErrClosed):
			return nil
		default:
			return err
		}
	}
}

// reloader 在配置文件变更后热更新日志级别和告警阈值。其余字段需要重启生效。
func reloader(p *pipeline, level *slog.LevelVar, logger *slog.Logger) xconf.WatchCallback {
	return func(cfg *xconf.Config, err error) {
		if err != nil {
			return
		}
		s, err := decodeSettings(cfg)
		if err != nil {
			logger.Warn("config rejected, keeping previous settings", slog.Any("error", err))
			return
		}
		if err := xlog.SetLevel(level, s.Log.Level); err != nil {
			logger.Warn("invalid log level", slog.Any("error", err))
		}
		p.dispatcher.SetAlertThreshold(s.Dispatcher.AlertThreshold)
		logger.Info("config reloaded",
			slog.String("level", s.Log.Level),
			slog.Int("alert_threshold", s.Dispatcher.AlertThreshold))
	}
}
