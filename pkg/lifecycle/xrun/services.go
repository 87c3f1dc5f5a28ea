package xrun

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// DefaultSignals 返回默认监听的信号：SIGHUP、SIGINT、SIGTERM、SIGQUIT。
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
}

type testSigChanKey struct{}

// testSigChan 返回测试通过 ctx 注入的信号通道，生产环境为 nil。
func testSigChan(ctx context.Context) <-chan os.Signal {
	c, _ := ctx.Value(testSigChanKey{}).(<-chan os.Signal)
	return c
}

func withTestSigChan(ctx context.Context, c <-chan os.Signal) context.Context {
	return context.WithValue(ctx, testSigChanKey{}, c)
}

// HandleSignals 返回信号监听服务：收到信号时以 *SignalError 取消 g。
func HandleSignals(g *Group) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		signals := g.opts.signals
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, signals...)
		defer signal.Stop(sigCh)

		var sig os.Signal
		select {
		case sig = <-testSigChan(ctx):
		case sig = <-sigCh:
		case <-ctx.Done():
			return nil
		}
		g.opts.logger.Info("received signal",
			slog.String("group", g.opts.name), slog.String("signal", sig.String()))
		g.Cancel(&SignalError{Signal: sig})
		return nil
	}
}

// Ticker 返回周期执行 fn 的服务，immediate 为 true 时先执行一次。
// fn 返回错误时服务退出。
func Ticker(interval time.Duration, immediate bool, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilFunc
		}
		if immediate {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx); err != nil {
				return err
			}
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				if err := fn(ctx); err != nil {
					return err
				}
			}
		}
	}
}

// OnShutdown 返回在 ctx 取消后执行 fn 的服务，fn 使用独立的超时 ctx。
// timeout <= 0 表示不限时。用于进程退出前的收尾，例如排空缓冲。
func OnShutdown(timeout time.Duration, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if fn == nil {
			return ErrNilFunc
		}
		<-ctx.Done()
		sctx := context.WithoutCancel(ctx)
		if timeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(sctx, timeout)
			defer cancel()
		}
		return fn(sctx)
	}
}
