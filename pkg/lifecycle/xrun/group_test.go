package xrun

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_FirstErrorCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	g, _ := NewGroup(context.Background(), WithName("test"))

	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	g.GoWithName("failing", func(context.Context) error { return boom })

	assert.ErrorIs(t, g.Wait(), boom)
}

func TestGroup_CancelCauseSurvives(t *testing.T) {
	cause := errors.New("shutdown requested")
	g, ctx := NewGroup(context.Background())

	g.GoWithName("worker", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	g.Cancel(cause)

	assert.ErrorIs(t, g.Wait(), cause)
	assert.Error(t, ctx.Err())
}

func TestGroup_PlainCancelReturnsNil(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	g, _ := NewGroup(parent)
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cancel()
	assert.NoError(t, g.Wait())
}

func TestGroup_NilFunc(t *testing.T) {
	g, _ := NewGroup(nil, nil) //nolint:staticcheck // nil ctx 归一化
	g.Go(nil)
	assert.ErrorIs(t, g.Wait(), ErrNilFunc)
}

func TestHandleSignals(t *testing.T) {
	sigs := make(chan os.Signal, 1)
	g, _ := NewGroup(withTestSigChan(context.Background(), sigs), WithSignals(syscall.SIGUSR1))

	var drained atomic.Bool
	g.GoWithName("signals", HandleSignals(g))
	g.GoWithName("drain", OnShutdown(time.Second, func(ctx context.Context) error {
		assert.NoError(t, ctx.Err())
		drained.Store(true)
		return nil
	}))

	sigs <- syscall.SIGTERM
	err := g.Wait()

	assert.ErrorIs(t, err, ErrSignal)
	var sigErr *SignalError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, syscall.SIGTERM, sigErr.Signal)
	assert.True(t, drained.Load())
}

func TestOnShutdown_Timeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := OnShutdown(10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.ErrorIs(t, OnShutdown(0, nil)(ctx), ErrNilFunc)
}

func TestTicker(t *testing.T) {
	assert.ErrorIs(t, Ticker(0, false, func(context.Context) error { return nil })(context.Background()), ErrInvalidInterval)
	assert.ErrorIs(t, Ticker(time.Second, false, nil)(context.Background()), ErrNilFunc)

	var n atomic.Int32
	stop := errors.New("stop")
	err := Ticker(5*time.Millisecond, true, func(context.Context) error {
		if n.Add(1) == 3 {
			return stop
		}
		return nil
	})(context.Background())
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, int32(3), n.Load())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Ticker(time.Hour, true, func(context.Context) error { return nil })(ctx), context.Canceled)
}

func TestSignalError(t *testing.T) {
	assert.Equal(t, "received signal <nil>", (&SignalError{}).Error())
	assert.Contains(t, (&SignalError{Signal: syscall.SIGINT}).Error(), "interrupt")
}
