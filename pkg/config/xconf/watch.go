package xconf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchCallback 在每次重载后调用，err 非 nil 表示重载失败且旧配置仍然生效。
type WatchCallback func(cfg *Config, err error)

// Watcher 监视配置文件并自动重载。
type Watcher struct {
	cfg      *Config
	fs       *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	cbWG    sync.WaitGroup
}

// Watch 创建监视器，调用 Run 开始监视。
func Watch(cfg *Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if cfg == nil || cfg.path == "" {
		return nil, ErrNotReloadable
	}
	o := &watchOptions{debounce: 100 * time.Millisecond, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(cfg.path)
	if err := fsw.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xconf: watch %s: %w", dir, err), fsw.Close())
	}
	return &Watcher{
		cfg:      cfg,
		fs:       fsw,
		callback: callback,
		debounce: o.debounce,
		logger:   o.logger,
	}, nil
}

// Run 处理文件事件直到 ctx 取消，返回前关闭底层监视器并等待进行中的回调结束。
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	name := filepath.Base(w.cfg.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("xconf: watch error", slog.Any("error", err))
		}
	}
}

// schedule 重置防抖定时器。
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.cbWG.Add(1)
	w.mu.Unlock()
	defer w.cbWG.Done()

	err := w.cfg.Reload()
	if err != nil {
		w.logger.Warn("xconf: reload failed, keeping previous config",
			slog.String("path", w.cfg.path), slog.Any("error", err))
	}
	if w.callback != nil {
		w.callback(w.cfg, err)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.cbWG.Wait()
	if err := w.fs.Close(); err != nil {
		w.logger.Warn("xconf: close watcher", slog.Any("error", err))
	}
}
