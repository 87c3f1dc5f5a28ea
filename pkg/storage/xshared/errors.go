package xshared

import "errors"

var (
	// ErrNilProvider 表示 provider 为 nil。
	ErrNilProvider = errors.New("xshared: provider is nil")

	// ErrNilScheduler 表示调度器为 nil。
	ErrNilScheduler = errors.New("xshared: scheduler is nil")
)
