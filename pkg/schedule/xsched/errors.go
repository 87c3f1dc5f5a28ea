package xsched

import "errors"

var (
	// ErrNilJob 表示任务函数为 nil。
	ErrNilJob = errors.New("xsched: job cannot be nil")

	// ErrStopped 表示调度器已停止，不再接受新任务。
	ErrStopped = errors.New("xsched: scheduler stopped")

	// ErrJobPanic 表示任务发生 panic，已被恢复。
	ErrJobPanic = errors.New("xsched: job panic")
)
