package xbatch

import "errors"

var (
	// ErrNilBuffer 表示缓冲区为 nil。
	ErrNilBuffer = errors.New("xbatch: buffer is nil")

	// ErrNilHandler 表示处理函数为 nil。
	ErrNilHandler = errors.New("xbatch: handler is nil")

	// ErrNilScheduler 表示调度器为 nil。
	ErrNilScheduler = errors.New("xbatch: scheduler is nil")

	// ErrInvalidDelay 表示防抖延迟为负数。
	ErrInvalidDelay = errors.New("xbatch: delay must not be negative")

	// ErrClosed 表示分发器已关闭。
	ErrClosed = errors.New("xbatch: processor closed")

	// ErrBufferFull 表示有界缓冲区拒绝了新元素。
	ErrBufferFull = errors.New("xbatch: buffer full")

	// ErrSchedule 表示安排 flush 失败，元素仍在缓冲区中，下次 Submit 会重试安排。
	ErrSchedule = errors.New("xbatch: schedule flush failed")

	// ErrHandlerPanic 表示处理函数发生 panic，已被恢复。
	ErrHandlerPanic = errors.New("xbatch: handler panic")
)
