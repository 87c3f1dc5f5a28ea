package xdelayq

import "errors"

var (
	// ErrNilKeyFunc 表示 key 函数为 nil。
	ErrNilKeyFunc = errors.New("xdelayq: key func is nil")

	// ErrNilSink 表示 DrainTo 的 sink 为 nil。
	ErrNilSink = errors.New("xdelayq: sink is nil")
)
