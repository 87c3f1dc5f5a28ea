package xdedupq

import "errors"

var (
	// ErrInvalidCapacity 表示容量 <= 0。
	ErrInvalidCapacity = errors.New("xdedupq: capacity must be positive")

	// ErrNilSink 表示 DrainTo 的 sink 为 nil。
	ErrNilSink = errors.New("xdedupq: sink is nil")
)
