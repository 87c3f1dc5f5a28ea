package xoverflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupported 表示该操作未实现。可以用 errors.Is(err, errors.ErrUnsupported) 判断。
	ErrNotSupported = fmt.Errorf("xoverflow: %w", errors.ErrUnsupported)

	// ErrNilDelegate 表示委托缓存为 nil。
	ErrNilDelegate = errors.New("xoverflow: delegate is nil")

	// ErrInvalidCapacity 表示容量 < 0。
	ErrInvalidCapacity = errors.New("xoverflow: capacity must not be negative")

	// ErrClosed 表示缓存已关闭。
	ErrClosed = errors.New("xoverflow: cache closed")

	// ErrNilClient 表示 Redis 客户端为 nil。
	ErrNilClient = errors.New("xoverflow: redis client is nil")

	// ErrEmptyKey 表示 Redis Hash 名称为空。
	ErrEmptyKey = errors.New("xoverflow: redis hash key is empty")

	// ErrDelegateClosed 表示委托缓存已关闭。
	ErrDelegateClosed = errors.New("xoverflow: delegate closed")
)
