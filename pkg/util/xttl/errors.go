package xttl

import "errors"

// ErrInvalidMaxCost 表示准入缓存的 MaxCost 无效。
var ErrInvalidMaxCost = errors.New("xttl: max cost must be greater than 0")
