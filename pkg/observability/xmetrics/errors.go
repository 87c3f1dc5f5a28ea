package xmetrics

import "errors"

// ErrCreateCounter 表示创建 OTel Counter 失败。
var ErrCreateCounter = errors.New("xmetrics: create counter failed")
