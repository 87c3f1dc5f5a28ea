package xlog

import "errors"

var (
	// ErrEmptyFilename 表示轮转文件名为空。
	ErrEmptyFilename = errors.New("xlog: rotation filename is required")

	// ErrInvalidRotation 表示轮转参数越界。
	ErrInvalidRotation = errors.New("xlog: invalid rotation option")

	// ErrUnknownFormat 表示未知的输出格式。
	ErrUnknownFormat = errors.New("xlog: unknown format")

	// ErrUnknownLevel 表示无法解析的级别字符串。
	ErrUnknownLevel = errors.New("xlog: unknown level")
)
