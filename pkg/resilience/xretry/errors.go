package xretry

import "errors"

// 参数校验错误
var (
	// ErrNilRetryer 传入的 Retryer 为 nil
	ErrNilRetryer = errors.New("xretry: retryer cannot be nil")

	// ErrNilContext 传入的 context 为 nil
	ErrNilContext = errors.New("xretry: context cannot be nil")

	// ErrNilOperation 传入的操作函数为 nil
	ErrNilOperation = errors.New("xretry: operation cannot be nil")
)
