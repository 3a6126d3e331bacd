package xpool

import "errors"

var (
	// ErrNilHandler 表示 handler 参数为 nil
	ErrNilHandler = errors.New("xpool: handler cannot be nil")

	// ErrNilContext 表示 context 参数为 nil
	ErrNilContext = errors.New("xpool: context cannot be nil")

	// ErrPoolStopped 表示 worker pool 已关闭，无法提交任务
	ErrPoolStopped = errors.New("xpool: pool is stopped")
)
