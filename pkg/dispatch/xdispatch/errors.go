package xdispatch

import "errors"

var (
	// ErrNilContext 传入的 context 为 nil
	ErrNilContext = errors.New("xdispatch: context cannot be nil")

	// ErrEmptyName 调度器名称为空
	ErrEmptyName = errors.New("xdispatch: dispatcher name cannot be empty")

	// ErrNoBackends 没有配置任何层级后端
	ErrNoBackends = errors.New("xdispatch: at least one tier backend is required")

	// ErrNilBackend 层级后端的调用函数为 nil
	ErrNilBackend = errors.New("xdispatch: tier backend invoke cannot be nil")

	// ErrDeadlinePassed 请求的截止时间在提交前已经过期
	ErrDeadlinePassed = errors.New("xdispatch: request deadline already passed")

	// ErrInvalidConfig 配置校验失败
	ErrInvalidConfig = errors.New("xdispatch: invalid config")
)
