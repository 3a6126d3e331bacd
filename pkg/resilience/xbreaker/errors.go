package xbreaker

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
)

// 参数校验错误
var (
	// ErrNilContext 传入的 context 为 nil
	ErrNilContext = errors.New("xbreaker: context cannot be nil")

	// ErrNilFunc 传入的操作函数为 nil
	ErrNilFunc = errors.New("xbreaker: function cannot be nil")
)

// OpenError 熔断拒绝错误
//
// 包装 gobreaker 的 ErrOpenState / ErrTooManyRequests，并附带后端身份与
// 拒绝时的状态。实现 Retryable() 返回 false（重试器立即停止）和
// CircuitOpen() 返回 true（xoutcome 分类为 KindCircuitOpen，降级链切换
// 下一层级）。
//
// Err/Name/State 保留为导出字段，便于调用方在日志和监控中直接读取。
type OpenError struct {
	Err   error  // 原始错误（ErrOpenState 或 ErrTooManyRequests）
	Name  string // 后端身份
	State State  // 拒绝发生时的熔断器状态
}

// Error 实现 error 接口
func (e *OpenError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("breaker %s: %v", e.Name, e.Err)
	}
	return e.Err.Error()
}

// Unwrap 实现 errors.Unwrap 接口
func (e *OpenError) Unwrap() error {
	return e.Err
}

// Retryable 实现 xoutcome.RetryableError 接口
// 熔断拒绝说明后端不可用或正在试探恢复，在本层级内重试没有意义。
func (e *OpenError) Retryable() bool {
	return false
}

// CircuitOpen 实现 xoutcome.CircuitOpenError 接口
func (e *OpenError) CircuitOpen() bool {
	return true
}

// wrapOpenError 如果是熔断器错误则包装，否则原样返回
//
// 只包装直接的 sentinel error，不用 errors.Is 遍历错误链，避免嵌套
// 熔断器场景下把内层的拒绝错误归因到外层。状态从错误类型推导
// （ErrOpenState→StateOpen，ErrTooManyRequests→StateHalfOpen），
// 不做事后 State() 查询，避免拒绝发生与查询之间的状态竞态。
func wrapOpenError(err error, name string) error {
	if err == nil {
		return nil
	}

	var oe *OpenError
	if errors.As(err, &oe) {
		return err
	}

	if err == gobreaker.ErrOpenState {
		return &OpenError{Err: err, Name: name, State: StateOpen}
	}
	if err == gobreaker.ErrTooManyRequests {
		return &OpenError{Err: err, Name: name, State: StateHalfOpen}
	}

	return err
}

// IsOpen 检查错误是否为熔断拒绝错误
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
