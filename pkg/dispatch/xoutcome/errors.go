package xoutcome

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryableError 可重试错误接口
// 实现此接口的错误会被自动识别为可重试或不可重试。
type RetryableError interface {
	error
	Retryable() bool
}

// CircuitOpenError 熔断拒绝错误接口
//
// 熔断器包（xbreaker）的拒绝错误实现此接口。定义在 xoutcome 是为了
// 让分类函数无需反向依赖熔断器包。
type CircuitOpenError interface {
	error
	CircuitOpen() bool
}

// FatalError 致命错误（调用方或输入问题）
//
// 不重试、不计入熔断统计，逐层原样上抛。
type FatalError struct {
	Err error
}

// NewFatalError 创建致命错误
func NewFatalError(err error) *FatalError {
	return &FatalError{Err: err}
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return "fatal error"
	}
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func (e *FatalError) Retryable() bool {
	return false
}

// TransientError 瞬时错误（后端暂时性故障）
//
// 可重试，计入熔断失败统计。RetryAfter 大于 0 时表示后端给出的
// 重试间隔提示（类似 HTTP Retry-After），退避计算必须原样采用该值。
type TransientError struct {
	Err        error
	RetryAfter time.Duration
}

// NewTransientError 创建瞬时错误
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// NewTransientErrorWithHint 创建带服务端重试提示的瞬时错误
// hint 小于 0 时视为没有提示。
func NewTransientErrorWithHint(err error, hint time.Duration) *TransientError {
	if hint < 0 {
		hint = 0
	}
	return &TransientError{Err: err, RetryAfter: hint}
}

func (e *TransientError) Error() string {
	if e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func (e *TransientError) Retryable() bool {
	return true
}

// TimeoutError 截止时间超期错误
//
// 可重试（预算允许时），计入熔断失败统计。
// Deadline 记录超期的绝对时间点，Elapsed 记录本次尝试实际耗时。
type TimeoutError struct {
	Deadline time.Time
	Elapsed  time.Duration
}

// NewTimeoutError 创建超时错误
func NewTimeoutError(deadline time.Time, elapsed time.Duration) *TimeoutError {
	return &TimeoutError{Deadline: deadline, Elapsed: elapsed}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("deadline exceeded after %v", e.Elapsed)
}

// Unwrap 映射到 context.DeadlineExceeded，
// 使 errors.Is(err, context.DeadlineExceeded) 对超时错误成立。
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

func (e *TimeoutError) Retryable() bool {
	return true
}

// IsRetryable 检查错误是否可重试
// 规则：
//   - nil 错误：不需要重试（视为成功）
//   - context.Canceled：调用方主动取消，不重试
//   - 实现 RetryableError 接口：根据 Retryable() 返回值判断
//   - 其他错误：默认视为可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}

	return true
}

// IsFatal 检查错误是否为致命错误（不可重试且非熔断拒绝）
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if IsCircuitOpen(err) {
		return false
	}
	return !IsRetryable(err)
}

// IsTimeout 检查错误是否为超时错误
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsCircuitOpen 检查错误是否为熔断拒绝错误
func IsCircuitOpen(err error) bool {
	if err == nil {
		return false
	}
	var ce CircuitOpenError
	return errors.As(err, &ce) && ce.CircuitOpen()
}

// CountsAsFailure 判断错误是否应计入熔断失败统计
//
// 只有超时和瞬时错误代表后端健康问题；致命错误说明请求本身有问题，
// 熔断拒绝则根本没有触达后端，两者都不计入。
func CountsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	if IsCircuitOpen(err) {
		return false
	}
	if IsTimeout(err) {
		return true
	}
	return IsRetryable(err)
}

// RetryAfterHint 提取错误携带的服务端重试提示
//
// 返回值：提示间隔与是否存在提示。只有 TransientError 且 RetryAfter > 0
// 才视为存在提示。
func RetryAfterHint(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	var te *TransientError
	if errors.As(err, &te) && te.RetryAfter > 0 {
		return te.RetryAfter, true
	}
	return 0, false
}
