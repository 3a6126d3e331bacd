package xoutcome

import (
	"context"
	"errors"
	"strconv"
)

// Kind 表示一次调用结果的分类标签。
type Kind uint8

const (
	// KindUnknown 表示缺失或非法的分类。
	KindUnknown Kind = iota
	// KindSuccess 表示调用成功。
	KindSuccess
	// KindRetryable 表示后端瞬时故障，可重试。
	KindRetryable
	// KindFatal 表示调用方/输入问题，不重试。
	KindFatal
	// KindTimeout 表示截止时间超期。
	KindTimeout
	// KindCircuitOpen 表示被熔断器本地拒绝，未触达后端。
	KindCircuitOpen
)

// String 返回 Kind 的可读字符串表示，用于日志和指标标签。
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRetryable:
		return "retryable"
	case KindFatal:
		return "fatal"
	case KindTimeout:
		return "timeout"
	case KindCircuitOpen:
		return "circuit_open"
	case KindUnknown:
		return "unknown"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Outcome 带标签的调用结果
//
// Kind 为 KindSuccess 时 Value 有效；其余情况 Err 非 nil 且保留完整错误链。
// Outcome 由创建它的调用独占，不跨 goroutine 共享。
type Outcome[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

// Success 创建成功结果
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{Kind: KindSuccess, Value: value}
}

// Failure 根据错误分类创建失败结果
// err 为 nil 时等价于成功结果（零值 Value）。
func Failure[T any](err error) Outcome[T] {
	if err == nil {
		var zero T
		return Success(zero)
	}
	return Outcome[T]{Kind: Classify(err), Err: err}
}

// From 由 (value, err) 对构造结果，err 为 nil 时取 value。
func From[T any](value T, err error) Outcome[T] {
	if err == nil {
		return Success(value)
	}
	return Failure[T](err)
}

// Classify 将错误映射为结果分类
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindSuccess
	case IsCircuitOpen(err):
		return KindCircuitOpen
	case IsTimeout(err):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindFatal
	case IsRetryable(err):
		return KindRetryable
	default:
		return KindFatal
	}
}

// IsSuccess 判断结果是否成功
func (o Outcome[T]) IsSuccess() bool {
	return o.Kind == KindSuccess
}

// ShouldRetry 判断结果是否值得在同一层级内重试
// 只有瞬时错误和超时值得重试；熔断拒绝应交给上层降级处理。
func (o Outcome[T]) ShouldRetry() bool {
	return o.Kind == KindRetryable || o.Kind == KindTimeout
}

// Unpack 以 (value, err) 形式返回结果，便于与常规 Go 调用习惯互转。
func (o Outcome[T]) Unpack() (T, error) {
	return o.Value, o.Err
}
