package xtier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
)

// 参数校验错误
var (
	// ErrNilContext 传入的 context 为 nil
	ErrNilContext = errors.New("xtier: context cannot be nil")

	// ErrNilBackend 传入的后端调用函数为 nil
	ErrNilBackend = errors.New("xtier: backend cannot be nil")

	// ErrEmptyName 层级名称为空
	ErrEmptyName = errors.New("xtier: tier name cannot be empty")

	// ErrNoTiers 回退链没有任何层级
	ErrNoTiers = errors.New("xtier: chain requires at least one tier")

	// ErrNilTier 回退链中存在 nil 层级
	ErrNilTier = errors.New("xtier: chain tier cannot be nil")
)

// TierFailure 记录单个层级的失败
type TierFailure struct {
	// Tier 层级名称
	Tier string
	// Index 层级序号（从 1 开始）
	Index int
	// Latency 该层级的总耗时（含重试与退避）
	Latency time.Duration
	// Err 该层级的最终错误
	Err error
}

// ExhaustedError 回退链全部层级失败后的聚合错误
//
// 保留每个层级的失败信息以便诊断，不丢弃任何结果。
type ExhaustedError struct {
	// Failures 按尝试顺序排列的各层级失败
	Failures []TierFailure
}

// Error 实现 error 接口
func (e *ExhaustedError) Error() string {
	if e == nil || len(e.Failures) == 0 {
		return "xtier: all tiers exhausted"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "xtier: all %d tiers exhausted:", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&sb, " [%d %s: %v]", f.Index, f.Tier, f.Err)
	}
	return sb.String()
}

// Unwrap 返回各层级的错误，支持 errors.Is / errors.As 穿透匹配
func (e *ExhaustedError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// Retryable 只要任一层级是瞬时失败，整体就值得调用方稍后再试
func (e *ExhaustedError) Retryable() bool {
	if e == nil {
		return false
	}
	for _, f := range e.Failures {
		if isTransientFailure(f.Err) {
			return true
		}
	}
	return false
}

// isTransientFailure 判断层级失败是否值得稍后重试
//
// 可重试失败和超时显然是瞬时的；熔断拒绝意味着后端冷却后可能恢复，
// 同样归为瞬时。只有全部层级都是致命失败时聚合错误才不可重试。
func isTransientFailure(err error) bool {
	return xoutcome.IsRetryable(err) || xoutcome.IsCircuitOpen(err)
}
