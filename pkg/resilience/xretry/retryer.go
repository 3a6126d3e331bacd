package xretry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
	"github.com/omeyang/xdispatch/pkg/resilience/xbackoff"
	"github.com/omeyang/xdispatch/pkg/resilience/xrace"
)

// DefaultMaxRetries 默认重试次数（总尝试 = 重试次数 + 1）
const DefaultMaxRetries = 3

// CalculatorFactory 退避计算器工厂
//
// 每次逻辑调用都会通过工厂创建一个新的计算器实例，保证随机源是
// 请求级的（见 xbackoff 包文档）。
type CalculatorFactory func() xbackoff.Calculator

// Retryer 重试执行器
//
// Retryer 自身不可变，创建后可被多 goroutine 并发使用；
// 每次 Execute/Do 调用内部的可变状态都是调用独占的。
type Retryer struct {
	maxRetries     int
	attemptTimeout time.Duration
	newCalculator  CalculatorFactory
	clock          clockwork.Clock
	onRetry        func(attempt int, delay time.Duration, err error)
	onAttempt      func(attempt int, kind xoutcome.Kind, elapsed time.Duration)
}

// Option 重试执行器配置选项
type Option func(*Retryer)

// WithMaxRetries 设置重试次数上限（不含首次尝试）
// n < 0 时静默忽略（保持默认值）；n == 0 表示只尝试一次。
func WithMaxRetries(n int) Option {
	return func(r *Retryer) {
		if n >= 0 {
			r.maxRetries = n
		}
	}
}

// WithAttemptTimeout 设置单次尝试的超时
// 每次尝试的截止时间取 now+attemptTimeout 与整体截止时间中较早者。
// d <= 0 表示不单独限制，直接使用整体截止时间。
func WithAttemptTimeout(d time.Duration) Option {
	return func(r *Retryer) {
		if d > 0 {
			r.attemptTimeout = d
		}
	}
}

// WithCalculator 设置退避计算器工厂
// 传入 nil 会被静默忽略（保持默认的指数退避）。
func WithCalculator(f CalculatorFactory) Option {
	return func(r *Retryer) {
		if f != nil {
			r.newCalculator = f
		}
	}
}

// WithClock 注入时钟
// 主要用于测试。传入 nil 会被静默忽略。
func WithClock(c clockwork.Clock) Option {
	return func(r *Retryer) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithOnRetry 设置重试回调
// attempt 是刚刚失败的尝试序号（从 1 开始），delay 是即将等待的退避延迟。
func WithOnRetry(f func(attempt int, delay time.Duration, err error)) Option {
	return func(r *Retryer) {
		if f != nil {
			r.onRetry = f
		}
	}
}

// WithOnAttempt 设置尝试回调
// 每次尝试结束时调用（无论成败），attempt 从 1 开始，
// elapsed 是该次尝试的耗时。用于日志与指标埋点。
func WithOnAttempt(f func(attempt int, kind xoutcome.Kind, elapsed time.Duration)) Option {
	return func(r *Retryer) {
		if f != nil {
			r.onAttempt = f
		}
	}
}

// New 创建重试执行器
// 默认：重试 3 次、指数退避（1s 基础延迟 + 1s 抖动）、真实时钟。
func New(opts ...Option) *Retryer {
	r := &Retryer{
		maxRetries: DefaultMaxRetries,
		newCalculator: func() xbackoff.Calculator {
			return xbackoff.NewExponential()
		},
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute 以 deadline 为整体预算执行 op，失败时按退避策略重试
//
// 这是泛型函数，必须作为包级函数使用。返回分类后的最终结果：
// 成功、最后一次失败，或致命错误（立即返回，不重试）。
func Execute[T any](ctx context.Context, r *Retryer, deadline time.Time, op xrace.Operation[T]) xoutcome.Outcome[T] {
	if r == nil {
		return xoutcome.Failure[T](xoutcome.NewFatalError(ErrNilRetryer))
	}
	if ctx == nil {
		return xoutcome.Failure[T](xoutcome.NewFatalError(ErrNilContext))
	}
	if op == nil {
		return xoutcome.Failure[T](xoutcome.NewFatalError(ErrNilOperation))
	}

	// 请求级状态：退避计算器（独立随机源）、失败计数、计划中的延迟。
	// retry-go 在单个 goroutine 内顺序调用 RetryIf / OnRetry / DelayType，
	// 闭包共享这些变量不存在数据竞争。
	calc := r.newCalculator()
	failed := 0
	var nextDelay time.Duration

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attemptsFor(r.maxRetries)),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			failed++
			if !xoutcome.IsRetryable(err) {
				return false
			}
			d, ok := r.planDelay(calc, failed, err, deadline)
			if !ok {
				// 退避会睡过截止时间：直接返回最后一次失败
				return false
			}
			nextDelay = d
			return true
		}),
		retry.DelayType(func(_ uint, _ error, _ retry.DelayContext) time.Duration {
			return nextDelay
		}),
	}
	if r.onRetry != nil {
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			// retry-go 的 n 从 0 开始，转换为 1-based 的失败尝试序号
			r.onRetry(int(n)+1, nextDelay, err)
		}))
	}

	attempt := 0
	value, err := retry.NewWithData[T](opts...).Do(func() (T, error) {
		attempt++
		start := r.clock.Now()
		out := xrace.Race(ctx, r.attemptDeadline(deadline), op, xrace.WithClock(r.clock))
		if r.onAttempt != nil {
			r.onAttempt(attempt, out.Kind, r.clock.Since(start))
		}
		return out.Unpack()
	})
	return xoutcome.From(value, err)
}

// Do 执行不带返回值的操作
func (r *Retryer) Do(ctx context.Context, deadline time.Time, op func(ctx context.Context) error) error {
	if op == nil {
		return ErrNilOperation
	}
	out := Execute(ctx, r, deadline, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return out.Err
}

// MaxRetries 返回重试次数上限
func (r *Retryer) MaxRetries() int {
	return r.maxRetries
}

// attemptDeadline 计算单次尝试的截止时间，保证不晚于整体截止时间
func (r *Retryer) attemptDeadline(overall time.Time) time.Time {
	if r.attemptTimeout <= 0 {
		return overall
	}
	attempt := r.clock.Now().Add(r.attemptTimeout)
	if attempt.After(overall) {
		return overall
	}
	return attempt
}

// planDelay 计算下一次重试前的延迟并检查预算
//
// 服务端提示优先于本地计算；计算出的延迟会睡过整体截止时间时
// 返回 ok == false，调用方应放弃重试。
func (r *Retryer) planDelay(calc xbackoff.Calculator, attempt int, lastErr error, deadline time.Time) (time.Duration, bool) {
	var (
		d   time.Duration
		err error
	)
	if hint, ok := xoutcome.RetryAfterHint(lastErr); ok {
		d, err = calc.DelayWithHint(attempt, hint)
	} else {
		d, err = calc.Delay(attempt)
	}
	if err != nil {
		return 0, false
	}

	remaining := deadline.Sub(r.clock.Now())
	if d >= remaining {
		return 0, false
	}
	return d, true
}

// attemptsFor 将重试次数换算为 retry-go 的总尝试次数
func attemptsFor(maxRetries int) uint {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return uint(maxRetries) + 1
}
