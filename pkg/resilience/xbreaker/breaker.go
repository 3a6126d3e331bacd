package xbreaker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
	"github.com/omeyang/xdispatch/pkg/observability/xlog"
)

// 底层类型别名，调用方无需直接导入 gobreaker。
type (
	// State 熔断器状态
	State = gobreaker.State

	// Counts 统计计数
	Counts = gobreaker.Counts
)

// 熔断器状态常量
const (
	// StateClosed 关闭状态（正常放行）
	StateClosed = gobreaker.StateClosed

	// StateHalfOpen 半开状态（试探恢复）
	StateHalfOpen = gobreaker.StateHalfOpen

	// StateOpen 打开状态（本地拒绝）
	StateOpen = gobreaker.StateOpen
)

// 默认配置
const (
	// DefaultFailureThreshold 默认连续失败阈值
	DefaultFailureThreshold = 5

	// DefaultCooldown 默认冷却时长（Open → HalfOpen）
	DefaultCooldown = 15 * time.Second
)

// Breaker 按后端身份共享的熔断器
//
// 状态读写由 gobreaker 内部互斥锁串行化，阈值判定与计数原子一致，
// 两个并发失败不会各自独立触发一次熔断。
type Breaker struct {
	name          string
	threshold     uint32
	cooldown      time.Duration
	logger        xlog.Logger
	onStateChange func(name string, from, to State)

	cb *gobreaker.TwoStepCircuitBreaker[any]
}

// Option 熔断器配置选项
type Option func(*Breaker)

// WithFailureThreshold 设置连续失败阈值
// n == 0 时静默忽略（保持默认值 5）。
func WithFailureThreshold(n uint32) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithCooldown 设置 Open 状态的冷却时长
// d <= 0 时静默忽略（保持默认值 15s）。
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithOnStateChange 设置状态变化回调
// 可用于告警或自定义指标。
func WithOnStateChange(f func(name string, from, to State)) Option {
	return func(b *Breaker) {
		if f != nil {
			b.onStateChange = f
		}
	}
}

// WithLogger 设置日志器
// 状态变化会以 Warn 级别记录。传入 nil 会被静默忽略（不记录）。
func WithLogger(l xlog.Logger) Option {
	return func(b *Breaker) {
		if l != nil {
			b.logger = l
		}
	}
}

// New 创建熔断器
//
// name 是被保护的后端身份，用于日志、指标和错误信息。
// 默认配置：连续失败 5 次熔断，冷却 15 秒，HalfOpen 只放行一个试探调用。
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:      name,
		threshold: DefaultFailureThreshold,
		cooldown:  DefaultCooldown,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.cb = gobreaker.NewTwoStepCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // HalfOpen 只允许一个试探调用
		Timeout:     b.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= b.threshold
		},
		// 致命错误不计入失败：请求问题不代表后端不健康
		IsSuccessful: func(err error) bool {
			return !xoutcome.CountsAsFailure(err)
		},
		OnStateChange: b.handleStateChange,
	})

	return b
}

// handleStateChange 状态变化的日志与回调分发
func (b *Breaker) handleStateChange(name string, from, to State) {
	if b.logger != nil {
		b.logger.Warn(context.Background(), "breaker state changed",
			slog.String("backend", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	}
	if b.onStateChange != nil {
		b.onStateChange(name, from, to)
	}
}

// Allow 获取执行许可
//
// 返回的 done 必须在调用结束后恰好调用一次：done(nil) 表示成功，
// done(err) 按 xoutcome.CountsAsFailure 判定是否计入失败。
// 被拒绝时返回 OpenError（nil done）。
func (b *Breaker) Allow() (done func(error), err error) {
	d, err := b.cb.Allow()
	if err != nil {
		return nil, wrapOpenError(err, b.name)
	}
	return d, nil
}

// Do 执行受熔断保护的操作
//
// 一次 Do 只计一次熔断统计。操作 panic 时通过 defer 记为失败后重新抛出，
// 避免 HalfOpen 请求计数悬挂。
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done, err := b.Allow()
	if err != nil {
		return err
	}

	var callErr error
	defer func() {
		if r := recover(); r != nil {
			done(fmt.Errorf("panic: %v", r))
			panic(r)
		}
		done(callErr)
	}()

	callErr = fn(ctx)
	return callErr
}

// Execute 执行受熔断保护的操作（泛型版本）
//
// 与 Do 类似，但支持返回值。泛型函数必须作为包级函数使用。
func Execute[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if ctx == nil {
		return zero, ErrNilContext
	}
	if fn == nil {
		return zero, ErrNilFunc
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	done, err := b.Allow()
	if err != nil {
		return zero, err
	}

	var (
		value   T
		callErr error
	)
	defer func() {
		if r := recover(); r != nil {
			done(fmt.Errorf("panic: %v", r))
			panic(r)
		}
		done(callErr)
	}()

	value, callErr = fn(ctx)
	return value, callErr
}

// Name 返回后端身份
func (b *Breaker) Name() string {
	return b.name
}

// State 返回熔断器当前状态
func (b *Breaker) State() State {
	return b.cb.State()
}

// Counts 返回当前统计计数
func (b *Breaker) Counts() Counts {
	return b.cb.Counts()
}
