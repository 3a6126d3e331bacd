package xtier

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
	"github.com/omeyang/xdispatch/pkg/resilience/xbreaker"
	"github.com/omeyang/xdispatch/pkg/resilience/xretry"
)

// DefaultTimeout 默认层级超时预算
const DefaultTimeout = 5 * time.Second

// Backend 层级后端调用
//
// 实现方必须响应 ctx 取消，否则超时竞速只能放弃等待，
// 调用本身可能继续在服务端运行。
type Backend[P, T any] func(ctx context.Context, payload P) (T, error)

// Tier 熔断保护执行器
//
// 一个 Tier 对应一个后端身份：独立的熔断器、重试器和超时预算。
// 执行顺序是先取熔断器许可再进入重试循环（保护模式），
// 重试期间的中间失败不计入熔断统计，一次逻辑调用只记一次结果。
type Tier[P, T any] struct {
	name    string
	backend Backend[P, T]
	timeout time.Duration
	breaker *xbreaker.Breaker
	retryer *xretry.Retryer
	clock   clockwork.Clock
}

type tierConfig struct {
	timeout     time.Duration
	breaker     *xbreaker.Breaker
	retryer     *xretry.Retryer
	clock       clockwork.Clock
	breakerOpts []xbreaker.Option
}

// TierOption 层级配置选项
type TierOption func(*tierConfig)

// WithTimeout 设置层级超时预算
// d <= 0 时静默忽略（保持默认值 DefaultTimeout）。
func WithTimeout(d time.Duration) TierOption {
	return func(c *tierConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBreaker 注入熔断器
// 不注入时使用以层级名称为后端身份的默认熔断器。传入 nil 会被静默忽略。
func WithBreaker(b *xbreaker.Breaker) TierOption {
	return func(c *tierConfig) {
		if b != nil {
			c.breaker = b
		}
	}
}

// WithBreakerOptions 设置默认熔断器的配置选项
// 仅在未通过 WithBreaker 注入熔断器时生效。
func WithBreakerOptions(opts ...xbreaker.Option) TierOption {
	return func(c *tierConfig) {
		c.breakerOpts = append(c.breakerOpts, opts...)
	}
}

// WithRetryer 注入重试器
// 不注入时使用默认重试器。传入 nil 会被静默忽略。
func WithRetryer(r *xretry.Retryer) TierOption {
	return func(c *tierConfig) {
		if r != nil {
			c.retryer = r
		}
	}
}

// WithClock 注入时钟
// 主要用于测试。传入 nil 会被静默忽略。
func WithClock(clock clockwork.Clock) TierOption {
	return func(c *tierConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewTier 创建熔断保护执行器
//
// name 是后端身份，同时用作默认熔断器的名称；backend 是实际的后端调用。
func NewTier[P, T any](name string, backend Backend[P, T], opts ...TierOption) (*Tier[P, T], error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if backend == nil {
		return nil, ErrNilBackend
	}

	cfg := &tierConfig{
		timeout: DefaultTimeout,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.breaker == nil {
		cfg.breaker = xbreaker.New(name, cfg.breakerOpts...)
	}
	if cfg.retryer == nil {
		cfg.retryer = xretry.New()
	}

	return &Tier[P, T]{
		name:    name,
		backend: backend,
		timeout: cfg.timeout,
		breaker: cfg.breaker,
		retryer: cfg.retryer,
		clock:   cfg.clock,
	}, nil
}

// Execute 在本层级的超时预算内执行一次逻辑调用
//
// 流程：
//  1. 取熔断器许可，被拒绝时立即返回 CircuitOpen 结果（不触碰后端）；
//  2. 在层级截止时间预算内交给重试器执行；
//  3. 最终结果（成功或最后一次失败）记入熔断器，恰好一次。
//
// 即使后端 panic，也会先将失败记入熔断器再重新抛出。
func (t *Tier[P, T]) Execute(ctx context.Context, payload P) xoutcome.Outcome[T] {
	if ctx == nil {
		return xoutcome.Failure[T](xoutcome.NewFatalError(ErrNilContext))
	}
	if err := ctx.Err(); err != nil {
		return xoutcome.Failure[T](err)
	}

	done, cbErr := t.breaker.Allow()
	if cbErr != nil {
		return xoutcome.Failure[T](cbErr)
	}

	deadline := t.deadline(ctx)
	var out xoutcome.Outcome[T]
	defer func() {
		if r := recover(); r != nil {
			done(fmt.Errorf("panic: %v", r))
			panic(r)
		}
		done(out.Err)
	}()

	out = xretry.Execute(ctx, t.retryer, deadline, func(ctx context.Context) (T, error) {
		return t.backend(ctx, payload)
	})
	return out
}

// Name 返回层级名称（后端身份）
func (t *Tier[P, T]) Name() string {
	return t.name
}

// Breaker 返回层级的熔断器
func (t *Tier[P, T]) Breaker() *xbreaker.Breaker {
	return t.breaker
}

// deadline 计算层级截止时间：now+timeout 与调用方截止时间中较早者
func (t *Tier[P, T]) deadline(ctx context.Context) time.Time {
	tierDeadline := t.clock.Now().Add(t.timeout)
	if callerDeadline, ok := ctx.Deadline(); ok && callerDeadline.Before(tierDeadline) {
		return callerDeadline
	}
	return tierDeadline
}
