package xtier

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
	"github.com/omeyang/xdispatch/pkg/observability/xlog"
	"github.com/omeyang/xdispatch/pkg/observability/xmetrics"
)

// Result 回退链的解析结果
type Result[T any] struct {
	// Outcome 最终结果：应答层级的成功结果，或聚合全部失败的 ExhaustedError
	Outcome xoutcome.Outcome[T]
	// Tier 应答层级的名称；全部失败时为空
	Tier string
	// TierIndex 应答层级的序号（从 1 开始）；全部失败时为 0
	TierIndex int
	// Latency 应答层级的耗时；全部失败时为全链总耗时
	Latency time.Duration
	// Failures 之前失败层级的诊断信息（按尝试顺序）
	Failures []TierFailure
}

// Chain 多层回退链
//
// 按顺序尝试各层级，第一个成功的层级短路返回。
// Chain 自身不可变，创建后可被多 goroutine 并发使用。
type Chain[P, T any] struct {
	tiers    []*Tier[P, T]
	logger   xlog.Logger
	observer xmetrics.Observer
	clock    clockwork.Clock
}

type chainConfig struct {
	logger   xlog.Logger
	observer xmetrics.Observer
	clock    clockwork.Clock
}

// ChainOption 回退链配置选项
type ChainOption func(*chainConfig)

// WithChainLogger 注入日志器
// 层级回退时记录 Warn 日志。传入 nil 会被静默忽略。
func WithChainLogger(l xlog.Logger) ChainOption {
	return func(c *chainConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithChainObserver 注入观测器
// 记录每个层级的耗时与结果。传入 nil 会被静默忽略。
func WithChainObserver(o xmetrics.Observer) ChainOption {
	return func(c *chainConfig) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithChainClock 注入时钟
// 主要用于测试。传入 nil 会被静默忽略。
func WithChainClock(clock clockwork.Clock) ChainOption {
	return func(c *chainConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewChain 创建回退链
// 至少需要一个层级，nil 层级会被拒绝。
func NewChain[P, T any](tiers []*Tier[P, T], opts ...ChainOption) (*Chain[P, T], error) {
	if len(tiers) == 0 {
		return nil, ErrNoTiers
	}
	for _, t := range tiers {
		if t == nil {
			return nil, ErrNilTier
		}
	}

	cfg := &chainConfig{
		logger: xlog.Noop(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Chain[P, T]{
		tiers:    append([]*Tier[P, T](nil), tiers...),
		logger:   cfg.logger,
		observer: xmetrics.OrNoop(cfg.observer),
		clock:    cfg.clock,
	}, nil
}

// Resolve 按顺序尝试各层级直到成功或全部耗尽
//
// 单层的 CircuitOpen、FatalError、TimedOut 和可重试失败都只触发回退，
// 不会提前上抛；全部失败时 Outcome 携带聚合了每层结果的 ExhaustedError。
// 调用方 context 取消时立即停止尝试后续层级。
func (c *Chain[P, T]) Resolve(ctx context.Context, payload P) Result[T] {
	if ctx == nil {
		return Result[T]{Outcome: xoutcome.Failure[T](xoutcome.NewFatalError(ErrNilContext))}
	}

	start := c.clock.Now()
	failures := make([]TierFailure, 0, len(c.tiers))

	for i, tier := range c.tiers {
		if err := ctx.Err(); err != nil {
			failures = append(failures, TierFailure{Tier: tier.name, Index: i + 1, Err: err})
			break
		}

		tierStart := c.clock.Now()
		out := tier.Execute(ctx, payload)
		latency := c.clock.Since(tierStart)
		c.observer.ObserveTier(ctx, tier.name, i+1, out.Kind, latency)

		if out.IsSuccess() {
			return Result[T]{
				Outcome:   out,
				Tier:      tier.name,
				TierIndex: i + 1,
				Latency:   latency,
				Failures:  failures,
			}
		}

		failures = append(failures, TierFailure{
			Tier:    tier.name,
			Index:   i + 1,
			Latency: latency,
			Err:     out.Err,
		})
		if i+1 < len(c.tiers) {
			c.logger.Warn(ctx, "tier failed, falling back",
				slog.String("tier", tier.name),
				slog.Int("tier_index", i+1),
				slog.String("outcome", out.Kind.String()),
				slog.String("error", out.Err.Error()),
			)
		}
	}

	exhausted := &ExhaustedError{Failures: failures}
	c.logger.Error(ctx, "all tiers exhausted",
		slog.Int("tiers", len(c.tiers)),
		slog.String("error", exhausted.Error()),
	)
	return Result[T]{
		Outcome:  xoutcome.Failure[T](exhausted),
		Latency:  c.clock.Since(start),
		Failures: failures,
	}
}

// Tiers 返回层级数量
func (c *Chain[P, T]) Tiers() int {
	return len(c.tiers)
}
