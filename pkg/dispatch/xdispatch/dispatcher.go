package xdispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xdispatch/pkg/batch/xbatch"
	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
	"github.com/omeyang/xdispatch/pkg/observability/xlog"
	"github.com/omeyang/xdispatch/pkg/observability/xmetrics"
	"github.com/omeyang/xdispatch/pkg/resilience/xbackoff"
	"github.com/omeyang/xdispatch/pkg/resilience/xbreaker"
	"github.com/omeyang/xdispatch/pkg/resilience/xretry"
	"github.com/omeyang/xdispatch/pkg/resilience/xtier"
)

// TierBackend 一个层级的后端绑定
//
// Invoke 接收整批载荷，返回与载荷等长且一一对应的结果切片。
// 实现必须响应 ctx 取消。
type TierBackend[P, T any] struct {
	// Name 后端身份，用作熔断器名称与日志、指标标签
	Name string
	// Invoke 批量后端调用
	Invoke xtier.Backend[[]P, []T]
}

// Dispatcher 弹性调度器
//
// 组合微批聚合器与多层回退链。并发安全，使用完毕必须调用 Close。
type Dispatcher[P, T any] struct {
	name    string
	chain   *xtier.Chain[[]P, []T]
	batcher *xbatch.Batcher[P, T]
	logger  xlog.Logger
	clock   clockwork.Clock
}

// Option 调度器配置选项
type Option func(*dispatcherConfig)

type dispatcherConfig struct {
	logger   xlog.Logger
	observer xmetrics.Observer
	clock    clockwork.Clock
}

// WithLogger 注入日志器
// 传入 nil 会被静默忽略。
func WithLogger(l xlog.Logger) Option {
	return func(c *dispatcherConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver 注入观测器
// 传入 nil 会被静默忽略。
func WithObserver(o xmetrics.Observer) Option {
	return func(c *dispatcherConfig) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithClock 注入时钟
// 主要用于测试。传入 nil 会被静默忽略。
func WithClock(clock clockwork.Clock) Option {
	return func(c *dispatcherConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New 创建并启动调度器
//
// backends 按回退顺序排列：第一个是首选层级。每个层级获得独立的
// 熔断器与重试预算，超时取 cfg.TierTimeoutsMs 中对应位置的值。
func New[P, T any](name string, backends []TierBackend[P, T], cfg Config, opts ...Option) (*Dispatcher[P, T], error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	for _, b := range backends {
		if b.Invoke == nil {
			return nil, ErrNilBackend
		}
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dc := &dispatcherConfig{
		logger: xlog.Noop(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(dc)
	}
	observer := xmetrics.OrNoop(dc.observer)

	calcOpts := []xbackoff.Option{
		xbackoff.WithBase(millis(cfg.BaseBackoffMs)),
		xbackoff.WithJitterMax(millis(cfg.JitterMaxMs)),
	}
	if cfg.MaxBackoffMs > 0 {
		calcOpts = append(calcOpts, xbackoff.WithMaxDelay(millis(cfg.MaxBackoffMs)))
	}
	newCalculator := func() xbackoff.Calculator {
		return xbackoff.NewExponential(calcOpts...)
	}

	tiers := make([]*xtier.Tier[[]P, []T], 0, len(backends))
	for i, b := range backends {
		tierName := b.Name

		retryOpts := []xretry.Option{
			xretry.WithMaxRetries(cfg.MaxRetries),
			xretry.WithCalculator(newCalculator),
			xretry.WithClock(dc.clock),
			xretry.WithOnAttempt(func(attempt int, kind xoutcome.Kind, elapsed time.Duration) {
				observer.ObserveAttempt(context.Background(), tierName, attempt, kind, elapsed)
			}),
			xretry.WithOnRetry(func(attempt int, delay time.Duration, err error) {
				dc.logger.Debug(context.Background(), "attempt failed, backing off",
					slog.String("tier", tierName),
					slog.Int("attempt", attempt),
					slog.Duration("delay", delay),
					slog.String("error", err.Error()),
				)
			}),
		}
		if cfg.AttemptTimeoutMs > 0 {
			retryOpts = append(retryOpts, xretry.WithAttemptTimeout(millis(cfg.AttemptTimeoutMs)))
		}

		tier, err := xtier.NewTier(tierName, b.Invoke,
			xtier.WithTimeout(cfg.TierTimeout(i)),
			xtier.WithRetryer(xretry.New(retryOpts...)),
			xtier.WithClock(dc.clock),
			xtier.WithBreakerOptions(
				xbreaker.WithFailureThreshold(uint32(cfg.FailureThreshold)),
				xbreaker.WithCooldown(millis(cfg.CooldownMs)),
				xbreaker.WithLogger(dc.logger),
				xbreaker.WithOnStateChange(func(backend string, from, to xbreaker.State) {
					observer.ObserveStateChange(context.Background(), backend, from.String(), to.String())
				}),
			),
		)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}

	chain, err := xtier.NewChain(tiers,
		xtier.WithChainLogger(dc.logger),
		xtier.WithChainObserver(observer),
		xtier.WithChainClock(dc.clock),
	)
	if err != nil {
		return nil, err
	}

	batcher, err := xbatch.New(name,
		func(ctx context.Context, payloads []P) ([]T, error) {
			res := chain.Resolve(ctx, payloads)
			if res.Outcome.IsSuccess() {
				dc.logger.Debug(ctx, "batch resolved",
					slog.String("dispatcher", name),
					slog.String("tier", res.Tier),
					slog.Int("tier_index", res.TierIndex),
					slog.Int("size", len(payloads)),
					slog.Duration("latency", res.Latency),
				)
				return res.Outcome.Value, nil
			}
			return nil, res.Outcome.Err
		},
		xbatch.WithBatchSize(cfg.BatchSize),
		xbatch.WithBatchTimeout(millis(cfg.BatchTimeoutMs)),
		xbatch.WithQueueCapacity(cfg.QueueCapacity),
		xbatch.WithClock(dc.clock),
		xbatch.WithLogger(dc.logger),
		xbatch.WithObserver(observer),
	)
	if err != nil {
		return nil, err
	}

	return &Dispatcher[P, T]{
		name:    name,
		chain:   chain,
		batcher: batcher,
		logger:  dc.logger,
		clock:   dc.clock,
	}, nil
}

// Dispatch 提交请求，返回结果句柄
//
// 请求带截止时间时：已过期的请求立即被拒绝，排队等待（背压阻塞）
// 也受该截止时间约束。返回的 Future 在请求所在的批完成时解析。
func (d *Dispatcher[P, T]) Dispatch(ctx context.Context, req Request[P]) (*xbatch.Future[T], error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	if deadline, ok := req.Deadline(d.clock.Now()); ok {
		if !deadline.After(d.clock.Now()) {
			return nil, ErrDeadlinePassed
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	f, err := d.batcher.Submit(ctx, req.Payload())
	if err != nil {
		return nil, err
	}
	d.logger.Debug(ctx, "request dispatched",
		slog.String("dispatcher", d.name),
		slog.String("request_id", req.ID()),
	)
	return f, nil
}

// Do 提交请求并阻塞等待结果
//
// 等待受请求截止时间与 ctx 双重约束。
func (d *Dispatcher[P, T]) Do(ctx context.Context, req Request[P]) (T, error) {
	var zero T
	f, err := d.Dispatch(ctx, req)
	if err != nil {
		return zero, err
	}

	waitCtx := ctx
	if deadline, ok := req.Deadline(d.clock.Now()); ok {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}
	return f.Wait(waitCtx)
}

// Close 优雅关闭
// 拒绝新请求，冲刷在途批次后返回。幂等。
func (d *Dispatcher[P, T]) Close() {
	d.batcher.Close()
}

// Name 返回调度器名称
func (d *Dispatcher[P, T]) Name() string {
	return d.name
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
