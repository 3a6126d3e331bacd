package xbatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
	"github.com/omeyang/xdispatch/pkg/observability/xlog"
	"github.com/omeyang/xdispatch/pkg/observability/xmetrics"
	"github.com/omeyang/xdispatch/pkg/util/xpool"
)

// 默认配置
const (
	// DefaultBatchSize 默认批大小
	DefaultBatchSize = 32

	// DefaultBatchTimeout 默认批窗口超时
	DefaultBatchTimeout = 10 * time.Millisecond

	// DefaultQueueCapacity 默认队列容量
	DefaultQueueCapacity = 1000

	// DefaultFlushWorkers 默认冲刷 worker 数量
	DefaultFlushWorkers = 4
)

// Backend 批量后端调用
//
// 返回的结果切片必须与 payloads 等长且一一对应，
// 否则整批以 ErrResultLength 失败。
type Backend[P, T any] func(ctx context.Context, payloads []P) ([]T, error)

// Batcher 微批聚合器
//
// 并发安全：任意多个 goroutine 可同时 Submit。
type Batcher[P, T any] struct {
	name         string
	backend      Backend[P, T]
	batchSize    int
	batchTimeout time.Duration
	clock        clockwork.Clock
	logger       xlog.Logger
	observer     xmetrics.Observer

	queue     chan item[P, T]
	pool      *xpool.WorkerPool[*window[P, T]]
	closed    chan struct{}
	closeOnce sync.Once
	drained   chan struct{}
}

type config struct {
	batchSize     int
	batchTimeout  time.Duration
	queueCapacity int
	flushWorkers  int
	clock         clockwork.Clock
	logger        xlog.Logger
	observer      xmetrics.Observer
}

// Option 批聚合器配置选项
type Option func(*config)

// WithBatchSize 设置批大小
// n <= 0 时静默忽略（保持默认值）。
func WithBatchSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithBatchTimeout 设置批窗口超时
// 计时从第一个请求落入新窗口时开始。d <= 0 时静默忽略。
func WithBatchTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.batchTimeout = d
		}
	}
}

// WithQueueCapacity 设置队列容量
// 队列满时 Submit 阻塞（背压）。n <= 0 时静默忽略。
func WithQueueCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.queueCapacity = n
		}
	}
}

// WithFlushWorkers 设置冲刷 worker 数量
// n <= 0 时静默忽略。
func WithFlushWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.flushWorkers = n
		}
	}
}

// WithClock 注入时钟
// 主要用于测试。传入 nil 会被静默忽略。
func WithClock(clock clockwork.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger 注入日志器
// 传入 nil 会被静默忽略。
func WithLogger(l xlog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver 注入观测器
// 传入 nil 会被静默忽略。
func WithObserver(o xmetrics.Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observer = o
		}
	}
}

// New 创建并启动批聚合器
//
// name 是后端身份，用于日志与指标标签。返回的 Batcher 已经在
// 后台运行，使用完毕必须调用 Close 释放 goroutine。
func New[P, T any](name string, backend Backend[P, T], opts ...Option) (*Batcher[P, T], error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if backend == nil {
		return nil, ErrNilBackend
	}

	cfg := &config{
		batchSize:     DefaultBatchSize,
		batchTimeout:  DefaultBatchTimeout,
		queueCapacity: DefaultQueueCapacity,
		flushWorkers:  DefaultFlushWorkers,
		clock:         clockwork.NewRealClock(),
		logger:        xlog.Noop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	b := &Batcher[P, T]{
		name:         name,
		backend:      backend,
		batchSize:    cfg.batchSize,
		batchTimeout: cfg.batchTimeout,
		clock:        cfg.clock,
		logger:       cfg.logger,
		observer:     xmetrics.OrNoop(cfg.observer),
		queue:        make(chan item[P, T], cfg.queueCapacity),
		closed:       make(chan struct{}),
		drained:      make(chan struct{}),
	}

	pool, err := xpool.NewWorkerPool(cfg.flushWorkers, cfg.flushWorkers, b.flush,
		xpool.WithLogger(cfg.logger),
		xpool.WithName(name),
	)
	if err != nil {
		return nil, err
	}
	b.pool = pool

	b.pool.Start()
	go b.drainLoop()
	return b, nil
}

// Submit 提交一个请求，返回其结果句柄
//
// 队列满时阻塞直到有空位或 ctx 取消（背压，绝不静默丢弃）。
// 批聚合器已关闭时返回 ErrClosed。
func (b *Batcher[P, T]) Submit(ctx context.Context, payload P) (*Future[T], error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	f := newFuture[T]()
	it := item[P, T]{payload: payload, future: f}

	// Close 关闭 b.closed 与关闭 b.queue 之间存在极短窗口，
	// select 可能恰好选中已关闭队列的发送分支，就地恢复为 ErrClosed。
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = ErrClosed
			}
		}()
		select {
		case <-b.closed:
			err = ErrClosed
		case <-ctx.Done():
			err = ctx.Err()
		case b.queue <- it:
		}
	}()
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Close 优雅关闭
//
// 拒绝新的提交，排干队列并冲刷未密封的窗口，等待全部在途冲刷
// 完成后返回。幂等。
func (b *Batcher[P, T]) Close() {
	b.closeOnce.Do(func() {
		close(b.closed)
		close(b.queue)
		<-b.drained
		b.pool.Stop()
	})
}

// drainLoop 汇聚循环
//
// 窗口在第一个请求到达时打开并启动计时；批满或超时先到者密封窗口。
// 队列关闭后冲刷最后一个窗口并退出。
func (b *Batcher[P, T]) drainLoop() {
	defer close(b.drained)

	for {
		it, ok := <-b.queue
		if !ok {
			return
		}

		win := newWindow[P, T](b.batchSize)
		win.append(it)

		open := true
		if win.len() < b.batchSize {
			timer := b.clock.NewTimer(b.batchTimeout)
			open = b.fill(win, timer)
			timer.Stop()
		}
		b.dispatch(win)
		if !open {
			return
		}
	}
}

// fill 向窗口追加请求直到批满、超时或队列关闭
// 返回 false 表示队列已关闭。
func (b *Batcher[P, T]) fill(win *window[P, T], timer clockwork.Timer) bool {
	for {
		select {
		case it, ok := <-b.queue:
			if !ok {
				return false
			}
			win.append(it)
			if win.len() >= b.batchSize {
				return true
			}
		case <-timer.Chan():
			return true
		}
	}
}

// dispatch 密封窗口并移交冲刷 worker pool
//
// pool 队列满时阻塞汇聚循环，背压沿队列传导到 Submit 调用方。
func (b *Batcher[P, T]) dispatch(win *window[P, T]) {
	win.seal()
	if err := b.pool.Dispatch(context.Background(), win); err != nil {
		// 只会在关闭竞争的极端情况下发生：立即失败整个窗口而不是悬挂
		win.fail(&BatchError{Err: err, Size: win.len()})
	}
}

// flush 执行一次后端批量调用并完成窗口内全部 Future
//
// 后端 panic 被恢复并作为批级失败投递，绝不让等待方悬挂。
func (b *Batcher[P, T]) flush(ctx context.Context, win *window[P, T]) {
	size := win.len()

	defer func() {
		if r := recover(); r != nil {
			berr := &BatchError{Err: fmt.Errorf("backend panic: %v", r), Size: size}
			b.logger.Error(ctx, "batch backend panic",
				slog.String("batcher", b.name),
				slog.Int("size", size),
				slog.Any("panic", r),
			)
			win.fail(berr)
		}
	}()

	start := b.clock.Now()
	results, err := b.backend(ctx, win.payloads())
	elapsed := b.clock.Since(start)

	if err == nil && len(results) != size {
		err = fmt.Errorf("%w: got %d, want %d", ErrResultLength, len(results), size)
	}
	if err != nil {
		berr := &BatchError{Err: err, Size: size}
		b.observer.ObserveFlush(ctx, b.name, size, xoutcome.Classify(berr), elapsed)
		b.logger.Error(ctx, "batch flush failed",
			slog.String("batcher", b.name),
			slog.Int("size", size),
			slog.String("error", err.Error()),
		)
		win.fail(berr)
		return
	}

	b.observer.ObserveFlush(ctx, b.name, size, xoutcome.KindSuccess, elapsed)
	win.resolve(results)
}

// Name 返回批聚合器名称
func (b *Batcher[P, T]) Name() string {
	return b.name
}
