package xpool

import (
	"context"
	"log/slog"
	"sync"

	"github.com/omeyang/xdispatch/pkg/observability/xlog"
)

// Handler 任务处理函数
// ctx 不携带取消信号：优雅关闭要求在途任务全部执行完成。
type Handler[T any] func(ctx context.Context, task T)

// WorkerPool 泛型 worker pool
//
// 用于异步执行任务，支持背压、优雅关闭和 panic 恢复。
type WorkerPool[T any] struct {
	workers  int
	handler  Handler[T]
	queue    chan T
	logger   xlog.Logger
	name     string
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
	started  bool
	startMu  sync.Mutex
}

// Option 定义 pool 的可选配置
type Option func(*options)

type options struct {
	logger xlog.Logger
	name   string
}

// WithLogger 设置日志器
// 默认为 Noop。传入 nil 将被忽略。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithName 设置 pool 名称，用于多实例场景下区分日志来源
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// NewWorkerPool 创建 worker pool
//
// workers 最小为 1，queueSize 最小为 1，handler 不能为 nil。
func NewWorkerPool[T any](workers, queueSize int, handler Handler[T], opts ...Option) (*WorkerPool[T], error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	o := options{logger: xlog.Noop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &WorkerPool[T]{
		workers: workers,
		handler: handler,
		queue:   make(chan T, queueSize),
		logger:  o.logger,
		name:    o.name,
		stopped: make(chan struct{}),
	}, nil
}

// Start 启动 worker pool
// 该方法是幂等的：多次调用只会启动一次 worker。
func (p *WorkerPool[T]) Start() {
	p.startMu.Lock()
	defer p.startMu.Unlock()

	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker 只从 queue 中读取任务，不检查 stopped 信号。
// 这确保 Stop 时能处理完队列中的剩余任务（优雅关闭）。
func (p *WorkerPool[T]) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(task)
	}
}

// run 执行单个任务并恢复 panic
func (p *WorkerPool[T]) run(task T) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(context.Background(), "xpool: worker panic recovered",
				slog.String("pool", p.name),
				slog.Any("panic", r),
			)
		}
	}()
	// 不传递取消信号：在途任务必须执行完成
	p.handler(context.WithoutCancel(context.Background()), task)
}

// Dispatch 提交任务，队列满时阻塞（背压）
//
// 只有三种出路：任务入队（nil）、调用方 context 取消（ctx.Err()）、
// pool 已停止（ErrPoolStopped）。任务永远不会被静默丢弃。
func (p *WorkerPool[T]) Dispatch(ctx context.Context, task T) (err error) {
	if ctx == nil {
		return ErrNilContext
	}

	// Stop 关闭 p.stopped 与关闭 p.queue 之间存在极短窗口，
	// select 可能恰好选中已关闭队列的发送分支，就地恢复为 ErrPoolStopped。
	defer func() {
		if r := recover(); r != nil {
			err = ErrPoolStopped
		}
	}()

	select {
	case <-p.stopped:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	case p.queue <- task:
		return nil
	}
}

// Stop 停止 worker pool
// 拒绝新任务，等待队列中所有剩余任务处理完成后返回。
func (p *WorkerPool[T]) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopped)
		close(p.queue)
		p.wg.Wait()
	})
}

// Workers 返回 worker 数量
func (p *WorkerPool[T]) Workers() int {
	return p.workers
}
