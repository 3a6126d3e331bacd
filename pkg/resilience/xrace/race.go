package xrace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
)

// 参数校验错误
var (
	// ErrNilContext 传入的 context 为 nil
	ErrNilContext = errors.New("xrace: context cannot be nil")

	// ErrNilOperation 传入的操作函数为 nil
	ErrNilOperation = errors.New("xrace: operation cannot be nil")
)

// Operation 受竞速保护的操作
// 必须响应 ctx 取消，否则竞速方只能放弃等待。
type Operation[T any] func(ctx context.Context) (T, error)

// options 竞速配置
type options struct {
	clock clockwork.Clock
}

// Option 竞速配置选项
type Option func(*options)

// WithClock 注入时钟
// 主要用于测试。传入 nil 会被静默忽略。
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// result 后台操作的完成信号
type result[T any] struct {
	value T
	err   error
}

// Race 以 deadline 为界执行 op，返回分类后的结果
//
// 到期即输：计时器先触发时立即取消操作并返回超时结果，即使操作随后
// 产生了成功值也不再投递。op 返回的错误按 xoutcome 规则分类，
// 致命错误原样保留在错误链中。
func Race[T any](ctx context.Context, deadline time.Time, op Operation[T], opts ...Option) xoutcome.Outcome[T] {
	if ctx == nil {
		return xoutcome.Failure[T](xoutcome.NewFatalError(ErrNilContext))
	}
	if op == nil {
		return xoutcome.Failure[T](xoutcome.NewFatalError(ErrNilOperation))
	}

	o := buildOptions(opts)
	start := o.clock.Now()

	wait := deadline.Sub(start)
	if wait <= 0 {
		return xoutcome.Failure[T](xoutcome.NewTimeoutError(deadline, 0))
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 带缓冲：竞速方放弃等待后，后台 goroutine 的发送不会阻塞，
	// 操作一返回 goroutine 即退出。
	ch := make(chan result[T], 1)
	go func() {
		defer func() {
			// 操作在后台 goroutine 中执行，panic 无法沿调用栈传播，
			// 必须就地转换为错误，否则会直接终止进程。
			if r := recover(); r != nil {
				var zero T
				ch <- result[T]{value: zero, err: fmt.Errorf("xrace: operation panic: %v", r)}
			}
		}()
		value, err := op(raceCtx)
		ch <- result[T]{value: value, err: err}
	}()

	timer := o.clock.NewTimer(wait)
	defer timer.Stop()

	select {
	case r := <-ch:
		return xoutcome.From(r.value, r.err)

	case <-timer.Chan():
		// 截止时间权威：不再读取 ch，迟到结果被丢弃
		cancel()
		return xoutcome.Failure[T](xoutcome.NewTimeoutError(deadline, o.clock.Since(start)))

	case <-ctx.Done():
		cancel()
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			return xoutcome.Failure[T](xoutcome.NewTimeoutError(deadline, o.clock.Since(start)))
		}
		return xoutcome.Failure[T](err)
	}
}
