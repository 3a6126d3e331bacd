package xbatch

import (
	"context"
	"sync"
)

// Future 一次提交的结果句柄
//
// Future 恰好完成一次，完成后的值不可变。零值不可用，
// 必须通过 newFuture 创建。
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve 以成功值完成
func (f *Future[T]) resolve(value T) {
	f.once.Do(func() {
		f.value = value
		close(f.done)
	})
}

// fail 以错误完成
func (f *Future[T]) fail(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Wait 阻塞等待结果
//
// ctx 取消时返回 ctx.Err()，不影响批内其他请求；
// Future 本身仍会在批完成时正常完成，可以再次 Wait。
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	if ctx == nil {
		return zero, ErrNilContext
	}
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-f.done:
		return f.value, f.err
	}
}

// Done 返回完成信号通道，可用于 select 聚合多个 Future
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Poll 非阻塞探测
// 未完成时 ok 为 false，值与错误均为零值。
func (f *Future[T]) Poll() (value T, err error, ok bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}
