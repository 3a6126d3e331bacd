package xpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool_Validation(t *testing.T) {
	t.Run("NilHandler", func(t *testing.T) {
		_, err := NewWorkerPool[int](1, 1, nil)
		assert.ErrorIs(t, err, ErrNilHandler)
	})

	t.Run("ClampsWorkersAndQueue", func(t *testing.T) {
		p, err := NewWorkerPool(0, 0, func(ctx context.Context, task int) {})
		require.NoError(t, err)
		assert.Equal(t, 1, p.Workers())
	})
}

func TestWorkerPool_ProcessesAllTasks(t *testing.T) {
	var sum atomic.Int64
	var wg sync.WaitGroup

	p, err := NewWorkerPool(4, 8, func(ctx context.Context, task int) {
		sum.Add(int64(task))
		wg.Done()
	})
	require.NoError(t, err)
	p.Start()

	const n = 100
	wg.Add(n)
	for i := 1; i <= n; i++ {
		require.NoError(t, p.Dispatch(context.Background(), i))
	}
	wg.Wait()
	p.Stop()

	assert.EqualValues(t, n*(n+1)/2, sum.Load())
}

func TestWorkerPool_DispatchBlocksWhenFull(t *testing.T) {
	release := make(chan struct{})
	p, err := NewWorkerPool(1, 1, func(ctx context.Context, task int) {
		<-release
	})
	require.NoError(t, err)
	p.Start()
	defer func() {
		close(release)
		p.Stop()
	}()

	// 占满 worker 和队列
	require.NoError(t, p.Dispatch(context.Background(), 1))
	require.NoError(t, p.Dispatch(context.Background(), 2))

	// 队列已满，带超时的 Dispatch 应阻塞直到 context 取消
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err = p.Dispatch(ctx, 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerPool_StopDrainsQueue(t *testing.T) {
	var processed atomic.Int32
	p, err := NewWorkerPool(1, 16, func(ctx context.Context, task int) {
		time.Sleep(time.Millisecond)
		processed.Add(1)
	})
	require.NoError(t, err)
	p.Start()

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Dispatch(context.Background(), i))
	}
	p.Stop()

	assert.EqualValues(t, 10, processed.Load())
}

func TestWorkerPool_DispatchAfterStop(t *testing.T) {
	p, err := NewWorkerPool(1, 1, func(ctx context.Context, task int) {})
	require.NoError(t, err)
	p.Start()
	p.Stop()

	err = p.Dispatch(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestWorkerPool_NilContext(t *testing.T) {
	p, err := NewWorkerPool(1, 1, func(ctx context.Context, task int) {})
	require.NoError(t, err)

	//nolint:staticcheck // 显式验证 nil context 的防御行为
	assert.ErrorIs(t, p.Dispatch(nil, 1), ErrNilContext)
}

func TestWorkerPool_PanicRecovered(t *testing.T) {
	var after atomic.Bool
	var wg sync.WaitGroup
	wg.Add(2)

	p, err := NewWorkerPool(1, 4, func(ctx context.Context, task int) {
		defer wg.Done()
		if task == 1 {
			panic("task exploded")
		}
		after.Store(true)
	})
	require.NoError(t, err)
	p.Start()
	defer p.Stop()

	require.NoError(t, p.Dispatch(context.Background(), 1))
	require.NoError(t, p.Dispatch(context.Background(), 2))
	wg.Wait()

	// panic 被恢复，后续任务照常处理
	assert.True(t, after.Load())
}

func TestWorkerPool_StartIdempotent(t *testing.T) {
	p, err := NewWorkerPool(2, 2, func(ctx context.Context, task int) {})
	require.NoError(t, err)
	p.Start()
	p.Start()
	p.Stop()
}

func TestWorkerPool_StopIdempotent(t *testing.T) {
	p, err := NewWorkerPool(1, 1, func(ctx context.Context, task int) {})
	require.NoError(t, err)
	p.Start()
	p.Stop()
	p.Stop()
}
