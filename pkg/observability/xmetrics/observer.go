package xmetrics

import (
	"context"
	"time"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
)

// Observer 定义调度核心的观测接口
//
// 所有方法都必须是非阻塞且并发安全的。实现不得 panic，
// 也不得修改传入的 context。
type Observer interface {
	// ObserveAttempt 记录一次后端尝试
	// attempt 从 1 开始，elapsed 是该次尝试的耗时。
	ObserveAttempt(ctx context.Context, backend string, attempt int, kind xoutcome.Kind, elapsed time.Duration)

	// ObserveTier 记录一个层级的执行结果
	// index 从 1 开始，latency 是该层级的总耗时（含重试与退避）。
	ObserveTier(ctx context.Context, tier string, index int, kind xoutcome.Kind, latency time.Duration)

	// ObserveFlush 记录一次批量冲刷
	// size 是本批请求数，elapsed 是后端批量调用的耗时。
	ObserveFlush(ctx context.Context, backend string, size int, kind xoutcome.Kind, elapsed time.Duration)

	// ObserveStateChange 记录熔断器状态迁移
	ObserveStateChange(ctx context.Context, backend string, from, to string)
}

// NoopObserver 是空实现
type NoopObserver struct{}

var _ Observer = NoopObserver{}

// ObserveAttempt 空实现
func (NoopObserver) ObserveAttempt(context.Context, string, int, xoutcome.Kind, time.Duration) {}

// ObserveTier 空实现
func (NoopObserver) ObserveTier(context.Context, string, int, xoutcome.Kind, time.Duration) {}

// ObserveFlush 空实现
func (NoopObserver) ObserveFlush(context.Context, string, int, xoutcome.Kind, time.Duration) {}

// ObserveStateChange 空实现
func (NoopObserver) ObserveStateChange(context.Context, string, string, string) {}

// OrNoop 将 nil observer 归一化为 NoopObserver
//
// 组件内部统一通过 OrNoop 持有 observer，调用点无需再做 nil 检查。
func OrNoop(o Observer) Observer {
	if o == nil {
		return NoopObserver{}
	}
	return o
}
