package xmetrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xdispatch/xmetrics"

	metricAttemptTotal      = "xdispatch.attempt.total"
	metricAttemptDuration   = "xdispatch.attempt.duration"
	metricTierDuration      = "xdispatch.tier.duration"
	metricFlushTotal        = "xdispatch.flush.total"
	metricFlushSize         = "xdispatch.flush.size"
	metricBreakerTransition = "xdispatch.breaker.transition.total"
)

type otelConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// Option 定义 OTel Observer 的配置选项
type Option func(*otelConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider
// 测试时可注入 sdk/metric 的 manual reader provider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// NewOTelObserver 创建基于 OpenTelemetry 的 Observer
func NewOTelObserver(opts ...Option) (Observer, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	attemptTotal, err := meter.Int64Counter(
		metricAttemptTotal,
		metric.WithDescription("total backend attempts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create attempt counter failed: %w", err)
	}

	attemptDuration, err := meter.Float64Histogram(
		metricAttemptDuration,
		metric.WithDescription("backend attempt duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create attempt histogram failed: %w", err)
	}

	tierDuration, err := meter.Float64Histogram(
		metricTierDuration,
		metric.WithDescription("fallback tier duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create tier histogram failed: %w", err)
	}

	flushTotal, err := meter.Int64Counter(
		metricFlushTotal,
		metric.WithDescription("total batch flushes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create flush counter failed: %w", err)
	}

	flushSize, err := meter.Int64Histogram(
		metricFlushSize,
		metric.WithDescription("batch flush size"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create flush size histogram failed: %w", err)
	}

	breakerTransition, err := meter.Int64Counter(
		metricBreakerTransition,
		metric.WithDescription("circuit breaker state transitions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create transition counter failed: %w", err)
	}

	return &otelObserver{
		attemptTotal:      attemptTotal,
		attemptDuration:   attemptDuration,
		tierDuration:      tierDuration,
		flushTotal:        flushTotal,
		flushSize:         flushSize,
		breakerTransition: breakerTransition,
	}, nil
}

type otelObserver struct {
	attemptTotal      metric.Int64Counter
	attemptDuration   metric.Float64Histogram
	tierDuration      metric.Float64Histogram
	flushTotal        metric.Int64Counter
	flushSize         metric.Int64Histogram
	breakerTransition metric.Int64Counter
}

var _ Observer = (*otelObserver)(nil)

// ObserveAttempt 记录一次后端尝试
func (o *otelObserver) ObserveAttempt(ctx context.Context, backend string, attempt int, kind xoutcome.Kind, elapsed time.Duration) {
	ctx = metricsContext(ctx)
	attrs := metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("outcome", kind.String()),
		attribute.Int("attempt", attempt),
	)
	o.attemptTotal.Add(ctx, 1, attrs)
	o.attemptDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// ObserveTier 记录一个层级的执行结果
func (o *otelObserver) ObserveTier(ctx context.Context, tier string, index int, kind xoutcome.Kind, latency time.Duration) {
	o.tierDuration.Record(metricsContext(ctx), latency.Seconds(), metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.Int("tier_index", index),
		attribute.String("outcome", kind.String()),
	))
}

// ObserveFlush 记录一次批量冲刷
func (o *otelObserver) ObserveFlush(ctx context.Context, backend string, size int, kind xoutcome.Kind, elapsed time.Duration) {
	ctx = metricsContext(ctx)
	attrs := metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("outcome", kind.String()),
	)
	o.flushTotal.Add(ctx, 1, attrs)
	o.flushSize.Record(ctx, int64(size), attrs)
}

// ObserveStateChange 记录熔断器状态迁移
func (o *otelObserver) ObserveStateChange(ctx context.Context, backend string, from, to string) {
	o.breakerTransition.Add(metricsContext(ctx), 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// metricsContext 返回不可取消的 context
//
// 失败和超时场景下请求 context 往往已经取消，
// 指标记录不应因此丢失。
func metricsContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
