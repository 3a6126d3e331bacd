package xbackoff

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand/v2"
	"time"
)

// 默认参数，对应调度核心的配置项 baseBackoffMs / jitterMaxMs。
const (
	// DefaultBase 默认基础延迟
	DefaultBase = time.Second
	// DefaultJitterMax 默认最大抖动
	DefaultJitterMax = time.Second
)

// Calculator 退避延迟计算接口
type Calculator interface {
	// Delay 返回第 attempt 次失败后的重试延迟
	// attempt 从 1 开始；attempt <= 0 返回 ErrInvalidAttempt。
	Delay(attempt int) (time.Duration, error)

	// DelayWithHint 带服务端提示的延迟计算
	// hint >= 0 时视为存在提示，原样返回；hint < 0 时等价于 Delay。
	DelayWithHint(attempt int, hint time.Duration) (time.Duration, error)
}

// 确保实现了接口
var _ Calculator = (*Exponential)(nil)

// Exponential 指数退避计算器
//
// delay = base * 2^(attempt-1) + jitter，jitter 均匀分布于 [0, jitterMax)。
// 实例持有独立随机源，不是并发安全的；应按逻辑调用创建（创建开销很小）。
type Exponential struct {
	base      time.Duration
	jitterMax time.Duration
	maxDelay  time.Duration // 0 表示不设上限
	rng       *rand.Rand
}

// Option 指数退避配置选项
type Option func(*Exponential)

// WithBase 设置基础延迟
// d <= 0 时静默忽略（保持默认值）。
func WithBase(d time.Duration) Option {
	return func(e *Exponential) {
		if d > 0 {
			e.base = d
		}
	}
}

// WithJitterMax 设置最大抖动
// d < 0 时静默忽略；d == 0 表示关闭抖动（确定性延迟）。
func WithJitterMax(d time.Duration) Option {
	return func(e *Exponential) {
		if d >= 0 {
			e.jitterMax = d
		}
	}
}

// WithMaxDelay 设置计算延迟的上限
// 只约束指数计算的结果，不约束服务端提示。d <= 0 时静默忽略。
func WithMaxDelay(d time.Duration) Option {
	return func(e *Exponential) {
		if d > 0 {
			e.maxDelay = d
		}
	}
}

// WithRand 注入随机源
// 用于测试时通过固定种子获得确定性抖动序列。传入 nil 会被静默忽略。
func WithRand(r *rand.Rand) Option {
	return func(e *Exponential) {
		if r != nil {
			e.rng = r
		}
	}
}

// NewExponential 创建指数退避计算器
//
// 默认值：base 1s、jitterMax 1s、无 maxDelay 上限。
// 未注入随机源时使用 crypto/rand 播种的独立 PCG 源。
func NewExponential(opts ...Option) *Exponential {
	e := &Exponential{
		base:      DefaultBase,
		jitterMax: DefaultJitterMax,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(randomSeed(), randomSeed()))
	}
	return e
}

// Delay 返回第 attempt 次失败后的重试延迟
func (e *Exponential) Delay(attempt int) (time.Duration, error) {
	if attempt < 1 {
		return 0, ErrInvalidAttempt
	}

	exp := float64(e.base) * math.Pow(2, float64(attempt-1))

	// attempt 极大时 math.Pow 溢出为 +Inf。设置了上限时钳制到上限；
	// 未设置上限时钳制到 MaxInt64，避免转换产生未定义值。
	if math.IsInf(exp, 1) || exp >= math.MaxInt64 {
		if e.maxDelay > 0 {
			return e.maxDelay, nil
		}
		return time.Duration(math.MaxInt64), nil
	}

	delay := time.Duration(exp) + e.jitter()
	if delay < 0 {
		// 抖动加法溢出
		delay = time.Duration(math.MaxInt64)
	}
	if e.maxDelay > 0 && delay > e.maxDelay {
		delay = e.maxDelay
	}
	return delay, nil
}

// DelayWithHint 带服务端提示的延迟计算
//
// 提示优先级高于一切本地计算：hint >= 0 时原样返回，不加抖动、不钳制。
func (e *Exponential) DelayWithHint(attempt int, hint time.Duration) (time.Duration, error) {
	if attempt < 1 {
		return 0, ErrInvalidAttempt
	}
	if hint >= 0 {
		return hint, nil
	}
	return e.Delay(attempt)
}

// jitter 从 [0, jitterMax) 均匀抽取抖动
func (e *Exponential) jitter() time.Duration {
	if e.jitterMax <= 0 {
		return 0
	}
	return time.Duration(e.rng.Int64N(int64(e.jitterMax)))
}

// randomSeed 用 crypto/rand 生成播种值
// 读取失败时退化为固定种子；抖动退化不影响正确性，只影响重试分散度。
func randomSeed() uint64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return 0x9e3779b97f4a7c15
	}
	return binary.LittleEndian.Uint64(buf[:])
}
