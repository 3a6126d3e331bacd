package xdispatch

import (
	"time"

	"github.com/google/uuid"
)

// Request 一次调度请求
//
// 创建后不可变。ID 在创建时自动生成，用于日志与追踪关联。
// 截止时间二选一：绝对时间（WithDeadline）或相对超时
// （WithRequestTimeout，在 Dispatch 时转换为绝对时间）。
type Request[P any] struct {
	id       string
	payload  P
	deadline time.Time
	timeout  time.Duration
	priority int
}

// RequestOption 请求配置选项
type RequestOption func(*requestConfig)

type requestConfig struct {
	deadline time.Time
	timeout  time.Duration
	priority int
}

// WithDeadline 设置请求的绝对截止时间
// 零值时间会被静默忽略。
func WithDeadline(t time.Time) RequestOption {
	return func(c *requestConfig) {
		if !t.IsZero() {
			c.deadline = t
		}
	}
}

// WithRequestTimeout 设置请求的相对超时
// 已设置绝对截止时间时优先使用绝对截止时间。d <= 0 会被静默忽略。
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(c *requestConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPriority 设置请求优先级
// 仅作为元数据随请求传递，数值越大优先级越高。
func WithPriority(p int) RequestOption {
	return func(c *requestConfig) {
		c.priority = p
	}
}

// NewRequest 创建请求
func NewRequest[P any](payload P, opts ...RequestOption) Request[P] {
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return Request[P]{
		id:       uuid.NewString(),
		payload:  payload,
		deadline: cfg.deadline,
		timeout:  cfg.timeout,
		priority: cfg.priority,
	}
}

// ID 返回请求标识
func (r Request[P]) ID() string {
	return r.id
}

// Payload 返回请求载荷
func (r Request[P]) Payload() P {
	return r.payload
}

// Priority 返回请求优先级
func (r Request[P]) Priority() int {
	return r.priority
}

// Deadline 解析请求的绝对截止时间
//
// 绝对截止时间优先；只设置了相对超时时以 now 为基准换算；
// 两者都未设置时 ok 为 false。
func (r Request[P]) Deadline(now time.Time) (deadline time.Time, ok bool) {
	if !r.deadline.IsZero() {
		return r.deadline, true
	}
	if r.timeout > 0 {
		return now.Add(r.timeout), true
	}
	return time.Time{}, false
}
