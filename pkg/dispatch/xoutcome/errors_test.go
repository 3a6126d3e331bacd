package xoutcome

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	t.Run("NilError", func(t *testing.T) {
		assert.False(t, IsRetryable(nil))
	})

	t.Run("FatalError", func(t *testing.T) {
		err := NewFatalError(errors.New("bad input"))
		assert.False(t, IsRetryable(err))
	})

	t.Run("TransientError", func(t *testing.T) {
		err := NewTransientError(errors.New("backend busy"))
		assert.True(t, IsRetryable(err))
	})

	t.Run("TimeoutError", func(t *testing.T) {
		err := NewTimeoutError(time.Now(), 50*time.Millisecond)
		assert.True(t, IsRetryable(err))
	})

	t.Run("UnknownErrorDefaultsRetryable", func(t *testing.T) {
		assert.True(t, IsRetryable(errors.New("who knows")))
	})

	t.Run("ContextCanceledNotRetryable", func(t *testing.T) {
		assert.False(t, IsRetryable(context.Canceled))
	})

	t.Run("WrappedFatalStaysFatal", func(t *testing.T) {
		// 包装后分类不得降级
		err := fmt.Errorf("tier primary: %w", NewFatalError(errors.New("bad")))
		assert.False(t, IsRetryable(err))
	})
}

func TestTimeoutError(t *testing.T) {
	deadline := time.Now().Add(100 * time.Millisecond)
	err := NewTimeoutError(deadline, 100*time.Millisecond)

	assert.True(t, IsTimeout(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "deadline exceeded")
	assert.Equal(t, deadline, err.Deadline)
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, IsTimeout(nil))
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(fmt.Errorf("attempt 2: %w", NewTimeoutError(time.Now(), time.Second))))
	assert.False(t, IsTimeout(NewTransientError(errors.New("busy"))))
}

func TestCountsAsFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"Transient", NewTransientError(errors.New("busy")), true},
		{"Timeout", NewTimeoutError(time.Now(), time.Second), true},
		{"Fatal", NewFatalError(errors.New("bad")), false},
		{"Unknown", errors.New("x"), true},
		{"CircuitOpen", openStub{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountsAsFailure(tt.err))
		})
	}
}

func TestRetryAfterHint(t *testing.T) {
	t.Run("NoHint", func(t *testing.T) {
		_, ok := RetryAfterHint(NewTransientError(errors.New("busy")))
		assert.False(t, ok)
	})

	t.Run("WithHint", func(t *testing.T) {
		err := NewTransientErrorWithHint(errors.New("busy"), 2*time.Second)
		hint, ok := RetryAfterHint(err)
		assert.True(t, ok)
		assert.Equal(t, 2*time.Second, hint)
	})

	t.Run("NegativeHintTreatedAsAbsent", func(t *testing.T) {
		err := NewTransientErrorWithHint(errors.New("busy"), -time.Second)
		_, ok := RetryAfterHint(err)
		assert.False(t, ok)
	})

	t.Run("WrappedHintStillVisible", func(t *testing.T) {
		err := fmt.Errorf("attempt 1: %w", NewTransientErrorWithHint(errors.New("busy"), time.Second))
		hint, ok := RetryAfterHint(err)
		assert.True(t, ok)
		assert.Equal(t, time.Second, hint)
	})

	t.Run("NilError", func(t *testing.T) {
		_, ok := RetryAfterHint(nil)
		assert.False(t, ok)
	})
}

// openStub 模拟熔断拒绝错误（实际实现见 xbreaker）
type openStub struct{}

func (openStub) Error() string     { return "circuit open" }
func (openStub) CircuitOpen() bool { return true }

func TestIsCircuitOpen(t *testing.T) {
	assert.True(t, IsCircuitOpen(openStub{}))
	assert.True(t, IsCircuitOpen(fmt.Errorf("tier: %w", openStub{})))
	assert.False(t, IsCircuitOpen(errors.New("x")))
	assert.False(t, IsCircuitOpen(nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(NewFatalError(errors.New("bad"))))
	assert.True(t, IsFatal(context.Canceled))
	assert.False(t, IsFatal(openStub{}))
	assert.False(t, IsFatal(NewTransientError(errors.New("busy"))))
	assert.False(t, IsFatal(nil))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "fatal error", NewFatalError(nil).Error())
	assert.Equal(t, "transient error", NewTransientError(nil).Error())
	assert.Equal(t, "boom", NewFatalError(errors.New("boom")).Error())
	assert.Equal(t, "busy", NewTransientError(errors.New("busy")).Error())
}
