package xbreaker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
)

func TestOpenError(t *testing.T) {
	e := &OpenError{Err: gobreaker.ErrOpenState, Name: "primary", State: StateOpen}

	assert.Equal(t, "breaker primary: circuit breaker is open", e.Error())
	assert.ErrorIs(t, e, gobreaker.ErrOpenState)
	assert.False(t, e.Retryable())
	assert.True(t, e.CircuitOpen())
	assert.Equal(t, xoutcome.KindCircuitOpen, xoutcome.Classify(e))
}

func TestOpenError_NoName(t *testing.T) {
	e := &OpenError{Err: gobreaker.ErrOpenState}
	assert.Equal(t, gobreaker.ErrOpenState.Error(), e.Error())
}

func TestWrapOpenError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, wrapOpenError(nil, "b"))
	})

	t.Run("OpenState", func(t *testing.T) {
		err := wrapOpenError(gobreaker.ErrOpenState, "b")
		var oe *OpenError
		assert.ErrorAs(t, err, &oe)
		assert.Equal(t, StateOpen, oe.State)
	})

	t.Run("TooManyRequests", func(t *testing.T) {
		err := wrapOpenError(gobreaker.ErrTooManyRequests, "b")
		var oe *OpenError
		assert.ErrorAs(t, err, &oe)
		assert.Equal(t, StateHalfOpen, oe.State)
	})

	t.Run("AlreadyWrappedKeepsOrigin", func(t *testing.T) {
		inner := &OpenError{Err: gobreaker.ErrOpenState, Name: "inner", State: StateOpen}
		err := wrapOpenError(fmt.Errorf("outer: %w", inner), "outer")
		var oe *OpenError
		assert.ErrorAs(t, err, &oe)
		assert.Equal(t, "inner", oe.Name)
	})

	t.Run("OtherErrorsPassThrough", func(t *testing.T) {
		cause := errors.New("business error")
		assert.Equal(t, cause, wrapOpenError(cause, "b"))
	})

	t.Run("WrappedSentinelNotAttributed", func(t *testing.T) {
		// 错误链中的 sentinel 不归因到当前熔断器
		err := fmt.Errorf("nested: %w", gobreaker.ErrOpenState)
		assert.Equal(t, err, wrapOpenError(err, "b"))
	})
}

func TestIsOpen(t *testing.T) {
	assert.True(t, IsOpen(gobreaker.ErrOpenState))
	assert.True(t, IsOpen(gobreaker.ErrTooManyRequests))
	assert.True(t, IsOpen(&OpenError{Err: gobreaker.ErrOpenState}))
	assert.False(t, IsOpen(errors.New("x")))
	assert.False(t, IsOpen(nil))
}
