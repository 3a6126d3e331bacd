package xoutcome

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"Nil", nil, KindSuccess},
		{"Transient", NewTransientError(errors.New("busy")), KindRetryable},
		{"Fatal", NewFatalError(errors.New("bad")), KindFatal},
		{"Timeout", NewTimeoutError(time.Now(), time.Second), KindTimeout},
		{"DeadlineExceeded", context.DeadlineExceeded, KindTimeout},
		{"Canceled", context.Canceled, KindFatal},
		{"CircuitOpen", openStub{}, KindCircuitOpen},
		{"Unknown", errors.New("x"), KindRetryable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestOutcome(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		o := Success("hello")
		assert.True(t, o.IsSuccess())
		assert.Equal(t, KindSuccess, o.Kind)
		assert.Equal(t, "hello", o.Value)
		assert.NoError(t, o.Err)
	})

	t.Run("FailureKeepsErrorChain", func(t *testing.T) {
		cause := errors.New("busy")
		o := Failure[string](NewTransientError(cause))
		assert.False(t, o.IsSuccess())
		assert.Equal(t, KindRetryable, o.Kind)
		assert.True(t, errors.Is(o.Err, cause))
	})

	t.Run("FailureWithNilErrorIsSuccess", func(t *testing.T) {
		o := Failure[int](nil)
		assert.True(t, o.IsSuccess())
		assert.Zero(t, o.Value)
	})

	t.Run("From", func(t *testing.T) {
		o := From(42, nil)
		assert.Equal(t, KindSuccess, o.Kind)
		assert.Equal(t, 42, o.Value)

		o = From(0, NewFatalError(errors.New("bad")))
		assert.Equal(t, KindFatal, o.Kind)
	})

	t.Run("ShouldRetry", func(t *testing.T) {
		assert.True(t, Failure[int](NewTransientError(errors.New("busy"))).ShouldRetry())
		assert.True(t, Failure[int](NewTimeoutError(time.Now(), time.Second)).ShouldRetry())
		assert.False(t, Failure[int](NewFatalError(errors.New("bad"))).ShouldRetry())
		assert.False(t, Failure[int](openStub{}).ShouldRetry())
		assert.False(t, Success(1).ShouldRetry())
	})

	t.Run("Unpack", func(t *testing.T) {
		v, err := Success(7).Unpack()
		assert.Equal(t, 7, v)
		assert.NoError(t, err)

		_, err = Failure[int](errors.New("x")).Unpack()
		assert.Error(t, err)
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "success", KindSuccess.String())
	assert.Equal(t, "retryable", KindRetryable.String())
	assert.Equal(t, "fatal", KindFatal.String())
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "circuit_open", KindCircuitOpen.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
