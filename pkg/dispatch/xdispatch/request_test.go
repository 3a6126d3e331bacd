package xdispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest_Defaults(t *testing.T) {
	r := NewRequest("payload")
	assert.NotEmpty(t, r.ID())
	assert.Equal(t, "payload", r.Payload())
	assert.Zero(t, r.Priority())

	_, ok := r.Deadline(time.Now())
	assert.False(t, ok)
}

func TestNewRequest_UniqueIDs(t *testing.T) {
	a := NewRequest(1)
	b := NewRequest(1)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestRequest_DeadlineResolution(t *testing.T) {
	now := time.Now()

	t.Run("AbsoluteDeadline", func(t *testing.T) {
		at := now.Add(time.Minute)
		r := NewRequest("p", WithDeadline(at))
		d, ok := r.Deadline(now)
		assert.True(t, ok)
		assert.Equal(t, at, d)
	})

	t.Run("RelativeTimeout", func(t *testing.T) {
		r := NewRequest("p", WithRequestTimeout(time.Second))
		d, ok := r.Deadline(now)
		assert.True(t, ok)
		assert.Equal(t, now.Add(time.Second), d)
	})

	t.Run("AbsoluteWinsOverRelative", func(t *testing.T) {
		at := now.Add(time.Minute)
		r := NewRequest("p", WithDeadline(at), WithRequestTimeout(time.Second))
		d, ok := r.Deadline(now)
		assert.True(t, ok)
		assert.Equal(t, at, d)
	})

	t.Run("IgnoredZeroValues", func(t *testing.T) {
		r := NewRequest("p", WithDeadline(time.Time{}), WithRequestTimeout(-1))
		_, ok := r.Deadline(now)
		assert.False(t, ok)
	})
}

func TestRequest_Priority(t *testing.T) {
	r := NewRequest("p", WithPriority(7))
	assert.Equal(t, 7, r.Priority())
}
