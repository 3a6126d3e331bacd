package xbackoff

import (
	"math/rand/v2"
	"testing"
	"time"
)

// FuzzExponentialDelay 验证任意参数组合下延迟值的基本不变量：
// 不 panic、不为负、设置上限时不超上限。
func FuzzExponentialDelay(f *testing.F) {
	f.Add(int64(time.Second), int64(time.Second), int64(0), 1, uint64(1))
	f.Add(int64(time.Millisecond), int64(0), int64(time.Minute), 30, uint64(42))
	f.Add(int64(1), int64(1), int64(1), 1000, uint64(7))

	f.Fuzz(func(t *testing.T, base, jitterMax, maxDelay int64, attempt int, seed uint64) {
		e := NewExponential(
			WithBase(time.Duration(base)),
			WithJitterMax(time.Duration(jitterMax)),
			WithMaxDelay(time.Duration(maxDelay)),
			WithRand(rand.New(rand.NewPCG(seed, seed))),
		)

		d, err := e.Delay(attempt)
		if attempt < 1 {
			if err != ErrInvalidAttempt {
				t.Fatalf("attempt=%d: expected ErrInvalidAttempt, got %v", attempt, err)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d < 0 {
			t.Fatalf("negative delay %v", d)
		}
		if maxDelay > 0 && d > time.Duration(maxDelay) {
			t.Fatalf("delay %v exceeds maxDelay %v", d, time.Duration(maxDelay))
		}
	})
}
