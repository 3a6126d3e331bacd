package xretry_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omeyang/xdispatch/pkg/dispatch/xoutcome"
	"github.com/omeyang/xdispatch/pkg/resilience/xbackoff"
	"github.com/omeyang/xdispatch/pkg/resilience/xretry"
)

func ExampleExecute() {
	r := xretry.New(
		xretry.WithMaxRetries(3),
		xretry.WithCalculator(func() xbackoff.Calculator {
			return xbackoff.NewExponential(
				xbackoff.WithBase(time.Nanosecond),
				xbackoff.WithJitterMax(0),
			)
		}),
	)

	var attempts int
	out := xretry.Execute(context.Background(), r, time.Now().Add(time.Second),
		func(_ context.Context) (string, error) {
			attempts++
			if attempts < 3 {
				return "", xoutcome.NewTransientError(errors.New("upstream busy"))
			}
			return "hello", nil
		})

	fmt.Println("kind:", out.Kind)
	fmt.Println("value:", out.Value)
	fmt.Println("attempts:", attempts)
	// Output:
	// kind: success
	// value: hello
	// attempts: 3
}

func ExampleRetryer_Do() {
	r := xretry.New(xretry.WithMaxRetries(2))

	err := r.Do(context.Background(), time.Now().Add(time.Second),
		func(_ context.Context) error {
			return xoutcome.NewFatalError(errors.New("bad request"))
		})

	fmt.Println("fatal:", xoutcome.IsFatal(err))
	// Output:
	// fatal: true
}
