// Package job holds demo workloads for the batchrun binary.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Sleeper returns a unit of work that sleeps for the given duration and
// reports how long it waited. It returns early with the context's error if
// the context is cancelled first.
func Sleeper(ms int64) func(context.Context) (any, error) {
	d := time.Duration(ms) * time.Millisecond
	return func(ctx context.Context) (any, error) {
		start := time.Now()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
			return fmt.Sprintf("slept %s", time.Since(start).Round(time.Millisecond)), nil
		}
	}
}

// Checksum returns a CPU-bound unit of work: FNV-style mixing over the word
// for the given number of rounds. The produced value is deterministic, which
// keeps demo runs reproducible end to end.
func Checksum(word string, rounds int) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		var acc uint64 = 1469598103934665603
		for i := 0; i < rounds; i++ {
			for _, b := range []byte(word) {
				acc ^= uint64(b)
				acc *= 1099511628211
			}
		}
		return fmt.Sprintf("%s:%016x", word, acc), nil
	}
}

// Faulty returns a unit of work that always fails with the given reason.
func Faulty(reason string) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return nil, errors.New(reason)
	}
}

// Panicky returns a unit of work that panics, for exercising fault capture.
func Panicky(message string) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		panic(message)
	}
}
