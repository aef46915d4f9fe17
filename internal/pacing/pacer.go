// Package pacing provides the delay policy used between API calls.
//
// The external service watches for machine-regular traffic, so waits are drawn
// uniformly from a [Min, Max] window instead of being fixed.
package pacing

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Pacer blocks between two paced operations
type Pacer interface {
	Wait(ctx context.Context) error
}

// Jitter waits a uniformly random duration in [Min, Max], in whole milliseconds
type Jitter struct {
	Min time.Duration
	Max time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewJitter creates a jitter pacer. min > max is treated as a fixed min.
func NewJitter(min, max time.Duration) *Jitter {
	return &Jitter{Min: min, Max: max}
}

// WithRand makes the draws reproducible
func (j *Jitter) WithRand(rng *rand.Rand) *Jitter {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rng = rng
	return j
}

// Next draws the next delay
func (j *Jitter) Next() time.Duration {
	minMs := int64(j.Min / time.Millisecond)
	maxMs := int64(j.Max / time.Millisecond)
	if maxMs <= minMs {
		return time.Duration(minMs) * time.Millisecond
	}

	span := maxMs - minMs + 1
	var n int64
	j.mu.Lock()
	if j.rng != nil {
		n = j.rng.Int64N(span)
	} else {
		n = rand.Int64N(span)
	}
	j.mu.Unlock()

	return time.Duration(minMs+n) * time.Millisecond
}

// Wait sleeps for Next() or until ctx is done
func (j *Jitter) Wait(ctx context.Context) error {
	return Sleep(ctx, j.Next())
}

// None never waits. Use it to disable pacing in tests.
type None struct{}

func (None) Wait(ctx context.Context) error {
	return ctx.Err()
}

// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
