// Package poller implements a bounded, sequential retry loop for
// confirmation checks that eventually flip server-side, such as waiting for
// an on-chain payment to become visible to the backend.
package poller

import (
	"context"
	"time"
)

const (
	DefaultMaxAttempts = 20
	DefaultDelay       = 3 * time.Second
)

// State is the outcome of a polling run.
type State int

const (
	// StateConfirmed means an attempt observed the condition as true.
	StateConfirmed State = iota
	// StateStillProcessing means all attempts were used up without a
	// confirmation. This is not a failure; the caller may run the loop
	// again ("check again").
	StateStillProcessing
)

func (s State) String() string {
	switch s {
	case StateConfirmed:
		return "confirmed"
	case StateStillProcessing:
		return "still_processing"
	default:
		return "unknown"
	}
}

// CheckFunc performs one confirmation attempt. done=true stops the loop
// with StateConfirmed. A non-nil error aborts the run entirely; retryable
// conditions must be reported as done=false with a nil error.
type CheckFunc func(ctx context.Context) (done bool, err error)

type Poller struct {
	maxAttempts int
	delay       time.Duration
}

func New(maxAttempts int, delay time.Duration) *Poller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Poller{maxAttempts: maxAttempts, delay: delay}
}

// Run executes check up to maxAttempts times with a fixed delay between
// attempts. Attempts never overlap. Cancelling the context stops the loop
// between attempts and bounds the in-flight one through its own ctx.
func (p *Poller) Run(ctx context.Context, check CheckFunc) (State, error) {
	timer := time.NewTimer(0)
	defer timer.Stop()
	if !timer.Stop() {
		<-timer.C
	}

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			timer.Reset(p.delay)
			select {
			case <-ctx.Done():
				return StateStillProcessing, ctx.Err()
			case <-timer.C:
			}
		}

		done, err := check(ctx)
		if err != nil {
			return StateStillProcessing, err
		}
		if done {
			return StateConfirmed, nil
		}
	}

	return StateStillProcessing, nil
}
