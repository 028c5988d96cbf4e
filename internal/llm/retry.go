package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State is a step of the retry state machine.
type State int

const (
	StateAttempting State = iota
	StateBackoff
	StateSucceeded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateBackoff:
		return "backoff"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Policy bounds how a call is retried.
type Policy struct {
	MaxAttempts   int
	Initial       time.Duration
	Max           time.Duration
	MaxRetryAfter time.Duration
}

// DefaultPolicy makes five attempts with 2s, 4s, 8s, 16s waits in between,
// each wait capped at 30s unless the server asks for longer via Retry-After.
var DefaultPolicy = Policy{
	MaxAttempts:   5,
	Initial:       2 * time.Second,
	Max:           30 * time.Second,
	MaxRetryAfter: 60 * time.Second,
}

// Retryer walks a single call through Attempting → Backoff → ... and ends
// in Succeeded or Exhausted. It holds no clock; callers sleep for the
// returned wait themselves.
type Retryer struct {
	policy  Policy
	state   State
	attempt int
	backoff time.Duration
	lastErr error
}

// Start begins a new call at its first attempt.
func (p Policy) Start() *Retryer {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	return &Retryer{
		policy:  p,
		state:   StateAttempting,
		attempt: 1,
		backoff: p.Initial,
	}
}

func (r *Retryer) State() State { return r.state }

// Attempt is the 1-based number of the current attempt.
func (r *Retryer) Attempt() int { return r.attempt }

// Succeed marks the current attempt as successful.
func (r *Retryer) Succeed() {
	r.state = StateSucceeded
	r.lastErr = nil
}

// Fail records a retryable failure of the current attempt. It returns how
// long to wait before the next attempt; after the last attempt the state
// becomes Exhausted and the wait is zero. retryAfter > 0 overrides the
// exponential delay.
func (r *Retryer) Fail(err error, retryAfter time.Duration) time.Duration {
	r.lastErr = err
	if r.attempt >= r.policy.MaxAttempts {
		r.state = StateExhausted
		return 0
	}

	wait := r.backoff
	if retryAfter > 0 {
		wait = retryAfter
		if r.policy.MaxRetryAfter > 0 && wait > r.policy.MaxRetryAfter {
			wait = r.policy.MaxRetryAfter
		}
	}
	r.backoff *= 2
	if r.policy.Max > 0 && r.backoff > r.policy.Max {
		r.backoff = r.policy.Max
	}
	r.state = StateBackoff
	return wait
}

// Resume moves from Backoff to the next attempt.
func (r *Retryer) Resume() {
	if r.state != StateBackoff {
		return
	}
	r.attempt++
	r.state = StateAttempting
}

// Err is the terminal error once the retryer is Exhausted.
func (r *Retryer) Err() error {
	if r.state != StateExhausted {
		return nil
	}
	var rl *rateLimitError
	if errors.As(r.lastErr, &rl) {
		return fmt.Errorf("%w after %d attempts: %w", ErrRateLimited, r.attempt, r.lastErr)
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrTransport, r.attempt, r.lastErr)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the real-clock Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
