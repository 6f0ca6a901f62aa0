package bootstrap

import (
	"context"
	"fmt"
	"sync"
)

// State is the lifecycle of a Cell.
type State int

const (
	StateNotStarted State = iota
	StateInFlight
	StateDone
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateInFlight:
		return "in-flight"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Cell runs a function at most once and hands every caller the same
// result. The zero value is ready to use.
//
// The first caller runs fn synchronously on the calling goroutine. Callers
// that arrive while fn runs block until it finishes. A failed run is final: later calls get
// the same error back and fn is not retried.
type Cell struct {
	done  chan struct{}
	err   error
	mu    sync.Mutex
	state State
}

// Do runs fn if no call has started yet, otherwise waits for the running
// or finished call. ctx is passed to fn on the first call. For waiters it
// only bounds how long they wait; a waiter giving up does not cancel fn.
// A panic in fn is recorded as the cell's error.
func (c *Cell) Do(ctx context.Context, fn func(context.Context) error) (err error) {
	c.mu.Lock()
	switch c.state {
	case StateDone:
		result := c.err
		c.mu.Unlock()
		return result
	case StateInFlight:
		done := c.done
		c.mu.Unlock()
		select {
		case <-done:
			return c.result()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.state = StateInFlight
	c.done = make(chan struct{})
	c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("init panicked: %v", r)
		}
		c.mu.Lock()
		c.err = err
		c.state = StateDone
		close(c.done)
		c.mu.Unlock()
	}()

	err = fn(ctx)
	return err
}

// State returns the current state.
func (c *Cell) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Cell) result() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
