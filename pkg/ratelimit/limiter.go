package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter paces successive operations
type Limiter interface {
	// Wait blocks until the next operation may start or ctx is done
	Wait(ctx context.Context) error
	// Reset clears any accumulated state
	Reset()
}

// FixedDelay sleeps for the same delay on every Wait
type FixedDelay struct {
	delay time.Duration

	mu     sync.Mutex
	waits  int
	waited time.Duration
}

// NewFixedDelay creates a pacer that waits delay between operations
func NewFixedDelay(delay time.Duration) *FixedDelay {
	if delay < 0 {
		delay = 0
	}
	return &FixedDelay{delay: delay}
}

// Delay returns the configured delay
func (fd *FixedDelay) Delay() time.Duration {
	return fd.delay
}

// Wait sleeps for the configured delay. It returns ctx.Err() if ctx is
// done first.
func (fd *FixedDelay) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	if fd.delay > 0 {
		timer := time.NewTimer(fd.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			fd.record(time.Since(start))
			return ctx.Err()
		}
	}

	fd.record(time.Since(start))
	return nil
}

func (fd *FixedDelay) record(d time.Duration) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.waits++
	fd.waited += d
}

// Stats returns the number of completed waits and the total time spent waiting
func (fd *FixedDelay) Stats() (waits int, waited time.Duration) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return fd.waits, fd.waited
}

// Reset clears the wait counters
func (fd *FixedDelay) Reset() {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.waits = 0
	fd.waited = 0
}
