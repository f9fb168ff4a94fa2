// Package ratelimit throttles a single provider client's outbound calls
// with a token bucket. Each rate-limited provider instance owns its own
// Limiter; there is deliberately no process-global bucket, so one noisy
// experiment cannot starve another tenant's provider.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket. Safe for concurrent use.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	burst      float64 // bucket capacity
	perSecond  float64 // refill rate
	lastRefill time.Time
}

// New creates a Limiter allowing bursts of up to burst calls and a steady
// state of perSecond calls per second. The bucket starts full.
func New(burst, perSecond float64) *Limiter {
	return &Limiter{
		tokens:     burst,
		burst:      burst,
		perSecond:  perSecond,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx ends, in which case it
// returns ctx.Err().
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.refill()

		if l.tokens >= 1.0 {
			l.tokens -= 1.0
			l.mu.Unlock()
			return nil
		}

		needed := 1.0 - l.tokens
		wait := time.Duration(needed / l.perSecond * float64(time.Second))
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			// Recheck: another caller may have drained the refill.
		}
	}
}

// TryAcquire takes a token without blocking, reporting whether one was
// available.
func (l *Limiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true
	}
	return false
}

// refill credits tokens for the time elapsed since the last refill.
// Callers must hold l.mu.
func (l *Limiter) refill() {
	now := time.Now()
	l.tokens += now.Sub(l.lastRefill).Seconds() * l.perSecond
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.lastRefill = now
}
