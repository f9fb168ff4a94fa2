package concurrency

import "time"

// Options configures a bounded fan-out run.
type Options struct {
	// Concurrency is the maximum number of items in flight at once.
	// Zero or negative means unbounded (errgroup.SetLimit is skipped).
	Concurrency int

	// Timeout bounds the whole run. Zero means no overall timeout.
	Timeout time.Duration

	// ItemTimeout bounds a single item's execution. Zero means no per-item
	// timeout; the item relies on the caller's context/SDK timeouts.
	ItemTimeout time.Duration
}

// DefaultOptions returns sane defaults for orchestrator/arena fan-out.
func DefaultOptions() Options {
	return Options{
		Concurrency: 5,
		Timeout:     30 * time.Minute,
	}
}
