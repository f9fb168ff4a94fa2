// Package fake provides in-memory Provider test doubles so orchestrator,
// dataset, and scorer tests can exercise C1's call sites without making
// network requests.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/providercompat"
)

// Fixed returns a fixed response on every call, recording the requests it
// received for assertions.
type Fixed struct {
	mu        sync.Mutex
	Response  string
	Err       error
	Calls     []providers.GenerateRequest
}

// NewFixed creates a Fixed provider returning response for every call.
func NewFixed(response string) *Fixed {
	return &Fixed{Response: response}
}

// Generate implements providers.Provider.
func (f *Fixed) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, req)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// CallCount returns how many times Generate was called so far.
func (f *Fixed) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// Sequence returns a different response for each successive call, cycling
// once exhausted. Useful for conversation replay tests where each turn
// needs a distinct assistant reply.
type Sequence struct {
	mu        sync.Mutex
	responses []string
	next      int
}

// NewSequence creates a Sequence provider cycling through responses.
func NewSequence(responses ...string) *Sequence {
	return &Sequence{responses: responses}
}

// Generate implements providers.Provider.
func (s *Sequence) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.responses) == 0 {
		return "", nil
	}
	resp := s.responses[s.next%len(s.responses)]
	s.next++
	return resp, nil
}

// Echo returns the incoming prompt verbatim, so callers can
// verify exactly what prompt text a component constructed.
type Echo struct{}

// Generate implements providers.Provider.
func (Echo) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	return req.Prompt, nil
}

// Blank always returns an empty string, modeling a provider that produced
// no usable output (the retry-on-empty-output path).
type Blank struct{}

// Generate implements providers.Provider.
func (Blank) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	return "", nil
}

// RateLimitedThenOK fails with a rate-limit error for the first N calls,
// then succeeds, for exercising GenerateWithRetry's backoff path.
type RateLimitedThenOK struct {
	mu           sync.Mutex
	FailuresLeft int
	Response     string
	Calls        int
}

// NewRateLimitedThenOK creates a provider that rate-limits `failures` times
// before returning response.
func NewRateLimitedThenOK(failures int, response string) *RateLimitedThenOK {
	return &RateLimitedThenOK{FailuresLeft: failures, Response: response}
}

// Generate implements providers.Provider.
func (r *RateLimitedThenOK) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.FailuresLeft > 0 {
		r.FailuresLeft--
		return "", &providercompat.RateLimitError{Err: fmt.Errorf("fake: rate limited")}
	}
	return r.Response, nil
}

// Failing always returns err.
type Failing struct {
	Err error
}

// NewFailing creates a provider that always fails with err.
func NewFailing(err error) *Failing {
	return &Failing{Err: err}
}

// Generate implements providers.Provider.
func (f *Failing) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	return "", f.Err
}

var (
	_ providers.Provider = (*Fixed)(nil)
	_ providers.Provider = (*Sequence)(nil)
	_ providers.Provider = Echo{}
	_ providers.Provider = Blank{}
	_ providers.Provider = (*RateLimitedThenOK)(nil)
	_ providers.Provider = (*Failing)(nil)
)
