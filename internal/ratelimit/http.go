package ratelimit

import "net/http"

// Doer is the request-issuing subset of *http.Client. Provider SDK configs
// that accept a custom HTTP client (go-openai's HTTPDoer, for one) are
// satisfied by both *http.Client and *Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client throttles an inner Doer with a Limiter. It is how rate-limited
// providers (OpenRouter) slot the token bucket under their SDK client.
type Client struct {
	inner   Doer
	limiter *Limiter
}

// Wrap throttles inner with limiter. A nil limiter passes requests through
// untouched.
func Wrap(inner Doer, limiter *Limiter) *Client {
	return &Client{inner: inner, limiter: limiter}
}

// Do blocks until a token is available (honoring the request context),
// then delegates to the inner Doer.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return c.inner.Do(req)
}
