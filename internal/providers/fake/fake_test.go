package fake_test

import (
	"context"
	"testing"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedRecordsCalls(t *testing.T) {
	p := fake.NewFixed("hello")
	out, err := p.Generate(context.Background(), providers.GenerateRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 1, p.CallCount())
}

func TestSequenceCycles(t *testing.T) {
	p := fake.NewSequence("a", "b")
	first, _ := p.Generate(context.Background(), providers.GenerateRequest{})
	second, _ := p.Generate(context.Background(), providers.GenerateRequest{})
	third, _ := p.Generate(context.Background(), providers.GenerateRequest{})
	assert.Equal(t, "a", first)
	assert.Equal(t, "b", second)
	assert.Equal(t, "a", third)
}

func TestEchoReturnsPrompt(t *testing.T) {
	out, err := fake.Echo{}.Generate(context.Background(), providers.GenerateRequest{Prompt: "echo me"})
	require.NoError(t, err)
	assert.Equal(t, "echo me", out)
}

func TestRateLimitedThenOKFailsUntilExhausted(t *testing.T) {
	p := fake.NewRateLimitedThenOK(2, "done")
	_, err := p.Generate(context.Background(), providers.GenerateRequest{})
	require.Error(t, err)
	_, err = p.Generate(context.Background(), providers.GenerateRequest{})
	require.Error(t, err)
	out, err := p.Generate(context.Background(), providers.GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, 3, p.Calls)
}
