package customapi_test

import (
	"testing"

	"github.com/evalengine/core/internal/providers/customapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := customapi.New(customapi.Config{APIKey: "k"})
	require.Error(t, err)
}

func TestNewSucceedsWithBaseURL(t *testing.T) {
	p, err := customapi.New(customapi.Config{APIKey: "k", BaseURL: "https://llm.internal.example.com/v1"})
	require.NoError(t, err)
	assert.NotNil(t, p)
}
