package registry_test

import (
	"testing"

	"github.com/evalengine/core/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHelpers(t *testing.T) {
	cfg := registry.Config{
		"name":   "gpt-4o",
		"count":  3.0,
		"ratio":  0.5,
		"flag":   true,
		"things": []any{"a", "b"},
	}

	assert.Equal(t, "gpt-4o", registry.GetString(cfg, "name", "x"))
	assert.Equal(t, "x", registry.GetString(cfg, "missing", "x"))
	assert.Equal(t, 3, registry.GetInt(cfg, "count", 0))
	assert.Equal(t, 0.5, registry.GetFloat64(cfg, "ratio", 0))
	assert.True(t, registry.GetBool(cfg, "flag", false))
	assert.Equal(t, []string{"a", "b"}, registry.GetStringSlice(cfg, "things", nil))
}

func TestRequireStringMissing(t *testing.T) {
	_, err := registry.RequireString(registry.Config{}, "model")
	require.Error(t, err)
}

func TestGetAPIKeyWithEnvFallsBackToEnv(t *testing.T) {
	t.Setenv("TEST_PROVIDER_API_KEY", "from-env")
	key, err := registry.GetAPIKeyWithEnv(registry.Config{}, "TEST_PROVIDER_API_KEY", "test")
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestGetAPIKeyWithEnvMissingErrors(t *testing.T) {
	_, err := registry.GetAPIKeyWithEnv(registry.Config{}, "TEST_PROVIDER_API_KEY_MISSING", "test")
	require.Error(t, err)
}
