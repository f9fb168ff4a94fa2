package config_test

import (
	"testing"

	"github.com/evalengine/core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsNegativeConcurrency(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Run.Concurrency = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadDuration(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Run.SampleTimeout = "not-a-duration"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownArtifactsFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Artifacts.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNegativeProviderRateLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers = map[string]config.ProviderConfig{
		"openai": {RateLimit: -5},
	}
	assert.Error(t, cfg.Validate())
}
