package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evalengine/core/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigKoanfFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
run:
  concurrency: 8
  timeout: 45m
judge:
  provider: anthropic
  model: claude-3-5-haiku
  max_tokens: 256
artifacts:
  dir: /tmp/artifacts
  format: jsonl
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := config.LoadConfigKoanf(path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Run.Concurrency)
	require.Equal(t, "anthropic", cfg.Judge.Provider)
	require.Equal(t, "jsonl", cfg.Artifacts.Format)
}

func TestLoadConfigKoanfEnvOverride(t *testing.T) {
	t.Setenv("EVALENGINE_RUN__CONCURRENCY", "12")
	cfg, err := config.LoadConfigKoanf("")
	require.NoError(t, err)
	require.Equal(t, 12, cfg.Run.Concurrency)
}

func TestLoadConfigKoanfRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run:\n  concurrency: -1\n"), 0o644))

	_, err := config.LoadConfigKoanf(path)
	require.Error(t, err)
}
