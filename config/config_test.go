package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10, cfg.MaxParallelism)
	assert.True(t, cfg.UseFieldResolvers)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typegraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_parallelism: 4
use_field_resolvers: false
log_level: debug
entity_timeout: 250ms
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		MaxParallelism:    4,
		UseFieldResolvers: false,
		LogLevel:          "debug",
		EntityTimeout:     250 * time.Millisecond,
	}, cfg)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TYPEGRAPH_MAX_PARALLELISM", "3")
	t.Setenv("TYPEGRAPH_ENTITY_TIMEOUT", "2s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxParallelism)
	assert.Equal(t, 2*time.Second, cfg.EntityTimeout)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_parallelism: 0\n"), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "max_parallelism")

	t.Setenv("TYPEGRAPH_LOG_LEVEL", "chatty")
	_, err = Load("")
	assert.ErrorContains(t, err, "log_level")
}
