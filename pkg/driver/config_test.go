package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "optimize: true\nmax_parallel: 4\nregistry_capacity: 128\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Optimize)
	assert.False(t, cfg.Serial)
	assert.Equal(t, 4, cfg.MaxParallel)
	assert.Equal(t, 128, cfg.RegistryCapacity)
	assert.True(t, filepath.IsAbs(cfg.Path))
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "optimize: true\nserial: false\nmax_parallel: 4\n")
	t.Setenv(EnvOptimize, "false")
	t.Setenv(EnvSerial, "1")
	t.Setenv(EnvMaxParallel, "9")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Optimize)
	assert.True(t, cfg.Serial)
	assert.Equal(t, 9, cfg.MaxParallel)
	assert.Equal(t, 0, cfg.RegistryCapacity)
}

func TestEmptyConfigFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Optimize)
	assert.NotEmpty(t, cfg.Path)
}

func TestConfigRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "optimise: true\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "optimise")
}

func TestConfigValidation(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "max_parallel: -1\nregistry_capacity: -5\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Issues, 2)
	assert.Contains(t, err.Error(), "max_parallel must not be negative, got -1")
}

func TestFindConfig(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, FindConfig(dir))
	path := writeConfig(t, dir, "serial: true\n")
	assert.Equal(t, path, FindConfig(dir))
}
