package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repasses-dev/repasses/internal/config"
)

func TestInit_WritesConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	out, err := runRepasses(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, config.FileName)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	info, err := os.Stat(filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInit_Flags(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	_, err := runRepasses(t, "init", dir, "--data", "sheets:abc123", "--default-municipality", "cotia", "--default-municipality", "itapevi")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "sheets:abc123", cfg.Source.Path)
	assert.Equal(t, []string{"cotia", "itapevi"}, cfg.Municipalities)
}

func TestInit_RefusesOverwrite(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	_, err := runRepasses(t, "init", dir)
	require.NoError(t, err)

	_, err = runRepasses(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runRepasses(t, "init", dir, "--force")
	assert.NoError(t, err)
}
