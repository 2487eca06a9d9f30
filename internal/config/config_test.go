package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Source = SourceConfig{Path: "sheets:abc", Format: "sheets", CredentialsFile: "sa.json"}
	cfg.Municipalities = []string{"cotia", "itapevi"}
	cfg.Cache.TTL = 5 * time.Minute

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data/repasses.xlsx", cfg.Source.Path)
	assert.Equal(t, []string{"cotia"}, cfg.Municipalities)
	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, 128, cfg.Cache.MaxEntries)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())

	format, err := cfg.SourceFormat()
	require.NoError(t, err)
	assert.Equal(t, "xlsx", format)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("source:\n  path: dados.csv\ncache:\n  ttl: 1h\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dados.csv", cfg.Source.Path)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 128, cfg.Cache.MaxEntries)
	assert.Equal(t, 10, cfg.TopN)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "path: data/repasses.xlsx")
	assert.Contains(t, contents, "- cotia")
	assert.Contains(t, contents, "top_n: 10")
	assert.Contains(t, contents, "max_entries: 128")
	assert.Contains(t, contents, "ttl: 30m0s")
	assert.NotContains(t, contents, "credentials_file")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvSource:      "/tmp/repasses.csv",
		EnvFormat:      "CSV",
		EnvLogLevel:    "DEBUG",
		EnvCredentials: "",
	}
	cfg := Default()
	cfg.Source.CredentialsFile = "keep.json"
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, "/tmp/repasses.csv", cfg.Source.Path)
	assert.Equal(t, "csv", cfg.Source.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "keep.json", cfg.Source.CredentialsFile)
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvSource, "")
	t.Setenv(EnvFormat, "")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvCredentials, "")

	cfg, err := Resolve(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data/repasses.xlsx", cfg.Source.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestResolveRelativeToConfigDir(t *testing.T) {
	t.Setenv(EnvSource, "")
	t.Setenv(EnvCredentials, "")
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	cfg := Default()
	cfg.Source.Path = "dados/repasses.csv"
	cfg.Source.CredentialsFile = "/etc/sa.json"
	require.NoError(t, Save(path, cfg))

	got, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dados", "repasses.csv"), got.Source.Path)
	assert.Equal(t, "/etc/sa.json", got.Source.CredentialsFile)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.Source.Path = " "
	cfg.Source.Format = "parquet"
	cfg.Municipalities = []string{" "}
	cfg.TopN = 0
	cfg.Cache.MaxEntries = -1
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "source path")
	assert.Contains(t, msg, "parquet")
	assert.Contains(t, msg, "municipality")
	assert.Contains(t, msg, "top_n")
	assert.Contains(t, msg, "max_entries")
	assert.Contains(t, msg, "loud")
}
