package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileGivesDefault(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	want := Config{
		Storage: StorageSQLite,
		Format:  "yaml",
		Remote: RemoteConfig{
			URL:     "http://localhost:8080",
			Account: "acct-1",
			Token:   "secret-token",
			Timeout: 5 * time.Second,
		},
	}
	require.NoError(t, SaveConfig(dir, want))

	info, err := os.Stat(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("format: yaml\n"), 0600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, StorageFS, cfg.Storage)
	assert.Equal(t, "yaml", cfg.Format)
}

func TestConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown storage", Config{Storage: "s3", Format: "json"}},
		{"unknown format", Config{Storage: StorageFS, Format: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, SaveConfig(t.TempDir(), tt.cfg))
		})
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("storage: [\n"), 0600))
	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
