package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/herbid/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestEnsureDirs_CreatesDirectories verifies all required
// directories are created.
func TestEnsureDirs_CreatesDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	dirs := []string{
		filepath.Join(tmpDir, ".config", "herbid"),
		filepath.Join(tmpDir, ".cache", "herbid"),
		filepath.Join(tmpDir, ".local", "share", "herbid", "logs"),
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), dir)
	}
}

// TestEnsureDirs_Idempotent verifies multiple calls work.
func TestEnsureDirs_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	for i := 0; i < 3; i++ {
		err := EnsureDirs(tmpDir)
		require.NoError(t, err)
	}
}

func TestEnsureConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureDirs(tmpDir))

	err := EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	path := config.ConfigFilePath(tmpDir)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ConfigYAML, string(data))

	// An existing file is never overwritten.
	require.NoError(t, os.WriteFile(path, []byte("dataset:\n"), 0644))
	require.NoError(t, EnsureConfigFile(tmpDir))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dataset:\n", string(data))
}

// TestConfigTemplate makes sure the embedded template stays in sync
// with the Config struct's yaml tags and defaults.
func TestConfigTemplate(t *testing.T) {
	var cfg config.Config
	err := yaml.Unmarshal([]byte(ConfigYAML), &cfg)
	require.NoError(t, err)

	def := config.New()
	assert.Equal(t, def.Model.Backbone, cfg.Model.Backbone)
	assert.Equal(t, def.Training.BatchSize, cfg.Training.BatchSize)
	assert.Equal(t, def.Training.Optimizer, cfg.Training.Optimizer)
	assert.Equal(t, def.Training.ImageSize, cfg.Training.ImageSize)
	assert.Equal(t, def.Training.MaxEpochs, cfg.Training.MaxEpochs)
	assert.Equal(t, def.Training.ValSplit, cfg.Training.ValSplit)
	assert.Equal(t, def.Predict.ImageSize, cfg.Predict.ImageSize)
	assert.Equal(t, def.Log.Format, cfg.Log.Format)
}
