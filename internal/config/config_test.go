package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestDefaultValues(t *testing.T) {
	d := DefaultValues()
	assert.Equal(t, 1000, d.ChunkSize)
	assert.InDelta(t, 50.0, d.VitterN2N, 1e-9)
	assert.InDelta(t, 0.8, d.VitterAlpha, 1e-9)
	assert.Equal(t, 4, d.Workers)
}

func TestLoadWithNoConfigFileUsesDefaults(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())

	d, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultValues(), d)
}

func TestSetAndGet(t *testing.T) {
	resetViper(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	d, err := Load()
	require.NoError(t, err)
	_ = d

	cfgFile, err := Set("chunk_size", "2000")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, FileName), cfgFile)

	val, err := Get("chunk_size")
	require.NoError(t, err)
	assert.Equal(t, "2000", val)
}

func TestSetBooleanLikeValue(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())

	_, err := Set("verbose", "true")
	require.NoError(t, err)

	val, err := Get("verbose")
	require.NoError(t, err)
	assert.Equal(t, true, val)
}

func TestGetUnsetKeyErrors(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())

	_, err := Get("does_not_exist")
	assert.Error(t, err)
}

func TestShowEmptyWhenNoSettings(t *testing.T) {
	resetViper(t)
	out, err := Show()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestShowRendersYAML(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())

	_, err := Set("chunk_size", "500")
	require.NoError(t, err)

	out, err := Show()
	require.NoError(t, err)
	assert.Contains(t, out, "chunk_size")
}
