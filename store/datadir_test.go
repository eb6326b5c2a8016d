package store

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataDirEmptyName(t *testing.T) {
	_, err := DataDir("  ")
	assert.Error(t, err)
}

func TestDataDirXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_DATA_HOME only applies on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_DATA_HOME", base)

	dir, err := DataDir("com.example.finance")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "com.example.finance"), dir)
}

func TestDataDirHomeFallback(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("home fallback layout is linux specific")
	}
	home := t.TempDir()
	t.Setenv("XDG_DATA_HOME", "relative/ignored")
	t.Setenv("HOME", home)

	dir, err := DataDir("finance")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "share", "finance"), dir)
}
