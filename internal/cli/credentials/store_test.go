package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempConfigHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	require.NoError(t, os.Setenv("XDG_CONFIG_HOME", tmpDir))
	t.Cleanup(func() { _ = os.Setenv("XDG_CONFIG_HOME", oldXDG) })
	return tmpDir
}

func TestStoreOperations(t *testing.T) {
	tmpDir := withTempConfigHome(t)

	store, err := NewStore()
	require.NoError(t, err)
	assert.NotNil(t, store)

	expectedPath := filepath.Join(tmpDir, DefaultConfigDir, ConfigFileName)
	assert.Equal(t, expectedPath, store.configPath)

	_, err = store.GetCurrentProfile()
	assert.ErrorIs(t, err, ErrNoCurrentProfile)
	assert.Empty(t, store.ListProfiles())

	p1 := &Profile{Address: "127.0.0.1:3390", Username: "admin"}
	require.NoError(t, store.SetProfile("default", p1))
	require.NoError(t, store.UseProfile("default"))

	current, err := store.GetCurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3390", current.Address)
	assert.Equal(t, "admin", current.Username)

	p2 := &Profile{Address: "prod.example.com:3390", Username: "prod-admin"}
	require.NoError(t, store.SetProfile("production", p2))

	profiles := store.ListProfiles()
	assert.Len(t, profiles, 2)
	assert.Contains(t, profiles, "default")
	assert.Contains(t, profiles, "production")

	require.NoError(t, store.UseProfile("production"))
	assert.Equal(t, "production", store.GetCurrentProfileName())

	require.NoError(t, store.DeleteProfile("production"))
	assert.Empty(t, store.GetCurrentProfileName())

	_, err = store.GetProfile("nonexistent")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	err = store.UseProfile("nonexistent")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestStorePersistsAcrossReload(t *testing.T) {
	withTempConfigHome(t)

	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.SetProfile("default", &Profile{Address: "127.0.0.1:3390", Username: "admin"}))
	require.NoError(t, store.UseProfile("default"))

	reloaded, err := NewStore()
	require.NoError(t, err)
	current, err := reloaded.GetCurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3390", current.Address)
	assert.Equal(t, "admin", current.Username)
}

func TestStorePreferences(t *testing.T) {
	withTempConfigHome(t)

	store, err := NewStore()
	require.NoError(t, err)

	prefs := store.GetPreferences()
	assert.Empty(t, prefs.DefaultOutput)
	assert.Empty(t, prefs.Color)

	newPrefs := Preferences{DefaultOutput: "json", Color: "auto"}
	require.NoError(t, store.SetPreferences(newPrefs))

	prefs = store.GetPreferences()
	assert.Equal(t, "json", prefs.DefaultOutput)
	assert.Equal(t, "auto", prefs.Color)
}
