package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempConfig points the global config at a fresh temp file for one test.
func useTempConfig(t *testing.T) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "kozi", "config.json")

	oldGetConfigPath := getConfigPathFunc
	getConfigPathFunc = func() (string, error) {
		return configPath, nil
	}
	t.Cleanup(func() { getConfigPathFunc = oldGetConfigPath })

	t.Setenv(envUserID, "")
	t.Setenv(envAPIURL, "")
	return configPath
}

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.True(t, strings.HasSuffix(dir, "kozi"))
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "config.json"))
}

func TestLoadGlobalConfig_FileNotExists(t *testing.T) {
	useTempConfig(t)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	configPath := useTempConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
	require.NoError(t, os.WriteFile(configPath, []byte("{invalid json}"), 0600))

	config, err := LoadGlobalConfig()
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveGlobalConfig_CreatesDirectoryWithPermissions(t *testing.T) {
	configPath := useTempConfig(t)

	err := SaveGlobalConfig(&GlobalConfig{UserID: "42", APIURL: "http://localhost:5000"})
	require.NoError(t, err)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSaveGlobalConfig_NilConfig(t *testing.T) {
	err := SaveGlobalConfig(nil)
	assert.EqualError(t, err, "config cannot be nil")
}

func TestRoundTrip_SaveAndLoad(t *testing.T) {
	useTempConfig(t)

	original := &GlobalConfig{UserID: "42", APIURL: "https://admin.kozi.rw", SessionID: "admin_01jabc"}
	require.NoError(t, SaveGlobalConfig(original))

	loaded, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestDeleteGlobalConfig(t *testing.T) {
	configPath := useTempConfig(t)
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{UserID: "42"}))

	require.NoError(t, DeleteGlobalConfig())
	_, err := os.Stat(configPath)
	assert.True(t, os.IsNotExist(err))

	// deleting again is not an error
	assert.NoError(t, DeleteGlobalConfig())
}

func TestUpdateSession_KeepsIdentity(t *testing.T) {
	useTempConfig(t)
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{UserID: "42", APIURL: "http://localhost:5000"}))

	require.NoError(t, updateSession("admin_01jxyz"))

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, "42", config.UserID)
	assert.Equal(t, "admin_01jxyz", config.SessionID)
}

func TestGetCredentialSource(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		useTempConfig(t)
		t.Setenv(envUserID, "env-user")

		source, userID := GetCredentialSource("flag-user")
		assert.Equal(t, SourceFlag, source)
		assert.Equal(t, "flag-user", userID)
	})

	t.Run("env before global config", func(t *testing.T) {
		useTempConfig(t)
		require.NoError(t, SaveGlobalConfig(&GlobalConfig{UserID: "config-user"}))
		t.Setenv(envUserID, "env-user")

		source, userID := GetCredentialSource("")
		assert.Equal(t, SourceEnv, source)
		assert.Equal(t, "env-user", userID)
	})

	t.Run("global config", func(t *testing.T) {
		useTempConfig(t)
		require.NoError(t, SaveGlobalConfig(&GlobalConfig{UserID: "config-user"}))

		source, userID := GetCredentialSource("")
		assert.Equal(t, SourceGlobalConfig, source)
		assert.Equal(t, "config-user", userID)
	})

	t.Run("none", func(t *testing.T) {
		useTempConfig(t)

		source, userID := GetCredentialSource("")
		assert.Equal(t, SourceNone, source)
		assert.Empty(t, userID)
	})
}
