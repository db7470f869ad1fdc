package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfigPath(t *testing.T, path string) {
	t.Helper()
	oldGetConfigPath := getConfigPathFunc
	getConfigPathFunc = func() (string, error) {
		return path, nil
	}
	t.Cleanup(func() { getConfigPathFunc = oldGetConfigPath })
}

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.NotEmpty(t, dir)
	assert.True(t, filepath.IsAbs(dir))
	assert.True(t, strings.HasSuffix(dir, "sowlens"))
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.True(t, filepath.IsAbs(path))
	assert.True(t, strings.HasSuffix(path, "config.json"))
}

func TestLoadGlobalConfig_FileNotExists(t *testing.T) {
	withConfigPath(t, filepath.Join(t.TempDir(), "config.json"))

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestLoadGlobalConfig_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	testConfig := GlobalConfig{
		APIKey: "sk_test_key",
		APIURL: "http://localhost:8080",
	}
	data, _ := json.MarshalIndent(testConfig, "", "  ")
	require.NoError(t, os.WriteFile(configPath, data, 0600))

	withConfigPath(t, configPath)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, testConfig.APIKey, config.APIKey)
	assert.Equal(t, testConfig.APIURL, config.APIURL)
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{invalid json}"), 0600))

	withConfigPath(t, configPath)

	_, err := LoadGlobalConfig()
	assert.Error(t, err)
}

func TestSaveGlobalConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	oldGetConfigDir := getConfigDirFunc
	getConfigDirFunc = func() (string, error) {
		return tmpDir, nil
	}
	t.Cleanup(func() { getConfigDirFunc = oldGetConfigDir })
	withConfigPath(t, configPath)

	saved := &GlobalConfig{APIKey: "sk_test_key", APIURL: "http://api.example"}
	require.NoError(t, SaveGlobalConfig(saved))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved.APIKey, loaded.APIKey)
	assert.Equal(t, saved.APIURL, loaded.APIURL)
}

func TestSaveGlobalConfig_NilConfig(t *testing.T) {
	assert.Error(t, SaveGlobalConfig(nil))
}

func TestDeleteGlobalConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{}"), 0600))

	withConfigPath(t, configPath)

	require.NoError(t, DeleteGlobalConfig())
	_, err := os.Stat(configPath)
	assert.True(t, os.IsNotExist(err))

	// Deleting a missing config is not an error
	require.NoError(t, DeleteGlobalConfig())
}

func TestGetCredentialSource_FlagsWin(t *testing.T) {
	source, key, url := GetCredentialSource("flag-key", "http://flag.example")
	assert.Equal(t, SourceFlag, source)
	assert.Equal(t, "flag-key", key)
	assert.Equal(t, "http://flag.example", url)
}

func TestGetCredentialSource_Env(t *testing.T) {
	t.Setenv(envAPIKey, "env-key")
	t.Setenv(envAPIURL, "http://env.example")

	source, key, url := GetCredentialSource("", "")
	assert.Equal(t, SourceEnvFile, source)
	assert.Equal(t, "env-key", key)
	assert.Equal(t, "http://env.example", url)
}

func TestGetCredentialSource_None(t *testing.T) {
	t.Setenv(envAPIKey, "")
	t.Setenv(envAPIURL, "")
	withConfigPath(t, filepath.Join(t.TempDir(), "config.json"))

	source, key, url := GetCredentialSource("", "")
	assert.Equal(t, SourceNone, source)
	assert.Empty(t, key)
	assert.Empty(t, url)
}
