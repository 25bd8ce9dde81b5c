package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"api_url": "https://jobs.example.com",
		"session_store": "file",
		"session_file": "/tmp/jobtrack/session.json",
		"output": "yaml",
		"width": 120
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://jobs.example.com", cfg.APIURL)
	assert.Equal(t, SessionStoreFile, cfg.SessionStore)
	assert.Equal(t, "/tmp/jobtrack/session.json", cfg.SessionFile)
	assert.Equal(t, OutputYAML, cfg.Output)
	assert.Equal(t, 120, cfg.Width)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		errMsg string
	}{
		{name: "empty config is valid", cfg: Config{}},
		{name: "relative api url", cfg: Config{APIURL: "localhost:8080"}, errMsg: "api_url"},
		{name: "unsupported scheme", cfg: Config{APIURL: "ftp://example.com"}, errMsg: "scheme"},
		{name: "unknown session store", cfg: Config{SessionStore: "memory"}, errMsg: "session_store"},
		{name: "unknown output", cfg: Config{Output: "xml"}, errMsg: "output"},
		{name: "negative width", cfg: Config{Width: -1}, errMsg: "width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		APIURL: "https://api.example.com",
		Output: OutputJSON,
	}
	defaults := Config{
		APIURL:         DefaultAPIURL,
		SessionStore:   SessionStoreKeyring,
		KeyringAccount: "default",
		Output:         OutputTable,
		Width:          100,
	}

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "https://api.example.com", merged.APIURL, "config value should win")
	assert.Equal(t, OutputJSON, merged.Output)
	assert.Equal(t, SessionStoreKeyring, merged.SessionStore, "default should fill empty field")
	assert.Equal(t, "default", merged.KeyringAccount)
	assert.Equal(t, 100, merged.Width)
	assert.Equal(t, "", cfg.SessionStore, "receiver must not be modified")
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := &Config{}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, DefaultWidth, merged.Width)
	assert.Empty(t, merged.APIURL)
}

func TestDefaultConfigPath_UsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "jobtrack", "config.json"), path)

	defaults := Defaults()
	assert.Equal(t, filepath.Join(dir, "jobtrack", "session.json"), defaults.SessionFile)
	assert.Equal(t, SessionStoreKeyring, defaults.SessionStore)
	assert.NoError(t, defaults.Validate())
}
