package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("DROPWISE_HOME", home)
	t.Setenv("DROPWISE_API_URL", "")
	t.Setenv("DROPWISE_THEME", "")
	t.Setenv("DROPWISE_TIMEOUT", "")
	return home
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	home := clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "classic", cfg.Theme)
	assert.Equal(t, "new", cfg.UI.DefaultTab)
	assert.True(t, cfg.UI.UseAltScreen())
	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, filepath.Join(home, "dropwise.log"), cfg.Log.Path)
}

func TestLoadExplicitMissingFails(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	home := clearEnv(t)
	p := filepath.Join(home, FileName)
	require.NoError(t, os.WriteFile(p, []byte(`
api_url: https://drops.example.com/api/v1/
timeout: 5s
theme: neon
ui:
  default_tab: archived
  alt_screen: false
log:
  verbose: true
`), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://drops.example.com/api/v1", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "neon", cfg.Theme)
	assert.Equal(t, "archived", cfg.UI.DefaultTab)
	assert.False(t, cfg.UI.UseAltScreen())
	assert.True(t, cfg.Log.Verbose)

	t.Setenv("DROPWISE_API_URL", "http://override:9000/api")
	t.Setenv("DROPWISE_TIMEOUT", "2s")
	cfg, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, "http://override:9000/api", cfg.APIURL)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestLoadBadYAML(t *testing.T) {
	home := clearEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, FileName), []byte("api_url: [unclosed"), 0o600))
	_, err := Load("")
	assert.Error(t, err)
}

func TestInvalidTimeoutEnv(t *testing.T) {
	clearEnv(t)
	for _, v := range []string{"soon", "-1s", "0"} {
		t.Setenv("DROPWISE_TIMEOUT", v)
		_, err := Load("")
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "DROPWISE_TIMEOUT")
	}
}
