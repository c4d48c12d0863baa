package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codefionn/aifm/internal/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "AIFM_HOST", "AIFM_LOG_LEVEL", "AIFM_LOG_PATH", "AIFM_WORKSPACE",
		"AIFM_PROVIDER", "AIFM_MODEL", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	defer cfg.Close()

	assert.Equal(t, consts.DefaultHost, cfg.Host)
	assert.Equal(t, consts.DefaultPort, cfg.Port)
	assert.Equal(t, ProviderGoogle, cfg.Provider)
	assert.Equal(t, consts.DefaultMaxOutputTokens, cfg.MaxOutputTokens)
	assert.Equal(t, consts.DefaultWorkspaceName, filepath.Base(cfg.WorkspaceDir))
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	defer cfg.Close()

	assert.Equal(t, consts.DefaultPort, cfg.Port)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"port": 8080, "provider": "openai", "model": "gpt-4o-mini", "allowed_roots": ["/srv/data"]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	defer cfg.Close()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, []string{"/srv/data"}, cfg.AllowedRoots)
	// untouched fields keep their defaults
	assert.Equal(t, consts.DefaultHost, cfg.Host)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "host: 0.0.0.0\nport: 4000\nlog_level: debug\nworkspace_dir: /tmp/ws\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	defer cfg.Close()

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/ws", cfg.WorkspaceDir)
	assert.Equal(t, "0.0.0.0:4000", cfg.Addr())
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	cfg := DefaultConfig()
	defer cfg.Close()
	cfg.Port = 5123
	cfg.SetAPIKey(ProviderGoogle, "must-not-be-written")

	require.NoError(t, cfg.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "must-not-be-written")

	loaded, err := Load(path)
	require.NoError(t, err)
	defer loaded.Close()
	assert.Equal(t, 5123, loaded.Port)
	assert.Empty(t, loaded.APIKey(ProviderGoogle))
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("AIFM_PROVIDER", "anthropic")
	t.Setenv("AIFM_WORKSPACE", "/tmp/elsewhere")
	t.Setenv("GEMINI_API_KEY", "g-123")
	t.Setenv("ANTHROPIC_API_KEY", " a-456 ")

	cfg := DefaultConfig()
	defer cfg.Close()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "/tmp/elsewhere", cfg.WorkspaceDir)
	assert.Equal(t, "g-123", cfg.APIKey(ProviderGoogle))
	assert.Equal(t, "a-456", cfg.APIKey(ProviderAnthropic))
	assert.Empty(t, cfg.APIKey(ProviderOpenAI))
}

func TestHasAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	defer cfg.Close()

	assert.False(t, cfg.HasAPIKey(ProviderOpenAI))
	cfg.SetAPIKey(ProviderOpenAI, "o-1")
	assert.True(t, cfg.HasAPIKey(ProviderOpenAI))
	assert.False(t, cfg.HasAPIKey(ProviderGoogle))

	cfg.SetAPIKey(ProviderOpenAI, "")
	assert.False(t, cfg.HasAPIKey(ProviderOpenAI))
	assert.Empty(t, cfg.APIKey(ProviderOpenAI))
}

func TestApplyEnvInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "abc")

	cfg := DefaultConfig()
	defer cfg.Close()
	assert.Error(t, cfg.ApplyEnv())
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("AIFM_MODEL", "from-process")
	os.Unsetenv("AIFM_MODEL")
	t.Setenv("AIFM_HOST", "process-host")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AIFM_HOST=dotenv-host\nAIFM_MODEL=dotenv-model\n"), 0644))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("AIFM_MODEL") })

	assert.Equal(t, "process-host", os.Getenv("AIFM_HOST"))
	assert.Equal(t, "dotenv-model", os.Getenv("AIFM_MODEL"))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown provider", func(c *Config) { c.Provider = "mistral" }, true},
		{"port too large", func(c *Config) { c.Port = 70000 }, true},
		{"negative temperature", func(c *Config) { c.Temperature = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			defer cfg.Close()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestGetConfigPathOverride(t *testing.T) {
	t.Setenv("AIFM_CONFIG", "/etc/aifm.yaml")
	assert.Equal(t, "/etc/aifm.yaml", GetConfigPath())
}

func TestAPIKeyEnv(t *testing.T) {
	assert.Equal(t, "GEMINI_API_KEY", APIKeyEnv(ProviderGoogle))
	assert.Equal(t, "OPENAI_API_KEY", APIKeyEnv(ProviderOpenAI))
	assert.Equal(t, "ANTHROPIC_API_KEY", APIKeyEnv(ProviderAnthropic))
}

func TestLockPathIncludesPort(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	cfg := DefaultConfig()
	cfg.Port = 4321

	assert.Equal(t, "aifm-4321.lock", filepath.Base(cfg.LockPath()))
}
