package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/codefionn/aifm/internal/consts"
	"github.com/codefionn/aifm/internal/securemem"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in the provider field
const (
	ProviderGoogle    = "google"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// apiKeyEnv maps providers to the environment variable holding their key
var apiKeyEnv = map[string]string{
	ProviderGoogle:    "GEMINI_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Config represents application configuration
type Config struct {
	Host            string   `json:"host" yaml:"host"`
	Port            int      `json:"port" yaml:"port"`
	WorkspaceDir    string   `json:"workspace_dir" yaml:"workspace_dir"`
	AllowedRoots    []string `json:"allowed_roots,omitempty" yaml:"allowed_roots,omitempty"`
	Provider        string   `json:"provider" yaml:"provider"` // google, openai, anthropic
	Model           string   `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature     float64  `json:"temperature" yaml:"temperature"`
	TopK            int      `json:"top_k" yaml:"top_k"`
	TopP            float64  `json:"top_p" yaml:"top_p"`
	MaxOutputTokens int      `json:"max_output_tokens" yaml:"max_output_tokens"`
	HistoryPath     string   `json:"history_path,omitempty" yaml:"history_path,omitempty"`
	LogLevel        string   `json:"log_level" yaml:"log_level"` // debug, info, warn, error, none
	LogPath         string   `json:"log_path,omitempty" yaml:"log_path,omitempty"`
	OpenBrowser     bool     `json:"open_browser" yaml:"open_browser"`

	// API keys never round-trip through the config file
	apiKeys *securemem.Pool
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, consts.AppName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming", consts.AppName)
	default:
		if configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); configHome != "" {
			return filepath.Join(configHome, consts.AppName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", consts.AppName)
	}
}

func defaultStateDir() string {
	switch runtime.GOOS {
	case "linux":
		if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
			return filepath.Join(stateHome, consts.AppName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "state", consts.AppName)
	case "windows":
		if localAppData := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); localAppData != "" {
			return filepath.Join(localAppData, consts.AppName)
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Local", consts.AppName)
	default:
		return defaultConfigDir()
	}
}

// LockPath is the lockfile guarding the server on c.Port
func (c *Config) LockPath() string {
	return filepath.Join(defaultStateDir(), fmt.Sprintf("%s-%d.lock", consts.AppName, c.Port))
}

// DefaultWorkspaceDir returns ~/ai-file-manager-workspace
func DefaultWorkspaceDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, consts.DefaultWorkspaceName)
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	stateDir := defaultStateDir()

	return &Config{
		Host:            consts.DefaultHost,
		Port:            consts.DefaultPort,
		WorkspaceDir:    DefaultWorkspaceDir(),
		Provider:        ProviderGoogle,
		Temperature:     consts.DefaultTemperature,
		TopK:            consts.DefaultTopK,
		TopP:            consts.DefaultTopP,
		MaxOutputTokens: consts.DefaultMaxOutputTokens,
		HistoryPath:     filepath.Join(stateDir, "history.db"),
		LogLevel:        "info",
		LogPath:         filepath.Join(stateDir, consts.AppName+".log"),
		OpenBrowser:     true,
		apiKeys:         securemem.NewPool(),
	}
}

// GetConfigPath returns the config path, honouring AIFM_CONFIG
func GetConfigPath() string {
	if path := strings.TrimSpace(os.Getenv("AIFM_CONFIG")); path != "" {
		return path
	}
	return filepath.Join(defaultConfigDir(), "config.json")
}

// Load reads the config file at path over the defaults. A missing file is not
// an error. Files ending in .yaml or .yml are parsed as YAML, anything else as JSON.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	config.fillDefaults()
	return config, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Host == "" {
		c.Host = def.Host
	}
	if c.Port <= 0 {
		c.Port = def.Port
	}
	if c.WorkspaceDir == "" {
		c.WorkspaceDir = def.WorkspaceDir
	}
	if c.Provider == "" {
		c.Provider = def.Provider
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = def.MaxOutputTokens
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.apiKeys == nil {
		c.apiKeys = securemem.NewPool()
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies environment overrides and moves provider API keys into
// protected memory.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return fmt.Errorf("invalid PORT %q", v)
		}
		c.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("AIFM_HOST")); v != "" {
		c.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("AIFM_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("AIFM_LOG_PATH")); v != "" {
		c.LogPath = v
	}
	if v := strings.TrimSpace(os.Getenv("AIFM_WORKSPACE")); v != "" {
		c.WorkspaceDir = v
	}
	if v := strings.TrimSpace(os.Getenv("AIFM_PROVIDER")); v != "" {
		c.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("AIFM_MODEL")); v != "" {
		c.Model = v
	}

	for provider, env := range apiKeyEnv {
		if key := strings.TrimSpace(os.Getenv(env)); key != "" {
			c.SetAPIKey(provider, key)
		}
	}
	return nil
}

// Validate checks fields that would otherwise fail late
func (c *Config) Validate() error {
	if _, ok := apiKeyEnv[c.Provider]; !ok {
		return fmt.Errorf("unknown provider %q (want google, openai or anthropic)", c.Provider)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("temperature must not be negative")
	}
	return nil
}

// SetAPIKey stores the key for provider in protected memory. An empty key
// removes the stored one.
func (c *Config) SetAPIKey(provider, key string) {
	if c.apiKeys == nil {
		c.apiKeys = securemem.NewPool()
	}
	if key == "" {
		c.apiKeys.Delete(provider)
		return
	}
	c.apiKeys.Set(provider, key)
}

// HasAPIKey reports whether a key is configured for provider
func (c *Config) HasAPIKey(provider string) bool {
	return c.apiKeys != nil && c.apiKeys.Has(provider)
}

// APIKey returns the key for provider, or "" when none is configured
func (c *Config) APIKey(provider string) string {
	if c.apiKeys == nil {
		return ""
	}
	return c.apiKeys.GetString(provider)
}

// APIKeyEnv returns the environment variable that supplies provider's key
func APIKeyEnv(provider string) string {
	return apiKeyEnv[provider]
}

// Addr returns host:port for the HTTP listener
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Close wipes the stored API keys
func (c *Config) Close() {
	if c.apiKeys != nil {
		c.apiKeys.Clear()
	}
}

// Save writes the configuration as JSON or YAML depending on the extension
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
