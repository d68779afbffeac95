package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// envPrefix is the prefix for environment overrides. Nested keys use a
// double underscore: ADVISOR_CHAT__WORKER_URL -> chat.worker_url.
const envPrefix = "ADVISOR_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (ADVISOR_*). A .env file in the working
// directory is loaded into the process environment first, if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps ADVISOR_CHAT__WORKER_URL to chat.worker_url.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validChatModes = map[ChatMode]bool{
	ChatModeWorker: true,
	ChatModeOpenAI: true,
}

var validPrefsDrivers = map[PrefsDriver]bool{
	PrefsMemory: true,
	PrefsSQLite: true,
	PrefsRedis:  true,
}

// Validate checks that the configuration contains valid values. An empty
// worker URL is valid: the advisor runs in the unconfigured state.
func (c *Config) Validate() error {
	if c.CatalogSource == "" {
		return fmt.Errorf("catalog_source is required")
	}

	if !validChatModes[c.Chat.Mode] {
		return fmt.Errorf("invalid chat.mode %q: must be one of worker, openai", c.Chat.Mode)
	}

	if c.Chat.Mode == ChatModeOpenAI && c.Chat.Model == "" {
		return fmt.Errorf("chat.model is required in openai mode")
	}

	if c.Chat.RequestsPerMinute < 0 {
		return fmt.Errorf("chat.requests_per_minute must be non-negative")
	}

	if c.Search.Enabled && c.Search.Endpoint == "" {
		return fmt.Errorf("search.endpoint is required when search is enabled")
	}

	if c.Search.TimeoutSeconds < 0 {
		return fmt.Errorf("search.timeout_seconds must be non-negative")
	}

	if !validPrefsDrivers[c.Prefs.Driver] {
		return fmt.Errorf("invalid prefs.driver %q: must be one of memory, sqlite, redis", c.Prefs.Driver)
	}

	if c.Prefs.Driver == PrefsRedis && c.Prefs.RedisAddr == "" {
		return fmt.Errorf("prefs.redis_addr is required for the redis driver")
	}

	if c.Prefs.Driver == PrefsSQLite && c.DataDir == "" {
		return fmt.Errorf("data_dir is required for the sqlite driver")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}

	return nil
}

// APIKeyEnvVar returns the environment variable holding the API key for
// the given chat mode, or "" when the mode needs none.
func APIKeyEnvVar(mode ChatMode) string {
	if mode == ChatModeOpenAI {
		return "OPENAI_API_KEY"
	}
	return ""
}
