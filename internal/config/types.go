package config

// ChatMode selects how chat completions are obtained.
type ChatMode string

const (
	// ChatModeWorker posts the raw message list to a configured worker URL.
	ChatModeWorker ChatMode = "worker"
	// ChatModeOpenAI talks to the OpenAI Chat Completions API directly.
	ChatModeOpenAI ChatMode = "openai"
)

// PrefsDriver identifies the backing store for persisted preferences.
type PrefsDriver string

const (
	PrefsMemory PrefsDriver = "memory"
	PrefsSQLite PrefsDriver = "sqlite"
	PrefsRedis  PrefsDriver = "redis"
)

// Config is the top-level advisor configuration, corresponding to .advisor.yml.
type Config struct {
	CatalogSource string       `yaml:"catalog_source" koanf:"catalog_source"`
	DataDir       string       `yaml:"data_dir" koanf:"data_dir"`
	Port          int          `yaml:"port" koanf:"port"`
	LogLevel      string       `yaml:"log_level" koanf:"log_level"`
	Chat          ChatConfig   `yaml:"chat" koanf:"chat"`
	Search        SearchConfig `yaml:"search" koanf:"search"`
	Prefs         PrefsConfig  `yaml:"prefs" koanf:"prefs"`
}

// ChatConfig holds chat endpoint settings.
type ChatConfig struct {
	Mode              ChatMode `yaml:"mode" koanf:"mode"`
	WorkerURL         string   `yaml:"worker_url" koanf:"worker_url"`
	Model             string   `yaml:"model" koanf:"model"`
	RequestsPerMinute int      `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}

// SearchConfig holds web search settings.
type SearchConfig struct {
	Enabled        bool   `yaml:"enabled" koanf:"enabled"`
	Endpoint       string `yaml:"endpoint" koanf:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// PrefsConfig holds preference storage settings.
type PrefsConfig struct {
	Driver    PrefsDriver `yaml:"driver" koanf:"driver"`
	RedisAddr string      `yaml:"redis_addr" koanf:"redis_addr"`
	TTLHours  int         `yaml:"ttl_hours" koanf:"ttl_hours"`
}

// Configured reports whether a chat backend has been supplied. An empty
// worker URL in worker mode is the explicit "unconfigured" state.
func (c ChatConfig) Configured() bool {
	if c.Mode == ChatModeWorker {
		return c.WorkerURL != ""
	}
	return true
}
