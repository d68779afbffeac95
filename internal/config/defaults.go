package config

// DefaultSearchEndpoint is the public instant-answer API used for live references.
const DefaultSearchEndpoint = "https://api.duckduckgo.com/"

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CatalogSource: "products.json",
		DataDir:       ".advisor",
		Port:          8080,
		LogLevel:      "info",
		Chat: ChatConfig{
			Mode:  ChatModeWorker,
			Model: "gpt-4o",
		},
		Search: SearchConfig{
			Enabled:        false,
			Endpoint:       DefaultSearchEndpoint,
			TimeoutSeconds: 10,
		},
		Prefs: PrefsConfig{
			Driver:   PrefsSQLite,
			TTLHours: 24 * 30,
		},
	}
}
