package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to the product advisor! Let's configure it.")
	fmt.Println()

	cfg := DefaultConfig()

	catalogPrompt := promptui.Prompt{
		Label:   "Products document (file path or URL)",
		Default: cfg.CatalogSource,
	}
	source, err := catalogPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("catalog source: %w", err)
	}
	cfg.CatalogSource = strings.TrimSpace(source)

	modePrompt := promptui.Select{
		Label: "Chat backend",
		Items: []string{
			"worker: POST messages to your own proxy URL",
			"openai: call the OpenAI API directly",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chat mode: %w", err)
	}
	cfg.Chat.Mode = []ChatMode{ChatModeWorker, ChatModeOpenAI}[modeIdx]

	if cfg.Chat.Mode == ChatModeWorker {
		urlPrompt := promptui.Prompt{
			Label:   "Worker URL (leave blank to configure later)",
			Default: "",
		}
		workerURL, err := urlPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("worker url: %w", err)
		}
		cfg.Chat.WorkerURL = strings.TrimSpace(workerURL)
	}

	searchPrompt := promptui.Select{
		Label: "Include live web search references by default?",
		Items: []string{"no", "yes"},
	}
	searchIdx, _, err := searchPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	cfg.Search.Enabled = searchIdx == 1

	driverPrompt := promptui.Select{
		Label: "Where should selections and preferences be stored?",
		Items: []string{string(PrefsSQLite), string(PrefsMemory), string(PrefsRedis)},
	}
	_, driver, err := driverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("prefs driver: %w", err)
	}
	cfg.Prefs.Driver = PrefsDriver(driver)

	if cfg.Prefs.Driver == PrefsRedis {
		addrPrompt := promptui.Prompt{
			Label:   "Redis address",
			Default: "localhost:6379",
		}
		addr, err := addrPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("redis address: %w", err)
		}
		cfg.Prefs.RedisAddr = strings.TrimSpace(addr)
	}

	if envVar := APIKeyEnvVar(cfg.Chat.Mode); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: set %s in your environment or .env before starting the advisor.\n", envVar)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
