package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ziadkadry99/product-advisor/internal/advisor"
	"github.com/ziadkadry99/product-advisor/internal/catalog"
	"github.com/ziadkadry99/product-advisor/internal/config"
	"github.com/ziadkadry99/product-advisor/internal/db"
	"github.com/ziadkadry99/product-advisor/internal/llm"
	"github.com/ziadkadry99/product-advisor/internal/logger"
	"github.com/ziadkadry99/product-advisor/internal/prefs"
	"github.com/ziadkadry99/product-advisor/internal/transcript"
	"github.com/ziadkadry99/product-advisor/internal/websearch"
)

// cliSession scopes the preferences shared by the terminal commands, so a
// selection made with `pick` is seen by `chat`.
const cliSession = "cli"

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `advisor init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logLevel == "" && !verbose {
		logger.Configure(cfg.LogLevel, "")
	}
	return cfg, nil
}

// app holds the collaborators built from config.
type app struct {
	cfg         *config.Config
	db          *db.DB
	prefs       prefs.Store
	transcripts *transcript.Store
	options     advisor.Options
}

// newApp opens storage and builds the chat provider and searcher.
func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	if cfg.Prefs.Driver == config.PrefsSQLite {
		dbPath := filepath.Join(cfg.DataDir, "advisor.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.db = database
		a.transcripts = transcript.NewStore(database)
	}

	store, err := createPrefsStore(cfg, a.db)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.prefs = store

	provider, err := llm.NewProvider(llm.Options{
		Mode:              string(cfg.Chat.Mode),
		WorkerURL:         cfg.Chat.WorkerURL,
		Model:             cfg.Chat.Model,
		RequestsPerMinute: cfg.Chat.RequestsPerMinute,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating chat provider: %w", err)
	}
	if !llm.IsConfigured(provider) {
		logger.Warn("no worker URL configured; chat requests will be declined")
	}

	source := cfg.CatalogSource
	a.options = advisor.Options{
		Load: func(ctx context.Context) (*catalog.Catalog, error) {
			return catalog.Load(ctx, source)
		},
		Provider:  provider,
		Model:     cfg.Chat.Model,
		WebSearch: cfg.Search.Enabled,
	}
	if cfg.Search.Endpoint != "" {
		a.options.Searcher = websearch.NewClient(cfg.Search.Endpoint, time.Duration(cfg.Search.TimeoutSeconds)*time.Second)
	}

	return a, nil
}

// createPrefsStore builds the preference store selected by prefs.driver.
func createPrefsStore(cfg *config.Config, database *db.DB) (prefs.Store, error) {
	switch cfg.Prefs.Driver {
	case config.PrefsMemory:
		return prefs.NewStore(prefs.StoreTypeMemory)
	case config.PrefsSQLite:
		return prefs.NewStore(prefs.StoreTypeSQLite, prefs.WithDB(database))
	case config.PrefsRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Prefs.RedisAddr})
		return prefs.NewStore(prefs.StoreTypeRedis,
			prefs.WithRedisClient(client),
			prefs.WithRedisTTL(time.Duration(cfg.Prefs.TTLHours)*time.Hour),
		)
	default:
		return nil, fmt.Errorf("%w: %s", prefs.ErrInvalidStoreType, cfg.Prefs.Driver)
	}
}

// newAdvisor creates and loads an advisor for a single local session.
// A catalog load failure is returned after the advisor is built, so
// callers can still show the load-failure placeholder.
func (a *app) newAdvisor(ctx context.Context, session string) (*advisor.Advisor, error) {
	opts := a.options
	opts.Prefs = prefs.Scoped(a.prefs, session)
	if a.transcripts != nil {
		opts.Recorder = a.transcripts.Recorder(session)
	}
	adv := advisor.New(opts)
	return adv, adv.Load(ctx)
}

// Close releases storage handles.
func (a *app) Close() {
	if a.prefs != nil {
		a.prefs.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
