package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/product-advisor/internal/advisor"
	"github.com/ziadkadry99/product-advisor/internal/logger"
	"github.com/ziadkadry99/product-advisor/internal/server"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server with the product picker and chat",
	Long:  `Starts the HTTP server that serves the product picker page, the JSON API and the WebSocket chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		app, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		// Sessions share one catalog fetch.
		opts := app.options
		opts.Load = advisor.CachedLoader(opts.Load)
		sessions := server.NewSessions(opts, app.prefs, app.transcripts)
		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: serveAllowAll,
		}, sessions, app.transcripts)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("advisor server starting",
			"version", Version,
			"port", cfg.Port,
			"catalog", cfg.CatalogSource,
			"prefs", cfg.Prefs.Driver,
			"web_search", cfg.Search.Enabled,
		)
		fmt.Fprintf(os.Stderr, "Open http://localhost:%d in your browser\n", cfg.Port)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "cors-allow-all", false, "allow all CORS origins")
	rootCmd.AddCommand(serveCmd)
}
