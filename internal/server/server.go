// Package server exposes the advisor over HTTP: the picker page, a JSON
// API and a WebSocket chat.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/product-advisor/internal/logger"
	"github.com/ziadkadry99/product-advisor/internal/transcript"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server serves the advisor to browser clients.
type Server struct {
	cfg         Config
	sessions    *Sessions
	transcripts *transcript.Store
	router      chi.Router
	httpServer  *http.Server
}

// New creates a server. transcripts may be nil, in which case the
// transcript endpoint returns an empty list.
func New(cfg Config, sessions *Sessions, transcripts *transcript.Store) *Server {
	s := &Server{
		cfg:         cfg,
		sessions:    sessions,
		transcripts: transcripts,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader},
		ExposedHeaders:   []string{SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/", s.serveIndex)

	// Long-lived WebSocket connections stay outside the request timeout.
	r.Get("/ws/chat", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(120 * time.Second))

		r.Get("/products", s.handleProducts)
		r.Get("/categories", s.handleCategories)

		r.Get("/selection", s.handleSelection)
		r.Post("/selection/{id}/toggle", s.handleToggle)
		r.Delete("/selection", s.handleClearSelection)

		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)

		r.Post("/routine", s.handleRoutine)
		r.Post("/chat", s.handleChat)
		r.Get("/chat/transcript", s.handleTranscript)
	})

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      150 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("advisor server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
