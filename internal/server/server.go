// Package server exposes the reconciliation engine over HTTP.
//
// A single POST endpoint accepts both transaction sets plus optional
// matching tolerances and returns the full classified result. Each run
// is tagged with a generated ID so callers can correlate responses with
// server logs.
package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"bank-reconciliation-service/pkg/logger"
)

// Config holds HTTP server configuration
type Config struct {
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

// DefaultConfig returns a default server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		AllowedOrigins: []string{"*"},
	}
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// New builds the HTTP router for the reconciliation API
func New(config *Config, log logger.Logger) (http.Handler, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	if log == nil {
		log = logger.Global()
	}

	h := &handler{log: log.WithComponent("server")}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Get("/healthz", h.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/reconcile", h.reconcile)
	})

	return router, nil
}
