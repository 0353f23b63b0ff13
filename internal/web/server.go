// Package web serves the listing dashboard API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sjsage522/partsfinder/logger"
	"sjsage522/partsfinder/services/store"
)

// Server is the dashboard HTTP server
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewRouter builds the dashboard routes over st
func NewRouter(st store.Store) http.Handler {
	h := NewHandler(st)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware(logger.ForWeb()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", h.ListItems)
		r.Get("/items/recent", h.RecentItems)
		r.Get("/items/search", h.SearchItems)
		r.Post("/items/{id}/archive", h.ArchiveItem)
		r.Get("/stats", h.Stats)
		r.Get("/categories", h.Categories)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "not found")
	})
	return r
}

// NewServer creates a dashboard server listening on addr
func NewServer(addr string, st store.Store) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(st),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logger.ForWeb(),
	}
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.log.Info().Str("address", s.httpServer.Addr).Msg("Starting web dashboard")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info().Msg("Stopping web dashboard")
	return s.httpServer.Shutdown(ctx)
}
