// Package server exposes the newsletter system over HTTP: signup,
// preference management, newsletter generation and delivery, and the
// provider diagnostics endpoint.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/seanmtli/personalnewsletter/internal/config"
	"github.com/seanmtli/personalnewsletter/internal/curator"
	"github.com/seanmtli/personalnewsletter/internal/email"
	"github.com/seanmtli/personalnewsletter/internal/refdata"
	"github.com/seanmtli/personalnewsletter/internal/store"
)

// Server holds the HTTP layer's collaborators.
type Server struct {
	cfg     config.Config
	store   *store.Store
	curator *curator.Curator
	emailer *email.Emailer
	catalog *refdata.Catalog
}

// New creates a server.
func New(cfg config.Config, st *store.Store, cur *curator.Curator, em *email.Emailer, catalog *refdata.Catalog) *Server {
	return &Server{
		cfg:     cfg,
		store:   st,
		curator: cur,
		emailer: em,
		catalog: catalog,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)
		r.Get("/teams", s.handleTeams)
		r.Get("/athletes", s.handleAthletes)

		r.Post("/newsletter/generate", s.handleGenerate)
		r.Post("/newsletter/debug", s.handleDebug)
		r.Post("/newsletter/{id}/send", s.handleSend)
		r.Get("/newsletter/{id}", s.handleGetNewsletter)
		r.Get("/newsletters", s.handleListNewsletters)
	})

	return r
}
