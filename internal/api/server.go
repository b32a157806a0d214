// Package api is the JSON HTTP interface of the tracker.
package api

import (
	"net/http"
	"strconv"
	"time"

	"jobtracker/internal/api/middleware"
	"jobtracker/internal/models"
	"jobtracker/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Server struct {
	svc       *service.Service
	limiter   middleware.Limiter
	rateLimit int
	loc       *time.Location
	logger    *zap.Logger
	router    chi.Router
}

// Option is a functional option for Server
type Option func(*Server)

// WithRateLimiter caps each user at perMinute authenticated requests
func WithRateLimiter(l middleware.Limiter, perMinute int) Option {
	return func(s *Server) {
		s.limiter = l
		s.rateLimit = perMinute
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(svc *service.Service, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		loc:    svc.Location(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recovery(s.logger))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.svc, s.logger))
			if s.limiter != nil {
				r.Use(middleware.RateLimit(s.limiter, s.rateLimit, s.logger))
			}

			r.Route("/applications", func(r chi.Router) {
				r.Get("/", s.handleListApplications)
				r.Post("/", s.handleCreateApplication)
				r.Get("/counts", s.handleCounts)
				r.Get("/export.csv", s.handleExport)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetApplication)
					r.Patch("/", s.updateHandler(s.patchApplication))
					r.Delete("/", s.handleDeleteApplication)
					r.Post("/edit", s.updateHandler(s.editApplication))
					r.Post("/quick", s.updateHandler(s.quickAction))
					r.Post("/bump", s.updateHandler(s.bumpFollowUp))
					r.Post("/bump/{days}", s.updateHandler(s.bumpFollowUp))
					r.Post("/follow-up", s.updateHandler(s.setFollowUp))
					r.Post("/status", s.updateHandler(s.setStatus))
					r.Post("/status/{status}", s.updateHandler(s.setStatus))
					r.Get("/followups", s.handleListFollowUps)
					r.Post("/followups", s.handleCreateFollowUp)
				})
			})

			r.Patch("/followups/{id}", s.handleUpdateFollowUp)
			r.Delete("/followups/{id}", s.handleDeleteFollowUp)

			r.Get("/leads", s.handleListLeads)
			r.Post("/leads/{id}/convert", s.handleConvertLead)
			r.Post("/leads/{id}/archive", s.handleArchiveLead)

			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handlePutProfile)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "status": "ok"})
}

// idParam reads a numeric path id. Anything else is a missing record.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, service.ErrNotFound
	}
	return id, nil
}

func currentUser(r *http.Request) *models.User {
	return middleware.UserFrom(r.Context())
}
