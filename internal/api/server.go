// Package api serves the ModelShare REST interface: huma operations on a chi
// router, every response wrapped in the status envelope.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	domainerrors "github.com/modelshare/modelshare-server/internal/errors"
	"github.com/modelshare/modelshare-server/internal/logger"
	"github.com/modelshare/modelshare-server/internal/service"
	"github.com/modelshare/modelshare-server/internal/sse"
	"github.com/modelshare/modelshare-server/internal/store"
)

// Options tunes the HTTP layer.
type Options struct {
	CORSOrigins       []string // default "*"
	RequestsPerMinute int      // per client IP, 0 disables the limit
	Version           string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      store.Store
	services   *Services
	sseManager *sse.Manager
	sseHandler *sse.Handler
	router     *chi.Mux
	api        huma.API
	opts       Options
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, sseManager *sse.Manager, opts Options, logger *slog.Logger) *Server {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	router := chi.NewRouter()

	s := &Server{
		store:      st,
		services:   services,
		sseManager: sseManager,
		router:     router,
		opts:       opts,
		logger:     logger,
	}
	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, logger)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("ModelShare API", opts.Version)
	// Drop the $schema link so bodies carry only the envelope fields.
	humaConfig.CreateHooks = nil
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	var authService *service.AuthService
	if s.services != nil {
		authService = s.services.Auth
	}
	s.router.Use(clientMiddleware(authService))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	if len(s.opts.CORSOrigins) == 1 && s.opts.CORSOrigins[0] == "*" {
		s.router.Use(allowAnyOrigin)
	}

	if s.opts.RequestsPerMinute > 0 {
		s.router.Use(httprate.Limit(
			s.opts.RequestsPerMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByRealIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, newAPIError(domainerrors.CodeRateLimited, nil))
			}),
		))
	}

	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, newAPIError(domainerrors.CodeUnsupportedMethod, nil))
	})
	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		e := newAPIError(domainerrors.CodeUnsupportedMethod, nil)
		e.status = http.StatusNotFound
		writeError(w, e)
	})
}

// allowAnyOrigin stamps the wildcard origin on every response, not only on
// requests that carry an Origin header.
func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerModelRoutes()
	s.registerRightsRoutes()
	s.registerCommentRoutes()
	s.registerFileRoutes()

	if s.sseHandler != nil {
		s.router.Get("/events", s.sseHandler.ServeHTTP)
	}
}
