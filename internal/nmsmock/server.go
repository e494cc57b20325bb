// Package nmsmock is an in-memory stand-in for the NMS server, close enough
// for the seeder: login issuing real JWTs, credential profile creation, and
// discovery profile creation on both known paths. It backs the package tests
// and the mock-nms binary for local runs.
package nmsmock

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configures the mock server.
type Options struct {
	// RequireAuth gates /api/v1 behind bearer token validation.
	RequireAuth bool
	Username    string
	Password    string
	JWTSecret   string
	TokenExpiry time.Duration
}

// Server represents the mock HTTP server
type Server struct {
	router *chi.Mux
	store  *Store
	auth   *AuthService
	logger *slog.Logger
}

// NewServer creates and configures the mock server.
func NewServer(opts Options, logger *slog.Logger) (*Server, error) {
	if opts.Username == "" {
		opts.Username = "admin"
	}
	if opts.Password == "" {
		opts.Password = "admin"
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "mock-jwt-secret-0123456789abcdef0123"
	}
	if opts.TokenExpiry == 0 {
		opts.TokenExpiry = time.Hour
	}

	auth, err := NewAuthService(opts.JWTSecret, opts.Username, opts.Password, opts.TokenExpiry)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		store:  NewStore(),
		auth:   auth,
		logger: logger,
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Post("/login", s.handleLogin)

	r.Route("/api/v1", func(r chi.Router) {
		if opts.RequireAuth {
			r.Use(s.jwtAuth)
		}

		r.Get("/credentials", s.handleListCredentials)
		r.Post("/credentials", s.handleCreateCredential)

		// Both discovery paths are served; the two seeder variants disagree
		// on which one the server exposes.
		r.Post("/discovery", s.handleCreateDiscovery)
		r.Post("/discovery_profiles", s.handleCreateDiscovery)
	})

	return s, nil
}

// Router returns the chi router, for mounting under httptest.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Store returns the backing store, for assertions in tests.
func (s *Server) Store() *Store {
	return s.store
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// jwtAuth validates the bearer token on protected routes.
func (s *Server) jwtAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or malformed authorization header")
			return
		}
		if _, err := s.auth.ValidateToken(token); err != nil {
			respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
