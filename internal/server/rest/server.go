// Package rest serves the JSON HTTP API: account endpoints under /api/auth
// and profile/admin endpoints under /api/users.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/logging"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"github.com/dmitrijs2005/culturehub/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
	handlerTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Options carries the REST-specific settings.
type Options struct {
	Address      string
	CORSOrigins  []string
	UniformReset bool
	// Health is called by GET /healthz; nil means always healthy.
	Health func(ctx context.Context) error
}

type Server struct {
	address      string
	corsOrigins  []string
	uniformReset bool
	health       func(ctx context.Context) error

	auth   *services.AuthService
	guard  Authenticator
	reset  *services.ResetService
	users  *services.UserService
	logger logging.Logger
}

func NewServer(opts Options, l logging.Logger, as *services.AuthService, rs *services.ResetService, us *services.UserService) *Server {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		address:      opts.Address,
		corsOrigins:  origins,
		uniformReset: opts.UniformReset,
		health:       opts.Health,
		auth:         as,
		guard:        as,
		reset:        rs,
		users:        us,
		logger:       l.With("module", "http_server"),
	}
}

// Handler builds the router with its middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handlerTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Put("/reset-password/{token}", s.handleResetPassword)
		r.Put("/update-password", s.protect(s.handleUpdatePassword))
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", s.protect(s.handleListUsers, models.RoleAdmin))
		r.Get("/profile", s.protect(s.handleGetProfile))
		r.Put("/profile", s.protect(s.handleUpdateProfile))
		r.Post("/{id}/avatar", s.protect(s.handleUploadAvatar))
		r.Delete("/{id}", s.protect(s.handleDeleteUser, models.RoleAdmin))
		r.Put("/{id}/role", s.protect(s.handleSetRole, models.RoleAdmin))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, msgNotFound)
	})

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
