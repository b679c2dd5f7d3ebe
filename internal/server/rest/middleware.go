package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"github.com/dmitrijs2005/culturehub/internal/server/services"
	"github.com/go-chi/chi/v5/middleware"
)

// Authenticator turns a bearer token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

// principalHandler is a handler that runs only for an authenticated caller.
type principalHandler func(w http.ResponseWriter, r *http.Request, p models.Principal)

// protect authenticates the request and, when roles are given, authorizes the
// principal before calling h.
func (s *Server) protect(h principalHandler, roles ...models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// An absent or non-Bearer header yields "" and fails as a missing token.
		token := common.BearerToken(r.Header.Get(common.AuthorizationHeaderName))

		p, err := s.guard.Authenticate(ctx, token)
		if err != nil {
			if common.IsAuthError(err) || errors.Is(err, common.ErrorNotFound) {
				s.logger.Debug(ctx, "authentication rejected", "reason", err.Error())
				writeMessage(w, http.StatusUnauthorized, msgNotAuthorized)
				return
			}
			writeError(ctx, w, s.logger, err)
			return
		}

		if len(roles) > 0 {
			if err := services.Authorize(p, roles...); err != nil {
				writeMessage(w, http.StatusForbidden, msgAccessDenied)
				return
			}
		}

		h(w, r, p)
	}
}

// requestLogger logs one line per request after it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
