package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TobiSchelling/expedanalysis/internal/auth"
	"github.com/TobiSchelling/expedanalysis/internal/database"
)

type ctxKey int

const userKey ctxKey = iota

func userFrom(ctx context.Context) *database.User {
	u, _ := ctx.Value(userKey).(*database.User)
	return u
}

// requireUser redirects anonymous page requests to the login page.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := s.auth.UserFromRequest(r)
		if errors.Is(err, auth.ErrNoSession) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("resolving session")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

// requireAPIUser answers anonymous API requests with a JSON 401.
func (s *Server) requireAPIUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := s.auth.UserFromRequest(r)
		if errors.Is(err, auth.ErrNoSession) {
			writeError(w, &HTTPError{Code: http.StatusUnauthorized, Message: err.Error()})
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("resolving session")
			writeError(w, &HTTPError{Code: http.StatusInternalServerError, Message: "internal server error"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
