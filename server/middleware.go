package server

import (
	"context"
	"net/http"
	"time"

	"audiochan/core/auth"
	"audiochan/core/result"
	"audiochan/logger"
)

type contextKey int

const callerKey contextKey = iota

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// CallerID returns the authenticated user id, or zero for anonymous calls.
func CallerID(ctx context.Context) int64 {
	id, _ := ctx.Value(callerKey).(int64)
	return id
}

func withCaller(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, callerKey, id)
}

// identify parses the Authorization header when present. A present but
// invalid header is an error even on public routes.
func identify(tokens TokenParser, r *http.Request) (int64, bool, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return 0, false, nil
	}
	token, ok := auth.BearerToken(header)
	if !ok {
		return 0, true, result.Unauthorized("Authorization header must be in the format 'Bearer {token}'.")
	}
	id, err := tokens.ParseToken(token)
	if err != nil {
		return 0, true, result.Unauthorized("Invalid token.")
	}
	return id, true, nil
}

// requireAuth rejects anonymous requests.
func requireAuth(tokens TokenParser, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, present, err := identify(tokens, r)
		if err == nil && !present {
			err = result.Unauthorized("Authorization header is required.")
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r.WithContext(withCaller(r.Context(), id)))
	}
}

// optionalAuth lets anonymous requests through with caller id zero.
func optionalAuth(tokens TokenParser, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _, err := identify(tokens, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r.WithContext(withCaller(r.Context(), id)))
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("HTTP request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rec.status),
			logger.Duration("elapsed", time.Since(start)))
	})
}
