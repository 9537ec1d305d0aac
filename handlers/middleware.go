package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"kboard/apperr"
	"kboard/auth"
	"kboard/database"
	"kboard/models"
	"kboard/utilities"
)

// LoggingMiddleware logs method, path, status and duration of every request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(rw, r)

		utilities.LogRequest(r.Method, r.URL.Path, r.RemoteAddr, rw.statusCode, time.Since(start))
	})
}

// responseWriter captures the status code written by the wrapped handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// TokenVerifier resolves a bearer token to its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// PrincipalLookup finds the account a token subject names.
type PrincipalLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PublicRoutes lists the paths served without a token.
var PublicRoutes = struct {
	Exact    []string
	Prefixes []string
}{
	Exact:    []string{"/auth/login", "/auth/register", "/error"},
	Prefixes: []string{"/swagger-ui", "/v3/api-docs", "/docs"},
}

func isPublic(path string) bool {
	for _, p := range PublicRoutes.Exact {
		if path == p {
			return true
		}
	}
	for _, p := range PublicRoutes.Prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

const bearerPrefix = "Bearer "

// AuthMiddleware authenticates every non-public request. A request that fails
// never reaches next. A valid token whose subject no longer exists passes
// through without a principal.
func AuthMiddleware(tokens TokenVerifier, users PrincipalLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" || strings.TrimSpace(header) == strings.TrimSpace(bearerPrefix) {
				writeError(w, r, apperr.New(apperr.KindNotAuthenticated, "Token is missing."))
				return
			}
			if !strings.HasPrefix(header, bearerPrefix) {
				writeError(w, r, apperr.New(apperr.KindTokenInvalid, auth.MsgTokenInvalid))
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if token == "" {
				writeError(w, r, apperr.New(apperr.KindNotAuthenticated, "Token is missing."))
				return
			}

			subject, err := tokens.Verify(token)
			if err != nil {
				utilities.LogDebug("Rejected token on %s %s: %v", r.Method, r.URL.Path, err)
				writeError(w, r, err)
				return
			}

			user, err := users.GetUserByEmail(r.Context(), subject)
			switch {
			case errors.Is(err, database.ErrNotFound):
				utilities.LogWarn("Token subject %q has no account", subject)
				next.ServeHTTP(w, r)
			case err != nil:
				writeError(w, r, apperr.Internal("resolve token subject", err))
			default:
				next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), *user)))
			}
		})
	}
}
