package main

import (
	"net/http"

	"kboard/handlers"
	"kboard/utilities"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter mounts the API and wraps it with CORS, request logging and the
// authentication gate, in that order from the outside in. The gate wraps the
// whole router so it runs before route matching.
func NewRouter(h *handlers.Handler, tokens handlers.TokenVerifier, users handlers.PrincipalLookup, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	h.Register(r)

	var handler http.Handler = r
	handler = handlers.AuthMiddleware(tokens, users)(handler)
	handler = handlers.LoggingMiddleware(handler)

	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"})
	methods := gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	origins := gorillahandlers.AllowedOrigins(allowedOrigins)
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		utilities.LogWarn("CORS allows every origin; set CORS_ALLOWED_ORIGINS in production")
	}
	utilities.LogInfo("CORS allowed origins: %v", allowedOrigins)

	return gorillahandlers.CORS(headers, methods, origins)(handler)
}
