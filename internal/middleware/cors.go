package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// preflightMaxAge is how long, in seconds, browsers may cache a preflight.
const preflightMaxAge = 300

// NewCORSHandler returns a middleware that applies CORS headers for the
// storefront and admin front ends. Each entry in allowedOrigins must be a
// full origin (scheme + host, no trailing slash).
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		// Export downloads carry their filename here.
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         preflightMaxAge,
	})
	return c.Handler
}
