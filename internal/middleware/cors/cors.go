// Package cors configures cross-origin access for browser clients.
package cors

import (
	"net/http"

	"github.com/rs/cors"
)

// Config holds CORS configuration. An origin of "*" admits any origin.
type Config struct {
	AllowedOrigins []string
	MaxAge         int
	Debug          bool
}

// DefaultConfig admits any origin.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
		MaxAge:         600,
	}
}

// New builds the middleware. Browsers may send the bearer token and JSON
// bodies with the verbs the API routes.
func New(config Config) func(http.Handler) http.Handler {
	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultConfig().AllowedOrigins
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           config.MaxAge,
		Debug:            config.Debug,
	})
	return c.Handler
}
