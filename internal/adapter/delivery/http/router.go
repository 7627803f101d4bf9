// Package http provides the HTTP delivery layer for the expiring URL shortener.
// This package contains the HTTP handlers and related types used for processing
// incoming requests, validating input, and formatting responses.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/expiring-url-shortener/pkg/middleware/recoverer"
)

type routerOptions struct {
	baseURL        string
	allowedOrigins []string
	swaggerPath    string
}

// RouterOption configures NewRouter.
type RouterOption func(*routerOptions)

// WithBaseURL sets the prefix of the shortUrl returned on creation.
func WithBaseURL(baseURL string) RouterOption {
	return func(o *routerOptions) {
		o.baseURL = baseURL
	}
}

// WithAllowedOrigins sets the CORS allowed origins.
func WithAllowedOrigins(origins ...string) RouterOption {
	return func(o *routerOptions) {
		o.allowedOrigins = origins
	}
}

// WithSwaggerPath sets the file served at /docs/swagger.yml.
func WithSwaggerPath(path string) RouterOption {
	return func(o *routerOptions) {
		o.swaggerPath = path
	}
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the URL shortener API.
func NewRouter(logger *httplog.Logger, urlUseCase urlUseCase, opts ...RouterOption) *chi.Mux {
	o := routerOptions{
		allowedOrigins: []string{"*"},
		swaggerPath:    "./docs/swagger.yml",
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   o.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, o.swaggerPath)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", handlePing)
	})

	h := newURLHandler(urlUseCase, validator.New(), o.baseURL)

	r.Post("/shorten", h.shortenURL)
	r.Get("/stats/{shortCode}", h.getURLStats)

	r.Get("/{shortCode}", h.resolveShortCode)
	r.Delete("/{shortCode}", h.deactivateURL)

	return r
}
