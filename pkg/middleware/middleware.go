// Package middleware holds the shape shared by HTTP middlewares.
package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler
