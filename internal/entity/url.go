// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL with a limited
// lifetime, along with its associated metadata and the error kinds returned
// by the registry.
package entity

import (
	"math"
	"time"
)

// MaxValidityMinutes is the largest validity whose expiration time still
// fits in a time.Duration.
const MaxValidityMinutes = math.MaxInt64 / int64(time.Minute)

// URL represents a shortened URL.
type URL struct {
	ShortCode       string    // ShortCode is the key used to shorten the original URL.
	OriginalURL     string    // OriginalURL is the full URL that the short code resolves to.
	IsCustom        bool      // IsCustom reports whether the short code was supplied by the caller.
	ValidityMinutes int       // ValidityMinutes is the lifetime the URL was created with.
	URLStats                  // URLStats contains statistics about the URL.
	CreatedAt       time.Time // CreatedAt is the timestamp when the URL was created.
	ExpiresAt       time.Time // ExpiresAt is the timestamp after which the URL no longer resolves.
}

// URLStats contains statistics related to a shortened URL.
type URLStats struct {
	AccessCount int64 // AccessCount is the number of times the shortened URL has been resolved.
	IsExpired   bool  // IsExpired is computed when statistics are requested.
}

// HasExpired reports whether the URL is past its expiration time at now.
func (u *URL) HasExpired(now time.Time) bool {
	return now.After(u.ExpiresAt)
}

// ShortenInput holds the parameters for shortening a URL.
type ShortenInput struct {
	OriginalURL string
	// ShortCode is optional. When empty a code is generated.
	ShortCode string
	// ValidityMinutes is optional. When nil the default validity is used.
	ValidityMinutes *int
}
