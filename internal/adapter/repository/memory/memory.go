// Package memory provides an in-memory, concurrency-safe URL repository.
//
// All mutations of a single entry happen under one write lock, so an
// insert-if-absent, a check-expiry-then-count and a removal of the same
// short code never interleave.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vadimbarashkov/expiring-url-shortener/internal/entity"
)

type URLRepository struct {
	mu   sync.RWMutex
	urls map[string]*entity.URL
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		urls: make(map[string]*entity.URL),
	}
}

// Save stores url unless its short code is already taken. Entries that have
// expired but were not reaped yet still occupy their short code.
func (r *URLRepository) Save(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.Save"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.urls[url.ShortCode]; ok {
		return nil, entity.E(op, entity.KindShortCodeExists, entity.ErrShortCodeExists)
	}

	stored := *url
	r.urls[stored.ShortCode] = &stored

	res := stored
	return &res, nil
}

// RetrieveByShortCode returns a copy of the stored URL without touching it,
// expired or not.
func (r *URLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.RetrieveByShortCode"

	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.urls[shortCode]
	if !ok {
		return nil, entity.E(op, entity.KindNotFound, entity.ErrURLNotFound)
	}

	res := *url
	return &res, nil
}

// RetrieveAndUpdateStats evicts the URL if it has expired at now, otherwise
// increments its access count and returns the updated copy.
func (r *URLRepository) RetrieveAndUpdateStats(ctx context.Context, shortCode string, now time.Time) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.RetrieveAndUpdateStats"

	r.mu.Lock()
	defer r.mu.Unlock()

	url, ok := r.urls[shortCode]
	if !ok {
		return nil, entity.E(op, entity.KindNotFound, entity.ErrURLNotFound)
	}

	if url.HasExpired(now) {
		delete(r.urls, shortCode)
		return nil, entity.E(op, entity.KindExpired, entity.ErrURLExpired)
	}

	url.AccessCount++

	res := *url
	return &res, nil
}

func (r *URLRepository) Remove(ctx context.Context, shortCode string) error {
	const op = "adapter.repository.memory.URLRepository.Remove"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.urls[shortCode]; !ok {
		return entity.E(op, entity.KindNotFound, entity.ErrURLNotFound)
	}

	delete(r.urls, shortCode)
	return nil
}

// RemoveExpired deletes every URL that has expired at now and returns how
// many were deleted. Candidates are collected under the read lock and each
// one is removed under its own short write lock.
func (r *URLRepository) RemoveExpired(ctx context.Context, now time.Time) (int, error) {
	const op = "adapter.repository.memory.URLRepository.RemoveExpired"

	r.mu.RLock()
	var expired []*entity.URL
	for _, url := range r.urls {
		if url.HasExpired(now) {
			expired = append(expired, url)
		}
	}
	r.mu.RUnlock()

	removed := 0
	for _, url := range expired {
		if err := ctx.Err(); err != nil {
			return removed, fmt.Errorf("%s: cleanup interrupted: %w", op, err)
		}

		r.mu.Lock()
		// The short code may have been deleted and reused in the meantime.
		if cur, ok := r.urls[url.ShortCode]; ok && cur == url {
			delete(r.urls, url.ShortCode)
			removed++
		}
		r.mu.Unlock()
	}

	return removed, nil
}

// Len returns the number of stored URLs, expired ones included.
func (r *URLRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.urls)
}
