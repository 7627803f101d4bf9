// Package usecase implements the URL registry: creation of expiring short
// URLs, their resolution, statistics, deletion and reaping.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/expiring-url-shortener/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Alphabet is the set of symbols generated short codes are drawn from.
	Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	MinShortCodeLength = 3
	MaxShortCodeLength = 20

	DefaultShortCodeLength = 6
	DefaultMaxAttempts     = 1000
	DefaultGrowEvery       = 100
	DefaultValidityMinutes = 30
)

type urlRepository interface {
	Save(ctx context.Context, url *entity.URL) (*entity.URL, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	RetrieveAndUpdateStats(ctx context.Context, shortCode string, now time.Time) (*entity.URL, error)
	Remove(ctx context.Context, shortCode string) error
	RemoveExpired(ctx context.Context, now time.Time) (int, error)
}

// Option configures a URLUseCase.
type Option func(*URLUseCase)

// WithShortCodeLength sets the initial length of generated short codes.
func WithShortCodeLength(n int) Option {
	return func(uc *URLUseCase) {
		uc.shortCodeLength = n
	}
}

// WithMaxAttempts sets how many generated short codes are tried before giving up.
func WithMaxAttempts(n int) Option {
	return func(uc *URLUseCase) {
		uc.maxAttempts = n
	}
}

// WithGrowEvery sets after how many collisions the generated length grows by one.
func WithGrowEvery(n int) Option {
	return func(uc *URLUseCase) {
		uc.growEvery = n
	}
}

// WithDefaultValidity sets the validity used when the caller supplies none.
func WithDefaultValidity(minutes int) Option {
	return func(uc *URLUseCase) {
		uc.defaultValidity = minutes
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(uc *URLUseCase) {
		uc.now = now
	}
}

// WithGenerator replaces the random short code generator.
func WithGenerator(generate func(length int) (string, error)) Option {
	return func(uc *URLUseCase) {
		uc.generate = generate
	}
}

type URLUseCase struct {
	urlRepo         urlRepository
	validate        *validator.Validate
	shortCodeLength int
	maxAttempts     int
	growEvery       int
	defaultValidity int
	now             func() time.Time
	generate        func(length int) (string, error)
}

func generateShortCode(length int) (string, error) {
	return gonanoid.Generate(Alphabet, length)
}

// New builds a URLUseCase. Options with out-of-range values fall back to the
// defaults.
func New(urlRepo urlRepository, opts ...Option) *URLUseCase {
	uc := &URLUseCase{
		urlRepo:         urlRepo,
		validate:        validator.New(),
		shortCodeLength: DefaultShortCodeLength,
		maxAttempts:     DefaultMaxAttempts,
		growEvery:       DefaultGrowEvery,
		defaultValidity: DefaultValidityMinutes,
		now:             time.Now,
		generate:        generateShortCode,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.shortCodeLength < MinShortCodeLength || uc.shortCodeLength > MaxShortCodeLength {
		uc.shortCodeLength = DefaultShortCodeLength
	}
	if uc.maxAttempts <= 0 {
		uc.maxAttempts = DefaultMaxAttempts
	}
	if uc.growEvery <= 0 {
		uc.growEvery = DefaultGrowEvery
	}
	if uc.defaultValidity < 1 || int64(uc.defaultValidity) > entity.MaxValidityMinutes {
		uc.defaultValidity = DefaultValidityMinutes
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.generate == nil {
		uc.generate = generateShortCode
	}

	return uc
}

// ShortenURL validates the input and stores a new URL under either the
// custom short code or a generated one.
func (uc *URLUseCase) ShortenURL(ctx context.Context, in entity.ShortenInput) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	if err := uc.validate.Var(in.OriginalURL, "required,http_url"); err != nil {
		return nil, entity.E(op, entity.KindInvalidURL, entity.ErrInvalidURL)
	}

	validity := uc.defaultValidity
	if in.ValidityMinutes != nil {
		validity = *in.ValidityMinutes
	}
	if validity < 1 || int64(validity) > entity.MaxValidityMinutes {
		return nil, entity.E(op, entity.KindInvalidValidity, entity.ErrInvalidValidity)
	}

	createdAt := uc.now()
	url := entity.URL{
		OriginalURL:     in.OriginalURL,
		ValidityMinutes: validity,
		CreatedAt:       createdAt,
		ExpiresAt:       createdAt.Add(time.Duration(validity) * time.Minute),
	}

	if in.ShortCode == "" {
		return uc.saveWithGeneratedShortCode(ctx, url)
	}

	if err := uc.validateShortCode(in.ShortCode); err != nil {
		return nil, entity.E(op, entity.KindInvalidShortCode, entity.ErrInvalidShortCode)
	}

	url.ShortCode = in.ShortCode
	url.IsCustom = true

	saved, err := uc.urlRepo.Save(ctx, &url)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	return saved, nil
}

func (uc *URLUseCase) validateShortCode(shortCode string) error {
	return uc.validate.Var(shortCode, fmt.Sprintf("alphanum,min=%d,max=%d", MinShortCodeLength, MaxShortCodeLength))
}

// saveWithGeneratedShortCode draws random short codes until one is stored.
// The insert itself is the uniqueness check, so concurrent callers can never
// end up with the same code.
func (uc *URLUseCase) saveWithGeneratedShortCode(ctx context.Context, url entity.URL) (*entity.URL, error) {
	const op = "usecase.URLUseCase.saveWithGeneratedShortCode"

	length := uc.shortCodeLength

	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		shortCode, err := uc.generate(length)
		if err != nil {
			return nil, entity.E(op, entity.KindShortCodeGenerationFailed,
				fmt.Errorf("failed to generate short code: %w", err))
		}

		url.ShortCode = shortCode

		saved, err := uc.urlRepo.Save(ctx, &url)
		if err == nil {
			return saved, nil
		}

		if !errors.Is(err, entity.ErrShortCodeExists) {
			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		if attempt%uc.growEvery == 0 && length < MaxShortCodeLength {
			length++
		}
	}

	return nil, entity.E(op, entity.KindShortCodeGenerationFailed, entity.ErrMaxRetriesExceeded)
}

// ResolveShortCode returns the URL stored under shortCode and counts the access.
// An expired URL is evicted and reported as expired.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	url, err := uc.urlRepo.RetrieveAndUpdateStats(ctx, shortCode, uc.now())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

// GetURLStats returns the URL stored under shortCode, expired or not,
// with IsExpired computed at call time.
func (uc *URLUseCase) GetURLStats(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.GetURLStats"

	url, err := uc.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	url.IsExpired = url.HasExpired(uc.now())

	return url, nil
}

func (uc *URLUseCase) DeactivateURL(ctx context.Context, shortCode string) error {
	const op = "usecase.URLUseCase.DeactivateURL"

	if err := uc.urlRepo.Remove(ctx, shortCode); err != nil {
		return fmt.Errorf("%s: failed to deactivate url: %w", op, err)
	}

	return nil
}

// CleanupExpiredURLs removes every expired URL and returns how many were removed.
func (uc *URLUseCase) CleanupExpiredURLs(ctx context.Context) (int, error) {
	const op = "usecase.URLUseCase.CleanupExpiredURLs"

	removed, err := uc.urlRepo.RemoveExpired(ctx, uc.now())
	if err != nil {
		return removed, fmt.Errorf("%s: failed to remove expired urls: %w", op, err)
	}

	return removed, nil
}
