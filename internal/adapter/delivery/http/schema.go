package http

import (
	"math"
	"net/http"
	"time"

	"github.com/vadimbarashkov/expiring-url-shortener/internal/entity"
	"github.com/vadimbarashkov/expiring-url-shortener/pkg/response"
)

const (
	codeMissingURL                = "MISSING_URL"
	codeInvalidURL                = "INVALID_URL"
	codeInvalidValidity           = "INVALID_VALIDITY"
	codeInvalidShortCode          = "INVALID_SHORTCODE"
	codeShortCodeExists           = "SHORTCODE_EXISTS"
	codeShortCodeGenerationFailed = "SHORTCODE_GENERATION_FAILED"
	codeMissingShortCode          = "MISSING_SHORTCODE"
	codeShortCodeNotFound         = "SHORTCODE_NOT_FOUND"
	codeShortCodeExpired          = "SHORTCODE_EXPIRED"
)

// urlRequest represents the structure for a request to shorten a URL.
// Validity is left undecoded so that non-integer values can be reported as
// an invalid validity rather than a malformed body.
type urlRequest struct {
	URL       string `json:"url" validate:"required"`
	ShortCode string `json:"shortcode"`
	Validity  any    `json:"validity"`
}

// toShortenInput converts the request into registry input. It reports false
// when validity is present but is not an integer or too large to convert.
func (req urlRequest) toShortenInput() (entity.ShortenInput, bool) {
	in := entity.ShortenInput{
		OriginalURL: req.URL,
		ShortCode:   req.ShortCode,
	}

	if req.Validity == nil {
		return in, true
	}

	f, ok := req.Validity.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > float64(entity.MaxValidityMinutes) {
		return in, false
	}

	validity := int(f)
	in.ValidityMinutes = &validity

	return in, true
}

// shortenResponse is the public view of a newly created URL.
type shortenResponse struct {
	ShortCode       string    `json:"shortcode"`
	ShortURL        string    `json:"shortUrl"`
	OriginalURL     string    `json:"originalUrl"`
	ExpiresAt       time.Time `json:"expiresAt"`
	ValidityMinutes int       `json:"validityMinutes"`
}

func toShortenResponse(url *entity.URL, baseURL string) shortenResponse {
	return shortenResponse{
		ShortCode:       url.ShortCode,
		ShortURL:        baseURL + "/" + url.ShortCode,
		OriginalURL:     url.OriginalURL,
		ExpiresAt:       url.ExpiresAt,
		ValidityMinutes: url.ValidityMinutes,
	}
}

type urlStatsResponse struct {
	ShortCode   string    `json:"shortcode"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	AccessCount int64     `json:"accessCount"`
	IsExpired   bool      `json:"isExpired"`
	IsCustom    bool      `json:"isCustom"`
}

func toURLStatsResponse(url *entity.URL) urlStatsResponse {
	return urlStatsResponse{
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		CreatedAt:   url.CreatedAt,
		ExpiresAt:   url.ExpiresAt,
		AccessCount: url.AccessCount,
		IsExpired:   url.IsExpired,
		IsCustom:    url.IsCustom,
	}
}

var (
	invalidValidityResponse = response.ErrorResponse(
		http.StatusBadRequest,
		codeInvalidValidity,
		"Validity must be a positive integer number of minutes.",
	)

	missingShortCodeResponse = response.ErrorResponse(
		http.StatusBadRequest,
		codeMissingShortCode,
		"Short code is required.",
	)
)

// errorResponseFor maps a registry error to the HTTP status and body sent to
// the client. Unknown errors never expose their detail.
func errorResponseFor(err error) (int, response.Response) {
	var (
		status int
		code   string
		msg    string
	)

	switch entity.KindOf(err) {
	case entity.KindInvalidURL:
		status, code, msg = http.StatusBadRequest, codeInvalidURL, "URL must be an absolute http or https URL."
	case entity.KindInvalidValidity:
		return http.StatusBadRequest, invalidValidityResponse
	case entity.KindInvalidShortCode:
		status, code, msg = http.StatusBadRequest, codeInvalidShortCode, "Short code must be 3-20 alphanumeric characters."
	case entity.KindShortCodeExists:
		status, code, msg = http.StatusConflict, codeShortCodeExists, "Short code already exists."
	case entity.KindShortCodeGenerationFailed:
		status, code, msg = http.StatusInternalServerError, codeShortCodeGenerationFailed, "Failed to generate a unique short code. Please try again later."
	case entity.KindNotFound:
		status, code, msg = http.StatusNotFound, codeShortCodeNotFound, "Short code not found."
	case entity.KindExpired:
		status, code, msg = http.StatusGone, codeShortCodeExpired, "Short code has expired."
	default:
		return http.StatusInternalServerError, response.ServerErrorResponse
	}

	return status, response.ErrorResponse(status, code, msg)
}
