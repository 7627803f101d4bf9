package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when the original URL is not an absolute http or https URL.
	ErrInvalidURL = errors.New("invalid url format, must be a valid http or https url")
	// ErrInvalidValidity is returned when the validity is not a positive number of minutes.
	ErrInvalidValidity = errors.New("validity must be a positive integer representing minutes")
	// ErrInvalidShortCode is returned when a custom short code violates the shape rule.
	ErrInvalidShortCode = errors.New("short code must be 3-20 alphanumeric characters")
	// ErrShortCodeExists is returned when attempting to create a URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code already exists")
	// ErrMaxRetriesExceeded is returned when no unique short code could be generated.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
	// ErrURLNotFound is returned when a URL with the specified short code cannot be found.
	ErrURLNotFound = errors.New("url not found")
	// ErrURLExpired is returned when a URL with the specified short code has expired.
	ErrURLExpired = errors.New("url has expired")
)

// ErrorKind classifies registry errors so that callers can react without
// inspecting error messages.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindInvalidURL
	KindInvalidValidity
	KindInvalidShortCode
	KindShortCodeExists
	KindShortCodeGenerationFailed
	KindNotFound
	KindExpired
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnknown:
		return "Unknown"
	case KindInvalidURL:
		return "InvalidURL"
	case KindInvalidValidity:
		return "InvalidValidity"
	case KindInvalidShortCode:
		return "InvalidShortCode"
	case KindShortCodeExists:
		return "ShortCodeExists"
	case KindShortCodeGenerationFailed:
		return "ShortCodeGenerationFailed"
	case KindNotFound:
		return "NotFound"
	case KindExpired:
		return "Expired"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is an error tagged with the operation that produced it and its kind.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

// E builds a tagged error. It returns nil if err is nil.
func E(op string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}

	return &Error{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first tagged error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
