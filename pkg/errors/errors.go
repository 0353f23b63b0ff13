package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport failures (timeouts, refused connections)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeStatus represents non-2xx HTTP responses
	ErrorTypeStatus ErrorType = "status"
	// ErrorTypeParsing represents HTML/JSON parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeStorage represents persistence errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeNotify represents notification sink errors
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeAuth represents credential/token errors
	ErrorTypeAuth ErrorType = "auth"
)

// ScrapeError is the error type shared by sources, sinks and the store
type ScrapeError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if a later cycle may succeed where this one failed.
// Nothing is retried within the same cycle.
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeStatus:
		return true
	default:
		return false
	}
}

// Is reports whether err (or anything it wraps) is a ScrapeError of the given type
func Is(err error, errType ErrorType) bool {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type == errType
	}
	return false
}

// New creates a new ScrapeError
func New(errType ErrorType, source, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewStatus creates an error for an unexpected HTTP status code
func NewStatus(source string, code int) *ScrapeError {
	return New(ErrorTypeStatus, source, fmt.Sprintf("unexpected status code: %d", code), nil)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, retryAfter string) *ScrapeError {
	return New(ErrorTypeRateLimit, source, "rate limited; retry after "+retryAfter, nil)
}

// NewStorage creates a new storage error
func NewStorage(source, message string, err error) *ScrapeError {
	return New(ErrorTypeStorage, source, message, err)
}

// NewNotify creates a new notification error
func NewNotify(source, message string, err error) *ScrapeError {
	return New(ErrorTypeNotify, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewAuth creates a new authentication error
func NewAuth(source, message string, err error) *ScrapeError {
	return New(ErrorTypeAuth, source, message, err)
}
