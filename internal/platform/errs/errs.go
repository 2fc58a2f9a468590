package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// InvalidInput indicates the request was malformed (HTTP 400).
	InvalidInput
	// Unreachable indicates an upstream service or page could not be reached (HTTP 502).
	Unreachable
	// Timeout indicates an upstream call took too long (HTTP 504).
	Timeout
	// ParsingFailed indicates an upstream response could not be parsed (HTTP 500).
	ParsingFailed
	// Unauthorized indicates missing or rejected credentials (HTTP 401).
	Unauthorized
	// RateLimited indicates an upstream quota was exhausted (HTTP 429).
	RateLimited
	// NoContent indicates a page yielded no usable text.
	NoContent
)

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the upstream service
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Message returns the user-facing message of err: the AppError message when
// err wraps one, err.Error() otherwise.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// KindOf reports the Kind of err, or Unknown when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}
