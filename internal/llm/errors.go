package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

type ErrorKind string

const (
	KindTransport     ErrorKind = "transport"
	KindHTTPStatus    ErrorKind = "http_status"
	KindMalformedBody ErrorKind = "malformed_body"
	KindMissingField  ErrorKind = "missing_field"
)

var (
	ErrTransport     = errors.New("generation transport failure")
	ErrHTTPStatus    = errors.New("generation endpoint returned non-200 status")
	ErrMalformedBody = errors.New("generation response is not valid json")
	ErrMissingField  = errors.New("generation response is missing the expected text")
)

var kindSentinels = map[ErrorKind]error{
	KindTransport:     ErrTransport,
	KindHTTPStatus:    ErrHTTPStatus,
	KindMalformedBody: ErrMalformedBody,
	KindMissingField:  ErrMissingField,
}

// GenerationError is the only error a Generator returns. Kind selects one of
// the four failure classes; errors.Is matches the class sentinels.
type GenerationError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Field      string
	Detail     string
	Err        error
}

func (e *GenerationError) Error() string {
	var builder strings.Builder
	builder.WriteString(e.Provider + ": " + kindSentinels[e.Kind].Error())
	if e.StatusCode != 0 {
		builder.WriteString(fmt.Sprintf(" (status %d)", e.StatusCode))
	}
	if e.Field != "" {
		builder.WriteString(" at " + e.Field)
	}
	if e.Detail != "" {
		builder.WriteString(": " + e.Detail)
	}
	if e.Err != nil {
		builder.WriteString(": " + e.Err.Error())
	}
	return builder.String()
}

func (e *GenerationError) Unwrap() []error {
	unwrapped := []error{kindSentinels[e.Kind]}
	if e.Err != nil {
		unwrapped = append(unwrapped, e.Err)
	}
	return unwrapped
}

// Timeout reports whether a transport failure was caused by the deadline.
func (e *GenerationError) Timeout() bool {
	if e.Kind != KindTransport || e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Message is the short human readable text surfaced to the keyboard user.
func (e *GenerationError) Message() string {
	switch e.Kind {
	case KindTransport:
		if e.Timeout() {
			return "The AI service took too long to answer. Try again."
		}
		return "Could not reach the AI service. Check your connection."
	case KindHTTPStatus:
		return fmt.Sprintf("The AI service returned an error (%d).", e.StatusCode)
	case KindMalformedBody:
		return "The AI service sent an unreadable response."
	case KindMissingField:
		return "The AI service response did not contain any text."
	default:
		return "The AI request failed."
	}
}

// SurfaceMessage converts any generation failure into the message shown to
// the user.
func SurfaceMessage(err error) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Message()
	}
	return "The AI request failed."
}

// ErrorCategory is the metrics label for err.
func ErrorCategory(err error) string {
	if err == nil {
		return "none"
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		if genErr.Timeout() {
			return "timeout"
		}
		return string(genErr.Kind)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "unknown"
}

func transportError(provider string, err error) *GenerationError {
	return &GenerationError{Provider: provider, Kind: KindTransport, Err: err}
}
