package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies generation failures
type ErrorType string

const (
	ErrorTypeAuth    ErrorType = "auth_error"
	ErrorTypeBlocked ErrorType = "blocked"
	ErrorTypeStopped ErrorType = "stopped"
	ErrorTypeEmpty   ErrorType = "empty_response"
	ErrorTypeTimeout ErrorType = "timeout"
	ErrorTypeRate    ErrorType = "rate_limited"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error represents a structured generation error with classification.
type Error struct {
	Type     ErrorType
	Message  string
	Cause    error
	Provider string
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := []string{string(e.Type)}
	if e.Provider != "" {
		parts = append(parts, fmt.Sprintf("provider=%s", e.Provider))
	}
	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured generation error.
func NewError(errType ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// IsTimeout reports whether err is a deadline or timeout failure.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var llmErr *Error
	return errors.As(err, &llmErr) && llmErr.Type == ErrorTypeTimeout
}

// ClassifyError categorizes an error and returns a structured Error.
// Errors that are already classified are returned unchanged.
func ClassifyError(err error, provider string) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		if llmErr.Provider == "" {
			llmErr.Provider = provider
		}
		return llmErr
	}

	classified := classify(err)
	classified.Provider = provider
	return classified
}

func classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(ErrorTypeTimeout, "request timeout", err)
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "403") ||
		strings.Contains(lower, "unauthorized") || strings.Contains(lower, "api key"):
		return NewError(ErrorTypeAuth, "authentication failed", err)
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return NewError(ErrorTypeTimeout, "request timeout", err)
	case strings.Contains(errStr, "429") || strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "resource exhausted") || strings.Contains(lower, "resource_exhausted"):
		return NewError(ErrorTypeRate, "rate limited", err)
	case strings.Contains(lower, "blocked") || strings.Contains(lower, "safety"):
		return NewError(ErrorTypeBlocked, "content blocked", err)
	default:
		return NewError(ErrorTypeUnknown, "generation failed", err)
	}
}
