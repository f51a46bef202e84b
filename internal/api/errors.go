package api

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a violated precondition, e.g. logging in before an app was chosen.
// It is not retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// SelectionNotFoundError is returned when a wizard step is given a name that is not among
// the options last offered for that step. The caller should re-prompt.
type SelectionNotFoundError struct {
	Step      string
	Selection string
	Available []string
}

func (e *SelectionNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("%s: %q not found (no options offered)", e.Step, e.Selection)
	}
	return fmt.Sprintf("%s: %q not found; choose one of: %s", e.Step, e.Selection, strings.Join(e.Available, ", "))
}

// ParseError reports an option list whose markup does not have the expected shape.
type ParseError struct {
	Endpoint   string
	StatusCode int
	Reason     string
	Wrapped    error
}

func (e *ParseError) Error() string {
	msg := "parsing options"
	if e.Endpoint != "" {
		msg += " from " + e.Endpoint
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	msg += ": " + e.Reason
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// PayloadError reports a pickup payload that is not a usable property list.
type PayloadError struct {
	Endpoint   string
	StatusCode int
	Reason     string
	Wrapped    error
}

func (e *PayloadError) Error() string {
	msg := "decoding pickup payload"
	if e.Endpoint != "" {
		msg += " from " + e.Endpoint
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	msg += ": " + e.Reason
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *PayloadError) Unwrap() error {
	return e.Wrapped
}

// APIError represents a non-200 answer to an assistant request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Endpoint   string `json:"endpoint"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d on %s", e.StatusCode, e.Endpoint)
}

// IsRetryable returns true for 5xx and 429 status codes.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
