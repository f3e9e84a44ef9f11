package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrUpstreamAuth is matched by errors.Is for 401/403 responses.
	// The operation cannot succeed until credentials are fixed.
	ErrUpstreamAuth = errors.New("upstream authentication failed")

	// ErrUpstreamUnavailable is matched by errors.Is for every other
	// non-success status and for transport failures.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassAuth represents 401/403 responses.
	ErrorClassAuth ErrorClass = "auth"

	// ErrorClassClient represents other 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx and unexpected non-2xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport failures.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError represents a failed VaultRE call.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Path       string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vaultre %s error (status %d) %s: %s: %v",
			e.ErrorClass, e.StatusCode, e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("vaultre %s error (status %d) %s: %s",
		e.ErrorClass, e.StatusCode, e.Path, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error class.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUpstreamAuth:
		return e.ErrorClass == ErrorClassAuth
	case ErrUpstreamUnavailable:
		return e.ErrorClass != ErrorClassAuth
	}
	return false
}

// IsAuthError reports whether err is an upstream authentication failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUpstreamAuth)
}

// classifyStatus maps a non-success status code to an error class and message.
func classifyStatus(status int) (ErrorClass, string) {
	switch {
	case status == http.StatusUnauthorized:
		return ErrorClassAuth, "invalid bearer token"
	case status == http.StatusForbidden:
		return ErrorClassAuth, "invalid API key"
	case status >= 400 && status < 500:
		return ErrorClassClient, http.StatusText(status)
	default:
		return ErrorClassServer, http.StatusText(status)
	}
}
