package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pricepulse/storefront/internal/session"
)

// ErrUnauthenticated indicates the request was rejected for authentication
// reasons after the session transport had already spent its one refresh
// attempt, or the session has been terminated outright.
var ErrUnauthenticated = errors.New("unauthenticated")

// APIError is a non-2xx response from the backend, carried to the caller
// verbatim. The server's message is surfaced untouched so business errors
// like "email already registered" read the same as they do on the wire.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: request failed (status %d)", e.Status)
}

// Unwrap maps post-replay authentication failures onto ErrUnauthenticated so
// callers can branch with errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	return nil
}

// IsConnectivity reports whether err is a transport-level fault with no
// session impact.
func IsConnectivity(err error) bool {
	var ce *session.ConnectivityError
	return errors.As(err, &ce)
}

// IsSessionTerminated reports whether err ended the session. The credential
// store is already cleared when this returns true.
func IsSessionTerminated(err error) bool {
	var re *session.RefreshError
	return errors.As(err, &re)
}

// errorBody is the error envelope used across the commerce API.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
