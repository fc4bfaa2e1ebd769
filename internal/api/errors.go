package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession means an authenticated endpoint was called without a
	// stored token. Callers route the user to /login instead of retrying.
	ErrNoSession = errors.New("no active session")

	// ErrUnauthorized means the backend rejected the stored token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBadAction rejects booking lifecycle actions other than
	// confirm/cancel before any request is made.
	ErrBadAction = errors.New("unsupported booking action")
)

// APIError is a non-2xx backend response.
type APIError struct {
	Status   int
	Endpoint string
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: http %d", e.Endpoint, e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}
