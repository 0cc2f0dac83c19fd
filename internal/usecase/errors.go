package usecase

import "errors"

// Workflow error taxonomy. The HTTP layer maps these onto transport
// status codes; nothing below it retries.
var (
	ErrNotFound     = errors.New("not_found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid_input")
)
