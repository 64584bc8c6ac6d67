package service

import "errors"

// Sentinel errors for the service layer. The HTTP layer maps each of
// these to a status code; store errors are translated into this
// taxonomy at the service boundary and never leak upward raw.
var (
	ErrNotFound        = errors.New("file not found")
	ErrConflict        = errors.New("conflicting file state")
	ErrQuotaExceeded   = errors.New("storage quota exceeded")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
)
