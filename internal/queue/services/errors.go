package services

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidStatus     = errors.New("unknown token status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
)
