package services

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProfileExists      = errors.New("profile already exists")
	ErrInvalidQRFormat    = errors.New("invalid QR code format")
	ErrInvalidQRType      = errors.New("invalid QR code type")
	ErrForbidden          = errors.New("forbidden")
	ErrExpired            = errors.New("QR code expired")
)
