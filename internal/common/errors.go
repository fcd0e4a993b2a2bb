// Package common defines sentinel errors and small helpers shared by the
// AgriShield packages. Callers should match errors with errors.Is.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrUnsupportedScheme is returned when a DSN or artifact URI uses a
	// scheme nothing in the process knows how to open.
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)
