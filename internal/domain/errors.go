package domain

import "errors"

var (
	// ErrInvalidCredentials is returned by login for any username/password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized signals a missing, malformed, expired or badly signed token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRender wraps every failure raised while launching, navigating or printing.
	ErrRender = errors.New("render failed")
	// ErrRendererClosed is returned when an instance is used after Close.
	ErrRendererClosed = errors.New("renderer instance closed")
)
