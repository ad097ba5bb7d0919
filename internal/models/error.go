package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Auth flow errors
	ErrInvalidCode   = errors.New("invalid or expired code")
	ErrProtectedUser = errors.New("the master admin cannot be removed")
	ErrMailDelivery  = errors.New("email could not be sent")
)
