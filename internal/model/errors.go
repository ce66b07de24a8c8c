package model

import "errors"

var (
	// Auth errors. Unknown identifier and wrong password map to the same
	// sentinel so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	// Session errors.
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionRevoked  = errors.New("session revoked")

	// Domain errors.
	ErrUserNotFound       = errors.New("user not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrAlreadyCheckedIn   = errors.New("already checked in today")
	ErrNotCheckedIn       = errors.New("no check-in recorded today")
	ErrAlreadyCheckedOut  = errors.New("already checked out today")
	ErrLeaveNotFound      = errors.New("leave request not found")
	ErrLeaveAlreadyDecided = errors.New("leave request already decided")

	ErrInvalidInput = errors.New("invalid input")
)
