package entity

import "errors"

// Store error taxonomy. Repositories translate driver failures into
// these, so callers can branch with errors.Is without knowing Postgres.
var (
	ErrDuplicateToken       = errors.New("session token already exists")
	ErrSessionNotFound      = errors.New("session not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrConstraintViolation  = errors.New("constraint violation")
	ErrStoreUnavailable     = errors.New("store unavailable")
)
