package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound reports that the referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrPermissionDenied reports that the entity exists but belongs to a
// different account. Kept distinct from ErrNotFound so callers can surface an
// authorization failure instead of a 404.
var ErrPermissionDenied = errors.New("permission denied")

// ConflictError is a uniqueness or interval-overlap violation. Field names the
// offending attribute; Message is safe to return to the caller verbatim.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func Conflict(field, message string) error {
	return &ConflictError{Field: field, Message: message}
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (the storage-level guard behind the application-level checks).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
