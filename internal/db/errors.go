package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a report does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a report id is stored twice.
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrInvalidData is returned for rows that violate a check constraint or hold
	// malformed JSON.
	ErrInvalidData = errors.New("invalid data")
)

// PostgreSQL error classes mapped onto sentinel errors.
var sqlStateErrors = map[string]error{
	"23505": ErrDuplicateKey, // unique_violation
	"23514": ErrInvalidData,  // check_violation
	"23502": ErrInvalidData,  // not_null_violation
	"22P02": ErrInvalidData,  // invalid_text_representation
}

// WrapError prefixes err with operation and maps pgx and PostgreSQL errors onto the
// sentinels above so callers can use errors.Is.
func WrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if sentinel, ok := sqlStateErrors[pgErr.Code]; ok {
			return fmt.Errorf("%s: %w: %s (constraint: %s)", operation, sentinel, pgErr.Message, pgErr.ConstraintName)
		}
		return fmt.Errorf("%s: database error [%s]: %w", operation, pgErr.Code, err)
	}

	return fmt.Errorf("%s: %w", operation, err)
}

// IsNotFound returns true if the error is an ErrNotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateKey returns true if the error is an ErrDuplicateKey error.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsInvalidData returns true if the error is an ErrInvalidData error.
func IsInvalidData(err error) bool {
	return errors.Is(err, ErrInvalidData)
}
