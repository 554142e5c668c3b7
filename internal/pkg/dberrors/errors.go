package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn" // Import pgconn for PgError
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	// Check if the error is a PgError, if the code is unique_violation (23505),
	// and if the constraint name matches the provided one.
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraintName
}

// IsForeignKeyViolation reports whether err is a foreign_key_violation (23503),
// i.e. a referenced row no longer exists.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
