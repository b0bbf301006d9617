package dbx

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ValidUUID reports whether s parses as a UUID. Repositories use it to turn
// malformed IDs into "not found" before they reach the database.
func ValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
