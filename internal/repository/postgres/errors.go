package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error class codes the repositories translate into domain errors:
// duplicate bids and double-booked emails surface as 23505, references to
// deleted members as 23503.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError reports a unique constraint violation.
func IsPgDuplicateError(err error) bool {
	return pgErrCode(err) == pgUniqueViolation
}

// IsPgForeignKeyError reports a foreign key violation.
func IsPgForeignKeyError(err error) bool {
	return pgErrCode(err) == pgForeignKeyViolation
}

// IsPgNoRowsError reports that a query matched nothing.
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
