package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"

	activeSlotConstraint = "reservations_active_slot_uniq"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

func pgCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func isActiveSlotViolation(err error) bool {
	code, constraint := pgCode(err)
	return code == sqlStateUniqueViolation && (constraint == "" || constraint == activeSlotConstraint)
}

func isForeignKeyViolation(err error) bool {
	code, _ := pgCode(err)
	return code == sqlStateForeignKeyViolation
}
