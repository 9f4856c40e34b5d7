package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsActiveSlotViolation(t *testing.T) {
	slot := &pgconn.PgError{Code: "23505", ConstraintName: "reservations_active_slot_uniq"}
	other := &pgconn.PgError{Code: "23505", ConstraintName: "customers_email_key"}

	assert.True(t, isActiveSlotViolation(fmt.Errorf("insert: %w", slot)))
	assert.False(t, isActiveSlotViolation(other))
	assert.False(t, isActiveSlotViolation(errors.New("23505")))
	assert.False(t, isActiveSlotViolation(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, isForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
}
