package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotTakenCarriesLabel(t *testing.T) {
	err := fmt.Errorf("reserve: %w", NewSlotTakenError("1", "2025-06-01", "10:00-11:00", "Ana"))

	assert.True(t, IsDomainError(err, ErrCodeSlotTaken))
	label, ok := ConflictingLabel(err)
	assert.True(t, ok)
	assert.Equal(t, "Ana", label)
	assert.Contains(t, err.Error(), "already booked by Ana")

	_, ok = ConflictingLabel(ErrReservationNotFound)
	assert.False(t, ok)
}

func TestUnavailableWrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := Unavailable("insert reservation failed", cause)

	assert.True(t, IsDomainError(err, ErrCodeUnavailable))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "insert reservation failed: dial tcp: i/o timeout", err.Error())
}

func TestReservationStatusValid(t *testing.T) {
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, ReservationStatus("pending").Valid())
}
