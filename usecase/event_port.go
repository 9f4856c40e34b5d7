package usecase

import (
	"context"

	"github.com/fastygo/courts/domain"
)

// EventSink records reservation changes for asynchronous publication so use
// cases stay broker-agnostic.
type EventSink interface {
	RecordReservation(ctx context.Context, name string, reservation *domain.Reservation) error
}
