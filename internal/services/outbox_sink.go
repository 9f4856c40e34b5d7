package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/internal/infrastructure/outbox"
	"github.com/fastygo/courts/usecase"
)

// OutboxSink turns reservation changes into outbox entries.
type OutboxSink struct {
	store *outbox.Store
	now   func() time.Time
}

func NewOutboxSink(store *outbox.Store) *OutboxSink {
	return &OutboxSink{store: store, now: time.Now}
}

func (s *OutboxSink) RecordReservation(_ context.Context, name string, res *domain.Reservation) error {
	if s == nil || s.store == nil || res == nil {
		return domain.ErrInvalidPayload
	}
	event := domain.ReservationEvent{
		ID:            uuid.NewString(),
		Name:          name,
		ReservationID: res.ID,
		ResourceID:    res.ResourceID,
		Date:          res.Date,
		Slot:          res.Slot,
		Label:         res.Label,
		Status:        string(res.Status),
		OccurredAt:    s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.store.Append(outbox.Entry{
		ID:         event.ID,
		RoutingKey: name,
		Payload:    payload,
		EnqueuedAt: event.OccurredAt,
	})
}

var _ usecase.EventSink = (*OutboxSink)(nil)
