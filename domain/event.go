package domain

import "time"

const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationRenamed   = "reservation.renamed"
)

// ReservationEvent is published after a reservation changes.
type ReservationEvent struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ReservationID int64     `json:"reservation_id"`
	ResourceID    string    `json:"resource_id"`
	Date          string    `json:"date"`
	Slot          string    `json:"slot"`
	Label         string    `json:"label"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}
