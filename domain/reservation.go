package domain

import "time"

// DateLayout is the calendar key format used for reservation dates.
const DateLayout = "2006-01-02"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusActive    ReservationStatus = "active"
	StatusCancelled ReservationStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	return s == StatusActive || s == StatusCancelled
}

// Reservation books one court for one slot on one calendar day.
type Reservation struct {
	ID         int64             `json:"id"`
	ResourceID string            `json:"resource_id"`
	Date       string            `json:"date"`
	Slot       string            `json:"slot"`
	Label      string            `json:"label"`
	CustomerID *int64            `json:"customer_id,omitempty"`
	Status     ReservationStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`

	// CustomerName is resolved from the weak customer reference on reads.
	CustomerName string `json:"customer_name,omitempty"`
}

func (r *Reservation) IsActive() bool {
	return r != nil && r.Status == StatusActive
}

// SlotCheck answers whether a single (court, date, slot) triple is free.
type SlotCheck struct {
	Date          string `json:"date"`
	ResourceID    string `json:"resource_id"`
	Slot          string `json:"slot"`
	Available     bool   `json:"available"`
	ReservationID int64  `json:"reservation_id,omitempty"`
	Label         string `json:"label,omitempty"`
}
