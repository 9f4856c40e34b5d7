package repository

import (
	"context"

	"github.com/fastygo/courts/domain"
)

type ReservationFilter struct {
	Date       string
	ResourceID string
	Status     domain.ReservationStatus
	CustomerID int64
	Limit      int
	Offset     int
}

// ReservationRepository is the storage collaborator of the availability engine.
// InsertActive must reject a second active row for the same
// (resource, date, slot) with domain.ErrSlotConflict at the point of insertion.
type ReservationRepository interface {
	FindActive(ctx context.Context, resourceID, date, slot string) (*domain.Reservation, error)
	InsertActive(ctx context.Context, reservation *domain.Reservation) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (int64, error)
	ListActive(ctx context.Context, date string) ([]domain.Reservation, error)

	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error)
	UpdateLabel(ctx context.Context, id int64, label string) (*domain.Reservation, error)
}
