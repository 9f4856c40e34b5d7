package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/repository"
)

const reservationColumns = `
	r.id, r.resource_id, r.date, r.slot, r.label, r.customer_id, r.status,
	r.created_at, r.updated_at, COALESCE(c.name, '')
`

type reservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository returns a Postgres-backed ReservationRepository.
// Slot uniqueness is enforced by the partial unique index
// reservations_active_slot_uniq (see assets/migrations).
func NewReservationRepository(pool *pgxpool.Pool) repository.ReservationRepository {
	return &reservationRepository{pool: pool}
}

func (r *reservationRepository) FindActive(ctx context.Context, resourceID, date, slot string) (*domain.Reservation, error) {
	query := `
	SELECT ` + reservationColumns + `
	FROM reservations r
	LEFT JOIN customers c ON c.id = r.customer_id
	WHERE r.resource_id = $1 AND r.date = $2 AND r.slot = $3 AND r.status = 'active'
	`
	res, err := scanReservation(r.pool.QueryRow(ctx, query, resourceID, date, slot))
	if errors.Is(err, domain.ErrReservationNotFound) {
		return nil, nil
	}
	return res, err
}

// InsertActive performs the conditional write. A concurrent active row for the
// same triple makes ON CONFLICT skip the insert, which surfaces as
// domain.ErrSlotConflict.
func (r *reservationRepository) InsertActive(ctx context.Context, res *domain.Reservation) (int64, error) {
	if res == nil {
		return 0, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO reservations (resource_id, date, slot, label, customer_id, status)
	VALUES ($1, $2, $3, $4, $5, 'active')
	ON CONFLICT (resource_id, date, slot) WHERE status = 'active' DO NOTHING
	RETURNING id, status, created_at, updated_at
	`

	var status string
	err := r.pool.QueryRow(ctx, query,
		res.ResourceID,
		res.Date,
		res.Slot,
		res.Label,
		res.CustomerID,
	).Scan(&res.ID, &status, &res.CreatedAt, &res.UpdatedAt)
	switch {
	case err == nil:
		res.Status = domain.ReservationStatus(status)
		return res.ID, nil
	case errors.Is(err, pgx.ErrNoRows), isActiveSlotViolation(err):
		return 0, domain.ErrSlotConflict
	case isForeignKeyViolation(err):
		return 0, domain.ErrUnknownCustomer
	default:
		return 0, fmt.Errorf("insert reservation: %w", err)
	}
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (int64, error) {
	const query = `
	UPDATE reservations
	SET status = $2,
		updated_at = CASE WHEN status = $2 THEN updated_at ELSE NOW() END
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, string(status))
	if err != nil {
		if isActiveSlotViolation(err) {
			return 0, domain.ErrSlotConflict
		}
		return 0, fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, domain.ErrReservationNotFound
	}
	return tag.RowsAffected(), nil
}

func (r *reservationRepository) ListActive(ctx context.Context, date string) ([]domain.Reservation, error) {
	query := `
	SELECT ` + reservationColumns + `
	FROM reservations r
	LEFT JOIN customers c ON c.id = r.customer_id
	WHERE r.date = $1 AND r.status = 'active'
	`
	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	return collectReservations(rows)
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	query := `
	SELECT ` + reservationColumns + `
	FROM reservations r
	LEFT JOIN customers c ON c.id = r.customer_id
	WHERE r.id = $1
	`
	return scanReservation(r.pool.QueryRow(ctx, query, id))
}

func (r *reservationRepository) List(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	query := `
	SELECT ` + reservationColumns + `
	FROM reservations r
	LEFT JOIN customers c ON c.id = r.customer_id
	WHERE ($1 = '' OR r.date = $1)
	  AND ($2 = '' OR r.resource_id = $2)
	  AND ($3 = '' OR r.status = $3)
	  AND ($4::bigint = 0 OR r.customer_id = $4)
	ORDER BY r.date DESC, r.slot, r.resource_id
	LIMIT $5 OFFSET $6
	`
	rows, err := r.pool.Query(ctx, query,
		filter.Date,
		filter.ResourceID,
		string(filter.Status),
		filter.CustomerID,
		repository.PageLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return collectReservations(rows)
}

func (r *reservationRepository) UpdateLabel(ctx context.Context, id int64, label string) (*domain.Reservation, error) {
	query := `
	WITH r AS (
		UPDATE reservations
		SET label = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	)
	SELECT ` + reservationColumns + `
	FROM r
	LEFT JOIN customers c ON c.id = r.customer_id
	`
	return scanReservation(r.pool.QueryRow(ctx, query, id, label))
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

func scanReservation(row scanner) (*domain.Reservation, error) {
	var (
		res    domain.Reservation
		status string
	)

	if err := row.Scan(
		&res.ID,
		&res.ResourceID,
		&res.Date,
		&res.Slot,
		&res.Label,
		&res.CustomerID,
		&status,
		&res.CreatedAt,
		&res.UpdatedAt,
		&res.CustomerName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("scan reservation: %w", err)
	}

	res.Status = domain.ReservationStatus(status)
	return &res, nil
}
