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

const purchaseColumns = `
	id, customer_id, customer_name, product, quantity, unit_price::float8,
	total::float8, paid, date, created_at
`

type purchaseRepository struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepository(pool *pgxpool.Pool) repository.PurchaseRepository {
	return &purchaseRepository{pool: pool}
}

func (r *purchaseRepository) GetByID(ctx context.Context, id int64) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`
	return scanPurchase(r.pool.QueryRow(ctx, query, id))
}

func (r *purchaseRepository) List(ctx context.Context, filter repository.PurchaseFilter) ([]domain.Purchase, error) {
	query := `
	SELECT ` + purchaseColumns + `
	FROM purchases
	WHERE ($1::bigint = 0 OR customer_id = $1)
	  AND (NOT $2::boolean OR paid = FALSE)
	ORDER BY date DESC, id DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.CustomerID, filter.UnpaidOnly, repository.PageLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

func (r *purchaseRepository) Create(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error) {
	if p == nil {
		return nil, domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO purchases (customer_id, customer_name, product, quantity, unit_price, total, paid, date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		p.CustomerID,
		p.CustomerName,
		p.Product,
		p.Quantity,
		p.UnitPrice,
		p.Total,
		p.Paid,
		p.Date,
	).Scan(&p.ID, &p.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrUnknownCustomer
		}
		return nil, fmt.Errorf("insert purchase: %w", err)
	}
	return p, nil
}

// MarkPaid flips paid to true exactly once. A second call reports
// domain.ErrPurchaseAlreadyPaid.
func (r *purchaseRepository) MarkPaid(ctx context.Context, id int64) (*domain.Purchase, error) {
	query := `
	UPDATE purchases SET paid = TRUE
	WHERE id = $1 AND paid = FALSE
	RETURNING ` + purchaseColumns
	p, err := scanPurchase(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, domain.ErrPurchaseNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrPurchaseAlreadyPaid
	}
	return p, err
}

func scanPurchase(row scanner) (*domain.Purchase, error) {
	var p domain.Purchase
	if err := row.Scan(
		&p.ID,
		&p.CustomerID,
		&p.CustomerName,
		&p.Product,
		&p.Quantity,
		&p.UnitPrice,
		&p.Total,
		&p.Paid,
		&p.Date,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("scan purchase: %w", err)
	}
	return &p, nil
}
