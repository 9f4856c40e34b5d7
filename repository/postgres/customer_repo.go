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

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates a Postgres-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool) repository.CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	const query = `
		SELECT id, name, last_name, phone, email, created_at, updated_at
		FROM customers
		WHERE id = $1
	`
	return scanCustomer(r.pool.QueryRow(ctx, query, id))
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	const query = `
		SELECT id, name, last_name, phone, email, created_at, updated_at
		FROM customers
		ORDER BY name, last_name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	if c == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO customers (name, last_name, phone, email)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query, c.Name, c.LastName, c.Phone, c.Email).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	if c == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE customers
	SET name = $2,
		last_name = $3,
		phone = $4,
		email = $5,
		updated_at = NOW()
	WHERE id = $1
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query, c.ID, c.Name, c.LastName, c.Phone, c.Email).
		Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCustomerNotFound
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Delete removes the customer. Reservations and purchases keep their rows;
// the foreign keys null the reference out.
func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM customers WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func scanCustomer(row scanner) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.LastName, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return &c, nil
}
