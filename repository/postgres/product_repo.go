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

type productRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) repository.ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	const query = `
	SELECT id, name, price::float8, stock, created_at, updated_at
	FROM products
	WHERE id = $1
	`
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	const query = `
	SELECT id, name, price::float8, stock, created_at, updated_at
	FROM products
	ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if p == nil {
		return nil, domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO products (name, price, stock)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query, p.Name, p.Price, p.Stock).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	if p == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE products
	SET name = $2, price = $3, stock = $4, updated_at = NOW()
	WHERE id = $1
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query, p.ID, p.Name, p.Price, p.Stock).
		Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete removes the product and returns its name for the confirmation message.
func (r *productRepository) Delete(ctx context.Context, id int64) (string, error) {
	const query = `DELETE FROM products WHERE id = $1 RETURNING name`
	var name string
	if err := r.pool.QueryRow(ctx, query, id).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrProductNotFound
		}
		return "", fmt.Errorf("delete product: %w", err)
	}
	return name, nil
}

func scanProduct(row scanner) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}
