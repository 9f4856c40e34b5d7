package repository

import (
	"context"

	"github.com/fastygo/courts/domain"
)

type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) (string, error)
}

type PurchaseFilter struct {
	CustomerID int64
	UnpaidOnly bool
	Limit      int
	Offset     int
}

type PurchaseRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Purchase, error)
	List(ctx context.Context, filter PurchaseFilter) ([]domain.Purchase, error)
	Create(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error)
	MarkPaid(ctx context.Context, id int64) (*domain.Purchase, error)
}
