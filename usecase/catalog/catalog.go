// Package catalog runs the club counter: products on sale and purchases,
// including purchases taken on credit and settled later.
package catalog

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/pkg/logger"
	"github.com/fastygo/courts/repository"
	"github.com/fastygo/courts/usecase"
)

const (
	maxNameLength = 255
	maxPrice      = 10000
	maxStock      = 1000
	maxQuantity   = 1000
)

// Clock supplies the current calendar day as YYYY-MM-DD.
type Clock interface {
	Today() string
}

type ProductInput struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type PurchaseInput struct {
	CustomerID   *int64  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Product      string  `json:"product"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Paid         bool    `json:"paid"`
	Date         string  `json:"date"`
}

type UseCase struct {
	products  repository.ProductRepository
	purchases repository.PurchaseRepository
	customers repository.CustomerRepository
	clock     Clock
	logger    *zap.Logger
}

func New(
	products repository.ProductRepository,
	purchases repository.PurchaseRepository,
	customers repository.CustomerRepository,
	clock Clock,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		products:  products,
		purchases: purchases,
		customers: customers,
		clock:     clock,
		logger:    logger,
	}
}

func (uc *UseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	out, err := uc.products.List(ctx)
	return out, usecase.Classify("list products", err)
}

func (uc *UseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.Invalid("product id must be positive")
	}
	p, err := uc.products.GetByID(ctx, id)
	return p, usecase.Classify("load product", err)
}

func (uc *UseCase) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p, err := buildProduct(in)
	if err != nil {
		return nil, err
	}
	created, err := uc.products.Create(ctx, p)
	if err != nil {
		return nil, usecase.Classify("create product", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("product created",
		zap.Int64("product_id", created.ID),
		zap.String("name", created.Name))
	return created, nil
}

func (uc *UseCase) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.Invalid("product id must be positive")
	}
	p, err := buildProduct(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := uc.products.Update(ctx, p); err != nil {
		return nil, usecase.Classify("update product", err)
	}
	return p, nil
}

func (uc *UseCase) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.Invalid("product id must be positive")
	}
	name, err := uc.products.Delete(ctx, id)
	if err != nil {
		return usecase.Classify("delete product", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("product deleted", zap.Int64("product_id", id), zap.String("name", name))
	return nil
}

func (uc *UseCase) ListPurchases(ctx context.Context, filter repository.PurchaseFilter) ([]domain.Purchase, error) {
	if filter.CustomerID < 0 {
		return nil, domain.Invalid("customer id must be positive")
	}
	if filter.Offset < 0 {
		return nil, domain.Invalid("offset must not be negative")
	}
	filter.Limit = repository.PageLimit(filter.Limit)
	out, err := uc.purchases.List(ctx, filter)
	return out, usecase.Classify("list purchases", err)
}

// CreatePurchase records a sale. When only a customer id is given, the
// customer's full name is copied onto the purchase so it survives deletion.
func (uc *UseCase) CreatePurchase(ctx context.Context, in PurchaseInput) (*domain.Purchase, error) {
	p := &domain.Purchase{
		CustomerID:   in.CustomerID,
		CustomerName: strings.TrimSpace(in.CustomerName),
		Product:      strings.TrimSpace(in.Product),
		Quantity:     in.Quantity,
		UnitPrice:    in.UnitPrice,
		Paid:         in.Paid,
		Date:         strings.TrimSpace(in.Date),
	}
	if p.Date == "" && uc.clock != nil {
		p.Date = uc.clock.Today()
	}

	if p.CustomerID != nil && *p.CustomerID > 0 && p.CustomerName == "" && uc.customers != nil {
		c, err := uc.customers.GetByID(ctx, *p.CustomerID)
		if err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return nil, domain.ErrUnknownCustomer
			}
			return nil, usecase.Classify("load customer", err)
		}
		p.CustomerName = c.FullName()
	}

	if err := validatePurchase(p); err != nil {
		return nil, err
	}
	p.Total = domain.PurchaseTotal(p.Quantity, p.UnitPrice)

	created, err := uc.purchases.Create(ctx, p)
	if err != nil {
		return nil, usecase.Classify("create purchase", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("purchase recorded",
		zap.Int64("purchase_id", created.ID),
		zap.Float64("total", created.Total),
		zap.Bool("paid", created.Paid))
	return created, nil
}

// MarkPaid settles a purchase taken on credit.
func (uc *UseCase) MarkPaid(ctx context.Context, id int64) (*domain.Purchase, error) {
	if id <= 0 {
		return nil, domain.Invalid("purchase id must be positive")
	}
	p, err := uc.purchases.MarkPaid(ctx, id)
	if err != nil {
		return nil, usecase.Classify("mark purchase paid", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("purchase paid", zap.Int64("purchase_id", id))
	return p, nil
}

func buildProduct(in ProductInput) (*domain.Product, error) {
	p := &domain.Product{
		Name:  strings.TrimSpace(in.Name),
		Price: in.Price,
		Stock: in.Stock,
	}
	var problems []string
	switch n := utf8.RuneCountInString(p.Name); {
	case n == 0:
		problems = append(problems, "name is required")
	case n > maxNameLength:
		problems = append(problems, "name is too long")
	}
	if p.Price <= 0 || p.Price > maxPrice {
		problems = append(problems, "price must be greater than 0 and at most 10000")
	}
	if p.Stock < 0 || p.Stock > maxStock {
		problems = append(problems, "stock must be between 0 and 1000")
	}
	if len(problems) > 0 {
		return nil, domain.Invalid("%s", strings.Join(problems, "; "))
	}
	return p, nil
}

func validatePurchase(p *domain.Purchase) error {
	var problems []string
	if p.CustomerID != nil && *p.CustomerID <= 0 {
		problems = append(problems, "customer id must be positive")
	}
	switch n := utf8.RuneCountInString(p.CustomerName); {
	case n == 0:
		problems = append(problems, "customer name is required")
	case n > maxNameLength:
		problems = append(problems, "customer name is too long")
	}
	if p.Product == "" {
		problems = append(problems, "product is required")
	}
	if p.Quantity <= 0 || p.Quantity > maxQuantity {
		problems = append(problems, "quantity must be between 1 and 1000")
	}
	if p.UnitPrice <= 0 || p.UnitPrice > maxPrice {
		problems = append(problems, "unit price must be greater than 0 and at most 10000")
	}
	if parsed, err := time.Parse(domain.DateLayout, p.Date); err != nil || parsed.Format(domain.DateLayout) != p.Date {
		problems = append(problems, "date must be a calendar day formatted YYYY-MM-DD")
	}
	if len(problems) > 0 {
		return domain.Invalid("%s", strings.Join(problems, "; "))
	}
	return nil
}
