// Package customer manages club members.
package customer

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/pkg/logger"
	"github.com/fastygo/courts/repository"
	"github.com/fastygo/courts/usecase"
)

const maxNameLength = 255

// phonePattern accepts Peruvian mobile numbers with an optional +51 prefix.
var phonePattern = regexp.MustCompile(`^(\+51\s?)?9\d{8}$`)

type Input struct {
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type UseCase struct {
	customers repository.CustomerRepository
	logger    *zap.Logger
}

func New(customers repository.CustomerRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{customers: customers, logger: logger}
}

func (uc *UseCase) List(ctx context.Context) ([]domain.Customer, error) {
	out, err := uc.customers.List(ctx)
	return out, usecase.Classify("list customers", err)
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	if id <= 0 {
		return nil, domain.Invalid("customer id must be positive")
	}
	c, err := uc.customers.GetByID(ctx, id)
	return c, usecase.Classify("load customer", err)
}

func (uc *UseCase) Create(ctx context.Context, in Input) (*domain.Customer, error) {
	c, err := build(in)
	if err != nil {
		return nil, err
	}
	created, err := uc.customers.Create(ctx, c)
	if err != nil {
		return nil, usecase.Classify("create customer", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("customer created", zap.Int64("customer_id", created.ID))
	return created, nil
}

func (uc *UseCase) Update(ctx context.Context, id int64, in Input) (*domain.Customer, error) {
	if id <= 0 {
		return nil, domain.Invalid("customer id must be positive")
	}
	c, err := build(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := uc.customers.Update(ctx, c); err != nil {
		return nil, usecase.Classify("update customer", err)
	}
	return c, nil
}

// Delete removes a customer. Their reservations and purchases survive with
// the reference cleared.
func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.Invalid("customer id must be positive")
	}
	if err := uc.customers.Delete(ctx, id); err != nil {
		return usecase.Classify("delete customer", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("customer deleted", zap.Int64("customer_id", id))
	return nil
}

func build(in Input) (*domain.Customer, error) {
	c := &domain.Customer{
		Name:     strings.TrimSpace(in.Name),
		LastName: strings.TrimSpace(in.LastName),
		Phone:    strings.TrimSpace(in.Phone),
		Email:    strings.TrimSpace(in.Email),
	}

	var problems []string
	switch n := utf8.RuneCountInString(c.Name); {
	case n == 0:
		problems = append(problems, "name is required")
	case n > maxNameLength:
		problems = append(problems, "name is too long")
	}
	if utf8.RuneCountInString(c.LastName) > maxNameLength {
		problems = append(problems, "last name is too long")
	}
	if c.Phone != "" && !phonePattern.MatchString(c.Phone) {
		problems = append(problems, "phone must be a mobile number like 987654321 or +51 987654321")
	}
	if c.Email != "" && !validEmail(c.Email) {
		problems = append(problems, "email is not valid")
	}
	if len(problems) > 0 {
		return nil, domain.Invalid("%s", strings.Join(problems, "; "))
	}
	return c, nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}
