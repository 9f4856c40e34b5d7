package domain

import (
	"math"
	"time"
)

// Product is an item sold at the club counter.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Purchase records a counter sale, possibly on credit.
type Purchase struct {
	ID           int64     `json:"id"`
	CustomerID   *int64    `json:"customer_id,omitempty"`
	CustomerName string    `json:"customer_name"`
	Product      string    `json:"product"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	Total        float64   `json:"total"`
	Paid         bool      `json:"paid"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}

// PurchaseTotal multiplies quantity by unit price, rounded to cents.
func PurchaseTotal(quantity int, unitPrice float64) float64 {
	return math.Round(float64(quantity)*unitPrice*100) / 100
}
