package transport

type ReservationRequest struct {
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Slot       string `json:"slot"`
	Label      string `json:"label"`
	CustomerID *int64 `json:"customer_id"`
}

type RenameRequest struct {
	Label string `json:"label"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type CustomerRequest struct {
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type ProductRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type PurchaseRequest struct {
	CustomerID   *int64  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Product      string  `json:"product"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Paid         bool    `json:"paid"`
	Date         string  `json:"date"`
}
