package domain

import "time"

// Customer is a club member. Reservations and purchases refer to it weakly.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) FullName() string {
	if c == nil {
		return ""
	}
	if c.LastName == "" {
		return c.Name
	}
	return c.Name + " " + c.LastName
}
