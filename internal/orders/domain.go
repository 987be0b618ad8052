// Package orders implements checkout and order management.
package orders

import (
	"errors"
	"math"
	"time"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// transitions lists the allowed next states. Delivered and cancelled are
// terminal; an order never resurrects into pending.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusDelivered, StatusCancelled},
}

// CanTransitionTo reports whether the status may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// VATRate is the Norwegian standard VAT applied at checkout.
const VATRate = 0.25

// TotalWithVAT computes the order total from the subtotal, rounded to two
// decimals. The total is always derived here, never taken from a client.
func TotalWithVAT(subtotal float64) float64 {
	return math.Round(subtotal*(1+VATRate)*100) / 100
}

var (
	// ErrEmptyCart rejects checkout of a cart with no lines.
	ErrEmptyCart = errors.New("orders: cart is empty")
	// ErrDuplicateSubmission rejects a replayed idempotency key.
	ErrDuplicateSubmission = errors.New("orders: duplicate submission")
	// ErrInvalidTransition rejects a disallowed status change.
	ErrInvalidTransition = errors.New("orders: invalid status transition")
)

// Order is a placed order. UserID is nil for guest checkout.
type Order struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id"`
	Status     Status    `json:"status"`
	Subtotal   float64   `json:"subtotal"`
	Total      float64   `json:"total"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	PostalCode string    `json:"postal_code"`
	City       string    `json:"city"`
	Items      []Item    `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Item is one order line. Name, Price and Stock are captured at checkout
// time; CurrentName and CurrentPrice are joined live from the products
// table for admin display and may diverge from the captured values.
type Item struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Quantity  int     `json:"quantity"`

	CurrentName  string   `json:"current_name,omitempty"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
}
