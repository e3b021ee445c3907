package model

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. A pending order is the user's cart.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

// BonusRate is the order amount that earns one bonus point at checkout.
const BonusRate = 90.0

// Order represents a cart (pending) or a placed order (completed).
type Order struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Status      string     `json:"order_status" db:"status"`
	Amount      float64    `json:"order_amount" db:"order_amount"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// OrderItem represents a line in an order with its frozen price.
type OrderItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderID     uuid.UUID `json:"-" db:"order_id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Price       float64   `json:"price" db:"price"`
}

// Subtotal returns the line's contribution to the order amount.
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// OrderTotal sums price snapshot times quantity over all lines.
func OrderTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// AddItemRequest represents the payload for adding a product to the cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
}

// UpdateItemRequest sets a new quantity on a cart line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// OrderResponse represents an order together with its lines.
type OrderResponse struct {
	Order
	Items []OrderItem `json:"items"`
}
