package order

import (
	"time"

	"github.com/example/blackshot-store/internal/domain/cart"
	"github.com/example/blackshot-store/internal/domain/ident"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

// Event is published on the order feed after every successful write
type Event struct {
	EventID        string      `json:"event_id"`
	EventType      string      `json:"event_type"`
	OrderID        ident.ID    `json:"order_id"`
	UserID         ident.ID    `json:"user_id"`
	Status         Status      `json:"status"`
	PreviousStatus Status      `json:"previous_status,omitempty"`
	Total          float64     `json:"total"`
	CustomerName   string      `json:"customer_name"`
	CustomerEmail  string      `json:"customer_email"`
	Items          []cart.Item `json:"items,omitempty"`
	OccurredAt     time.Time   `json:"occurred_at"`
}
