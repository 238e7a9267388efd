package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/example/blackshot-store/internal/domain/order"
	"github.com/example/blackshot-store/internal/email"
)

// Handler turns order events into customer emails
type Handler struct {
	sender email.Sender
	logger *slog.Logger
}

func NewHandler(sender email.Sender, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sender: sender,
		logger: logger.With("component", "notifier"),
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event order.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal order event: %w", err)
	}

	if event.CustomerEmail == "" {
		h.logger.Debug("order event without customer email, skipping",
			"event_type", event.EventType, "order_id", event.OrderID)
		return nil
	}

	var subject, body string
	switch event.EventType {
	case order.EventOrderPlaced:
		subject = email.OrderConfirmationSubject(event.OrderID.String())
		body = email.BuildOrderConfirmationBody(event.CustomerName, event.OrderID.String(), event.Total, emailItems(event))
	case order.EventOrderStatusChanged:
		subject = email.StatusUpdateSubject(event.OrderID.String(), string(event.Status))
		body = email.BuildStatusUpdateBody(event.CustomerName, event.OrderID.String(), string(event.PreviousStatus), string(event.Status))
	default:
		return nil
	}

	if err := h.sender.Send(event.CustomerEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send %s email for order %s: %w", event.EventType, event.OrderID, err)
	}

	h.logger.Info("email sent", "event_type", event.EventType, "order_id", event.OrderID, "to", event.CustomerEmail)
	return nil
}

func emailItems(event order.Event) []email.OrderItem {
	items := make([]email.OrderItem, len(event.Items))
	for i, item := range event.Items {
		name := item.Name
		if name == "" {
			name = item.ProductID.String()
		}
		items[i] = email.OrderItem{
			Name:     name,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}
	return items
}
