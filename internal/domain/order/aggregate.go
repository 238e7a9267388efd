package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/blackshot-store/internal/domain/cart"
	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/infrastructure/store"
	"github.com/example/blackshot-store/internal/logging"
	"github.com/google/uuid"
)

const IDPrefix = "BKS"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCancelled Status = "cancelled"
	StatusReturned  Status = "returned"
	StatusFailed    Status = "failed"
	StatusDamaged   Status = "damaged"

	// StatusCustom selects the free-text label passed to UpdateStatus
	StatusCustom Status = "custom"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order must have at least one item")
	ErrInvalidQuantity   = errors.New("item quantity must be positive")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrShippingRequired  = errors.New("shipping name, phone and address are required")
)

// recognizedStatuses are the labels offered to admins besides free text
var recognizedStatuses = map[Status]bool{
	StatusApproved:  true,
	StatusCancelled: true,
	StatusReturned:  true,
	StatusFailed:    true,
	StatusDamaged:   true,
}

// IsRecognized reports whether s is one of the fixed statuses after pending
func (s Status) IsRecognized() bool {
	return recognizedStatuses[s]
}

type ShippingInfo struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

// Order is a placed order. Items are copies of the cart lines at checkout and never
// follow later product changes.
type Order struct {
	OrderID       ident.ID     `json:"orderId"`
	UserID        ident.ID     `json:"userId"`
	Items         []cart.Item  `json:"items"`
	ShippingInfo  ShippingInfo `json:"shippingInfo"`
	PaymentMethod string       `json:"paymentMethod"`
	UTRNumber     string       `json:"utrNumber"`
	Screenshot    string       `json:"screenshot"`
	Total         float64      `json:"total"`
	Status        Status       `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	ApprovedAt    *time.Time   `json:"approvedAt,omitempty"`
	CancelledAt   *time.Time   `json:"cancelledAt,omitempty"`
	UpdatedAt     *time.Time   `json:"updatedAt,omitempty"`
}

// Tracking is the part of an order shown to anyone holding its id
type Tracking struct {
	OrderID     ident.ID   `json:"orderId"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (o Order) Tracking() Tracking {
	return Tracking{
		OrderID:     o.OrderID,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		ApprovedAt:  o.ApprovedAt,
		CancelledAt: o.CancelledAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (o Order) IsGuest() bool { return o.UserID == ident.Guest }

// MatchesContact reports whether contact is the shipping email (any case) or
// the shipping phone.
func (o Order) MatchesContact(contact string) bool {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return false
	}
	info := o.ShippingInfo
	return strings.EqualFold(contact, strings.TrimSpace(info.Email)) || contact == strings.TrimSpace(info.Phone)
}

// PlaceOrder is the checkout form
type PlaceOrder struct {
	Items         []cart.Item  `json:"items"`
	ShippingInfo  ShippingInfo `json:"shippingInfo"`
	PaymentMethod string       `json:"paymentMethod"`
	UTRNumber     string       `json:"utrNumber"`
	Screenshot    string       `json:"screenshot"`
}

// Publisher receives order events. Implementations may be remote; their failures
// are logged and never undo the write.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// CartSource is the cart an order is checked out from
type CartSource interface {
	List(ctx context.Context) ([]cart.Item, error)
	Clear(ctx context.Context) error
}

type Service struct {
	orders    *store.Collection[Order]
	carts     CartSource
	publisher Publisher
	ids       *ident.Generator
	now       func() time.Time
}

// NewService creates the order service. carts and publisher may be nil.
func NewService(s *store.Store, carts CartSource, publisher Publisher, ids *ident.Generator) *Service {
	if ids == nil {
		ids = ident.Default
	}
	return &Service{
		orders:    store.NewCollection[Order](s, store.KeyOrders),
		carts:     carts,
		publisher: publisher,
		ids:       ids,
		now:       time.Now,
	}
}

// Place records a pending order for userID, or for the guest user when userID is
// empty. The items are copied and the total is computed from them.
func (s *Service) Place(ctx context.Context, userID ident.ID, req PlaceOrder) (Order, error) {
	if len(req.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return Order{}, ErrInvalidQuantity
		}
	}
	ship := req.ShippingInfo
	if strings.TrimSpace(ship.FullName) == "" || strings.TrimSpace(ship.Phone) == "" || strings.TrimSpace(ship.Address) == "" {
		return Order{}, ErrShippingRequired
	}
	if userID.IsZero() {
		userID = ident.Guest
	}

	items := cart.Snapshot(req.Items)
	o := Order{
		OrderID:       s.ids.New(IDPrefix),
		UserID:        userID,
		Items:         items,
		ShippingInfo:  ship,
		PaymentMethod: req.PaymentMethod,
		UTRNumber:     strings.TrimSpace(req.UTRNumber),
		Screenshot:    req.Screenshot,
		Total:         cart.Subtotal(items),
		Status:        StatusPending,
		CreatedAt:     s.timestamp(),
	}

	err := s.orders.Mutate(ctx, func(orders []Order) ([]Order, error) {
		return append(orders, o), nil
	})
	if err != nil {
		return Order{}, err
	}

	s.publish(ctx, EventOrderPlaced, o, "")
	return o, nil
}

// Checkout places an order from the current cart and then empties the cart
func (s *Service) Checkout(ctx context.Context, userID ident.ID, req PlaceOrder) (Order, error) {
	if s.carts == nil {
		return Order{}, errors.New("order: checkout needs a cart")
	}
	items, err := s.carts.List(ctx)
	if err != nil {
		return Order{}, err
	}
	req.Items = items

	o, err := s.Place(ctx, userID, req)
	if err != nil {
		return Order{}, err
	}
	if err := s.carts.Clear(ctx); err != nil {
		return o, fmt.Errorf("order %s placed but cart not cleared: %w", o.OrderID, err)
	}
	return o, nil
}

// Approve moves a pending order to approved
func (s *Service) Approve(ctx context.Context, id ident.ID) (Order, error) {
	return s.transition(ctx, id, func(o *Order, now time.Time) error {
		if o.Status != StatusPending {
			return fmt.Errorf("%w: order %s is %s", ErrInvalidTransition, o.OrderID, o.Status)
		}
		o.Status = StatusApproved
		o.ApprovedAt = &now
		return nil
	})
}

// Cancel moves a pending order to cancelled
func (s *Service) Cancel(ctx context.Context, id ident.ID) (Order, error) {
	return s.transition(ctx, id, func(o *Order, now time.Time) error {
		if o.Status != StatusPending {
			return fmt.Errorf("%w: order %s is %s", ErrInvalidTransition, o.OrderID, o.Status)
		}
		o.Status = StatusCancelled
		o.CancelledAt = &now
		return nil
	})
}

// UpdateStatus sets a recognized status, or with StatusCustom the given label.
// Orders never go back to pending.
func (s *Service) UpdateStatus(ctx context.Context, id ident.ID, status Status, custom string) (Order, error) {
	target := Status(strings.ToLower(strings.TrimSpace(string(status))))
	if target == StatusCustom {
		target = Status(strings.ToLower(strings.TrimSpace(custom)))
	}
	switch {
	case target == "" || target == StatusCustom:
		return Order{}, ErrInvalidStatus
	case target == StatusPending:
		return Order{}, fmt.Errorf("%w: orders cannot return to pending", ErrInvalidTransition)
	}

	return s.transition(ctx, id, func(o *Order, now time.Time) error {
		o.Status = target
		o.UpdatedAt = &now
		return nil
	})
}

// ParseStatus turns admin input into the arguments of UpdateStatus: recognized
// statuses map to themselves and anything else becomes a custom label.
func ParseStatus(input string) (Status, string) {
	s := Status(strings.ToLower(strings.TrimSpace(input)))
	if s.IsRecognized() {
		return s, ""
	}
	return StatusCustom, string(s)
}

func (s *Service) transition(ctx context.Context, id ident.ID, apply func(o *Order, now time.Time) error) (Order, error) {
	var (
		updated  Order
		previous Status
	)
	err := s.orders.Mutate(ctx, func(orders []Order) ([]Order, error) {
		for i := range orders {
			if orders[i].OrderID != id {
				continue
			}
			previous = orders[i].Status
			if err := apply(&orders[i], s.timestamp()); err != nil {
				return nil, err
			}
			updated = orders[i]
			return orders, nil
		}
		return nil, ErrOrderNotFound
	})
	if err != nil {
		return Order{}, err
	}

	s.publish(ctx, EventOrderStatusChanged, updated, previous)
	return updated, nil
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.Load(ctx)
}

func (s *Service) Get(ctx context.Context, id ident.ID) (Order, bool, error) {
	orders, err := s.orders.Load(ctx)
	if err != nil {
		return Order{}, false, err
	}
	for _, o := range orders {
		if o.OrderID == id {
			return o, true, nil
		}
	}
	return Order{}, false, nil
}

// ListByUser returns a customer's orders, newest first
func (s *Service) ListByUser(ctx context.Context, userID ident.ID) ([]Order, error) {
	return s.filter(ctx, true, func(o Order) bool { return o.UserID == userID })
}

// ListByStatus returns the orders with exactly the given status
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	return s.filter(ctx, false, func(o Order) bool { return o.Status == status })
}

// History returns the orders that have left pending, newest first. An empty status
// or "all" returns every such order.
func (s *Service) History(ctx context.Context, status Status) ([]Order, error) {
	all := status == "" || status == "all"
	return s.filter(ctx, true, func(o Order) bool {
		return o.Status != StatusPending && (all || o.Status == status)
	})
}

// PendingCount counts pending orders at read time
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	pending, err := s.ListByStatus(ctx, StatusPending)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

func (s *Service) filter(ctx context.Context, newestFirst bool, keep func(Order) bool) ([]Order, error) {
	orders, err := s.orders.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Order, 0)
	for _, o := range orders {
		if keep(o) {
			matched = append(matched, o)
		}
	}
	if newestFirst {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}
	return matched, nil
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) publish(ctx context.Context, eventType string, o Order, previous Status) {
	if s.publisher == nil {
		return
	}
	event := Event{
		EventID:        uuid.New().String(),
		EventType:      eventType,
		OrderID:        o.OrderID,
		UserID:         o.UserID,
		Status:         o.Status,
		PreviousStatus: previous,
		Total:          o.Total,
		CustomerName:   o.ShippingInfo.FullName,
		CustomerEmail:  o.ShippingInfo.Email,
		OccurredAt:     s.timestamp(),
	}
	if eventType == EventOrderPlaced {
		event.Items = o.Items
	}
	if err := s.publisher.Publish(ctx, o.OrderID.String(), event); err != nil {
		logging.FromContext(ctx).Warn("order event not published",
			"order_id", o.OrderID, "event_type", eventType, "error", err)
	}
}
