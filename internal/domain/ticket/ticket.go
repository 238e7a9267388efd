package ticket

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/infrastructure/store"
)

const IDPrefix = "TKT"

type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrSubjectRequired = errors.New("subject is required")
	ErrMessageRequired = errors.New("message is required")
)

// Ticket is a support request. The submitter fields are copied at creation time.
type Ticket struct {
	ID        ident.ID  `json:"id"`
	UserID    ident.ID  `json:"userId"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Submitter identifies a signed-in customer
type Submitter struct {
	ID    ident.ID
	Name  string
	Email string
}

// Request is the contact form. Name and Email are used only for guests.
type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type Service struct {
	tickets *store.Collection[Ticket]
	ids     *ident.Generator
	now     func() time.Time
}

func NewService(s *store.Store, ids *ident.Generator) *Service {
	if ids == nil {
		ids = ident.Default
	}
	return &Service{
		tickets: store.NewCollection[Ticket](s, store.KeyTickets),
		ids:     ids,
		now:     time.Now,
	}
}

// Open records a new ticket. With a nil submitter the ticket belongs to the guest
// user and carries the name and email from the form.
func (s *Service) Open(ctx context.Context, by *Submitter, req Request) (Ticket, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return Ticket{}, ErrSubjectRequired
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Ticket{}, ErrMessageRequired
	}

	t := Ticket{
		ID:        s.ids.New(IDPrefix),
		UserID:    ident.Guest,
		UserName:  strings.TrimSpace(req.Name),
		UserEmail: strings.TrimSpace(req.Email),
		Subject:   subject,
		Message:   message,
		Status:    StatusOpen,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if by != nil {
		t.UserID = by.ID
		t.UserName = by.Name
		t.UserEmail = by.Email
	}

	err := s.tickets.Mutate(ctx, func(tickets []Ticket) ([]Ticket, error) {
		return append(tickets, t), nil
	})
	if err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// List returns all tickets, newest first
func (s *Service) List(ctx context.Context) ([]Ticket, error) {
	tickets, err := s.tickets.Load(ctx)
	if err != nil {
		return nil, err
	}
	newestFirst(tickets)
	return tickets, nil
}

// ListByUser returns the tickets of one user, newest first
func (s *Service) ListByUser(ctx context.Context, userID ident.ID) ([]Ticket, error) {
	tickets, err := s.tickets.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Ticket, 0)
	for _, t := range tickets {
		if t.UserID == userID {
			matched = append(matched, t)
		}
	}
	newestFirst(matched)
	return matched, nil
}

// Resolve marks a ticket resolved
func (s *Service) Resolve(ctx context.Context, id ident.ID) error {
	return s.tickets.Mutate(ctx, func(tickets []Ticket) ([]Ticket, error) {
		for i := range tickets {
			if tickets[i].ID == id {
				tickets[i].Status = StatusResolved
				return tickets, nil
			}
		}
		return nil, ErrTicketNotFound
	})
}

// OpenCount returns the number of unresolved tickets
func (s *Service) OpenCount(ctx context.Context) (int, error) {
	tickets, err := s.tickets.Load(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range tickets {
		if t.Status == StatusOpen {
			n++
		}
	}
	return n, nil
}

func newestFirst(tickets []Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
}
