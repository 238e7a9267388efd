package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/infrastructure/store"
)

// DateLayout is the display date recorded on a review
const DateLayout = "1/2/2006"

var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrInvalidProduct = errors.New("productId is required")
	ErrEmptyComment   = errors.New("comment is required")
)

type Review struct {
	ID        ident.ID `json:"id"`
	ProductID ident.ID `json:"productId"`
	Name      string   `json:"name"`
	Rating    int      `json:"rating"`
	Comment   string   `json:"comment"`
	Date      string   `json:"date"`
}

type Service struct {
	reviews *store.Collection[Review]
	ids     *ident.Generator
	now     func() time.Time
}

func NewService(s *store.Store, ids *ident.Generator) *Service {
	if ids == nil {
		ids = ident.Default
	}
	return &Service{
		reviews: store.NewCollection[Review](s, store.KeyReviews),
		ids:     ids,
		now:     time.Now,
	}
}

// ListForProduct returns the reviews of one product in the order they were written
func (s *Service) ListForProduct(ctx context.Context, productID ident.ID) ([]Review, error) {
	reviews, err := s.reviews.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Review, 0)
	for _, r := range reviews {
		if r.ProductID == productID {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Add assigns an id and today's date, then appends the review
func (s *Service) Add(ctx context.Context, r Review) (Review, error) {
	if r.ProductID.IsZero() {
		return Review{}, ErrInvalidProduct
	}
	if r.Rating < 1 || r.Rating > 5 {
		return Review{}, ErrInvalidRating
	}
	r.Comment = strings.TrimSpace(r.Comment)
	if r.Comment == "" {
		return Review{}, ErrEmptyComment
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		r.Name = "Anonymous"
	}
	r.ID = s.ids.New("")
	r.Date = s.now().Format(DateLayout)

	err := s.reviews.Mutate(ctx, func(reviews []Review) ([]Review, error) {
		return append(reviews, r), nil
	})
	if err != nil {
		return Review{}, err
	}
	return r, nil
}
