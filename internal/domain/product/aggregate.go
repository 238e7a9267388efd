package product

import (
	"context"
	"errors"
	"strings"

	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/infrastructure/store"
	"github.com/example/blackshot-store/internal/seed"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidName     = errors.New("name is required")
)

// Product is one catalogue entry. Category is a free-text label, not a reference.
type Product struct {
	ID             ident.ID `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	OldPrice       float64  `json:"oldPrice"`
	Category       string   `json:"category"`
	Image          string   `json:"image"`
	Specifications []string `json:"specifications"`
}

// Patch carries the fields of an update. Nil fields keep their stored value, and
// an empty Image keeps the current image.
type Patch struct {
	Name           *string   `json:"name,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Price          *float64  `json:"price,omitempty"`
	OldPrice       *float64  `json:"oldPrice,omitempty"`
	Category       *string   `json:"category,omitempty"`
	Image          *string   `json:"image,omitempty"`
	Specifications *[]string `json:"specifications,omitempty"`
}

type Service struct {
	products *store.Collection[Product]
	ids      *ident.Generator
}

func NewService(s *store.Store, ids *ident.Generator) *Service {
	if ids == nil {
		ids = ident.Default
	}
	return &Service{
		products: store.NewCollection[Product](s, store.KeyProducts),
		ids:      ids,
	}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.products.Load(ctx)
}

// ListByCategory returns the products whose category label matches, ignoring case
func (s *Service) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	products, err := s.products.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Product, 0)
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *Service) Get(ctx context.Context, id ident.ID) (Product, bool, error) {
	products, err := s.products.Load(ctx)
	if err != nil {
		return Product{}, false, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return Product{}, false, nil
}

// Add stores p under a freshly generated id; any id set by the caller is replaced.
func (s *Service) Add(ctx context.Context, p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Product{}, ErrInvalidName
	}
	if p.Price <= 0 {
		return Product{}, ErrInvalidPrice
	}
	if p.Image == "" {
		p.Image = seed.ProductPlaceholder()
	}
	if p.Specifications == nil {
		p.Specifications = []string{}
	}
	p.ID = s.ids.New("")

	err := s.products.Mutate(ctx, func(products []Product) ([]Product, error) {
		return append(products, p), nil
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// Update merges patch over the stored product
func (s *Service) Update(ctx context.Context, id ident.ID, patch Patch) (Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return Product{}, ErrInvalidName
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return Product{}, ErrInvalidPrice
	}

	var updated Product
	err := s.products.Mutate(ctx, func(products []Product) ([]Product, error) {
		for i := range products {
			if products[i].ID != id {
				continue
			}
			patch.Apply(&products[i])
			updated = products[i]
			return products, nil
		}
		return nil, ErrProductNotFound
	})
	if err != nil {
		return Product{}, err
	}
	return updated, nil
}

// Delete removes the product. Carts and orders that mention it are left as they are.
func (s *Service) Delete(ctx context.Context, id ident.ID) error {
	return s.products.Mutate(ctx, func(products []Product) ([]Product, error) {
		kept := products[:0]
		for _, p := range products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(products) {
			return nil, store.ErrUnchanged
		}
		return kept, nil
	})
}

// Apply copies the set fields onto dst. An empty image keeps the current one.
func (p Patch) Apply(dst *Product) {
	if p.Name != nil {
		dst.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.OldPrice != nil {
		dst.OldPrice = *p.OldPrice
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Image != nil && *p.Image != "" {
		dst.Image = *p.Image
	}
	if p.Specifications != nil {
		dst.Specifications = append([]string{}, (*p.Specifications)...)
	}
}
