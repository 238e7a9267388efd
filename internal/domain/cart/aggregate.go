package cart

import (
	"context"
	"errors"

	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/domain/product"
	"github.com/example/blackshot-store/internal/infrastructure/store"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("productId is required")
	ErrProductNotFound = errors.New("product not found")
)

// Item is one cart line. Name, price and image are copied from the product when the
// line is created and are not refreshed afterwards.
type Item struct {
	ProductID ident.ID `json:"productId"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Image     string   `json:"image"`
	Quantity  int      `json:"quantity"`
}

// ProductLookup resolves the product a line is created from
type ProductLookup interface {
	Get(ctx context.Context, id ident.ID) (product.Product, bool, error)
}

// Service manages the single cart of a profile
type Service struct {
	items    *store.Collection[Item]
	products ProductLookup
}

func NewService(s *store.Store, products ProductLookup) *Service {
	return &Service{
		items:    store.NewCollection[Item](s, store.KeyCart),
		products: products,
	}
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.items.Load(ctx)
}

// Add puts quantity units of the product in the cart. A product already in the cart
// has its quantity increased instead of getting a second line.
func (s *Service) Add(ctx context.Context, productID ident.ID, quantity int) ([]Item, error) {
	if productID.IsZero() {
		return nil, ErrInvalidProduct
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	p, found, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrProductNotFound
	}

	var result []Item
	err = s.items.Mutate(ctx, func(items []Item) ([]Item, error) {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity += quantity
				result = items
				return items, nil
			}
		}
		result = append(items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  quantity,
		})
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateQuantity sets the quantity of a line; zero or less removes it. Products not
// in the cart are ignored.
func (s *Service) UpdateQuantity(ctx context.Context, productID ident.ID, quantity int) ([]Item, error) {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}

	var result []Item
	err := s.items.Mutate(ctx, func(items []Item) ([]Item, error) {
		result = items
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity = quantity
				return items, nil
			}
		}
		return nil, store.ErrUnchanged
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) Remove(ctx context.Context, productID ident.ID) ([]Item, error) {
	var result []Item
	err := s.items.Mutate(ctx, func(items []Item) ([]Item, error) {
		kept := make([]Item, 0, len(items))
		for _, item := range items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		result = kept
		if len(kept) == len(items) {
			return nil, store.ErrUnchanged
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context) error {
	return s.items.Save(ctx, []Item{})
}

// Total returns the sum of price times quantity over the cart
func (s *Service) Total(ctx context.Context) (float64, error) {
	items, err := s.items.Load(ctx)
	if err != nil {
		return 0, err
	}
	return Subtotal(items), nil
}

// Count returns the number of units in the cart
func (s *Service) Count(ctx context.Context) (int, error) {
	items, err := s.items.Load(ctx)
	if err != nil {
		return 0, err
	}
	return Quantity(items), nil
}

// Quantity sums the units over items
func Quantity(items []Item) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// Subtotal sums price times quantity
func Subtotal(items []Item) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Snapshot returns an independent copy of items
func Snapshot(items []Item) []Item {
	return append([]Item{}, items...)
}
