package category

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/infrastructure/store"
	"github.com/example/blackshot-store/internal/seed"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidName      = errors.New("name is required")
	ErrDuplicateName    = errors.New("category already exists")
)

// Category represents a product category
type Category struct {
	ID    ident.ID `json:"id"`
	Name  string   `json:"name"`
	Image string   `json:"image"`
}

// Service handles category domain operations
type Service struct {
	categories *store.Collection[Category]
	ids        *ident.Generator
}

// NewService creates a new category service
func NewService(s *store.Store, ids *ident.Generator) *Service {
	if ids == nil {
		ids = ident.Default
	}
	c := store.NewCollection[Category](s, store.KeyCategories)
	return &Service{
		categories: c.WithUpgrade(upgradeLegacy(ids)),
		ids:        ids,
	}
}

// List returns every category. Profiles that still store bare names are converted
// to records on the first read and the converted form is saved.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.categories.Load(ctx)
}

// Get returns the category with the given id
func (s *Service) Get(ctx context.Context, id ident.ID) (Category, bool, error) {
	categories, err := s.categories.Load(ctx)
	if err != nil {
		return Category{}, false, err
	}
	for _, c := range categories {
		if c.ID == id {
			return c, true, nil
		}
	}
	return Category{}, false, nil
}

// Add creates a category. Names are unique ignoring case; a clash returns
// ErrDuplicateName and leaves the collection as it was.
func (s *Service) Add(ctx context.Context, name, image string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrInvalidName
	}
	if image == "" {
		image = seed.CategoryPlaceholder(name)
	}

	var created Category
	err := s.categories.Mutate(ctx, func(categories []Category) ([]Category, error) {
		for _, c := range categories {
			if strings.EqualFold(c.Name, name) {
				return nil, ErrDuplicateName
			}
		}
		created = Category{ID: s.ids.New(""), Name: name, Image: image}
		return append(categories, created), nil
	})
	if err != nil {
		return Category{}, err
	}
	return created, nil
}

// Delete removes the categories whose id or exact name equals key. Products keep
// their category label.
func (s *Service) Delete(ctx context.Context, key string) error {
	id := ident.Parse(key)
	return s.categories.Mutate(ctx, func(categories []Category) ([]Category, error) {
		kept := make([]Category, 0, len(categories))
		for _, c := range categories {
			if c.ID != id && c.Name != key {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(categories) {
			return nil, store.ErrUnchanged
		}
		return kept, nil
	})
}

// upgradeLegacy decodes a stored category list, converting bare name strings into
// records with a fresh id and a placeholder image.
func upgradeLegacy(ids *ident.Generator) func(raw []byte) ([]Category, bool, error) {
	return func(raw []byte) ([]Category, bool, error) {
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, false, fmt.Errorf("decode categories: %w", err)
		}

		categories := make([]Category, 0, len(elems))
		converted := false
		for _, elem := range elems {
			elem = bytes.TrimSpace(elem)
			if len(elem) > 0 && elem[0] == '"' {
				var name string
				if err := json.Unmarshal(elem, &name); err != nil {
					return nil, false, fmt.Errorf("decode legacy category: %w", err)
				}
				categories = append(categories, Category{
					ID:    ids.New(""),
					Name:  name,
					Image: seed.CategoryPlaceholder(name),
				})
				converted = true
				continue
			}
			var c Category
			if err := json.Unmarshal(elem, &c); err != nil {
				return nil, false, fmt.Errorf("decode category: %w", err)
			}
			categories = append(categories, c)
		}
		return categories, converted, nil
	}
}
