// Package seed holds the first-run defaults of a profile and writes them into
// an empty store.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/infrastructure/store"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Policies is the shipping/refund text shown on the policy pages
type Policies struct {
	Shipping string `yaml:"shipping" json:"shipping"`
	Refund   string `yaml:"refund" json:"refund"`
}

type productSeed struct {
	ID             int64    `yaml:"id"`
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Price          float64  `yaml:"price"`
	OldPrice       float64  `yaml:"oldPrice"`
	Category       string   `yaml:"category"`
	Image          string   `yaml:"image"`
	Specifications []string `yaml:"specifications"`
}

type bannerSeed struct {
	ID      int64  `yaml:"id"`
	Image   string `yaml:"image"`
	Link    string `yaml:"link"`
	Section string `yaml:"section"`
}

// Defaults is the decoded defaults.yaml
type Defaults struct {
	Products     []productSeed `yaml:"products"`
	Categories   []string      `yaml:"categories"`
	Banners      []bannerSeed  `yaml:"banners"`
	Placeholders struct {
		Category string `yaml:"category"`
		Product  string `yaml:"product"`
	} `yaml:"placeholders"`
	Policies Policies `yaml:"policies"`
}

var defaults = mustParse(defaultsYAML)

func mustParse(data []byte) *Defaults {
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		panic(fmt.Sprintf("seed: invalid defaults.yaml: %v", err))
	}
	return &d
}

// DefaultPolicies returns the policy text used until an admin saves their own
func DefaultPolicies() Policies {
	return defaults.Policies
}

// CategoryPlaceholder returns the image used for a category created without one
func CategoryPlaceholder(name string) string {
	return defaults.Placeholders.Category + url.QueryEscape(name)
}

// ProductPlaceholder returns the image used for a product created without one
func ProductPlaceholder() string {
	return defaults.Placeholders.Product
}

// Stored shapes of the seeded records.
type product struct {
	ID             ident.ID `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	OldPrice       float64  `json:"oldPrice"`
	Category       string   `json:"category"`
	Image          string   `json:"image"`
	Specifications []string `json:"specifications"`
}

type category struct {
	ID    ident.ID `json:"id"`
	Name  string   `json:"name"`
	Image string   `json:"image"`
}

type banner struct {
	ID      ident.ID `json:"id"`
	Image   string   `json:"image"`
	Link    string   `json:"link"`
	Section string   `json:"section"`
}

// Init fills every missing collection with its default and returns the keys it wrote.
// Present collections are never overwritten, except banners, which are re-seeded
// while empty. Running Init again on a populated profile writes nothing.
func Init(ctx context.Context, s *store.Store, ids *ident.Generator) ([]string, error) {
	if ids == nil {
		ids = ident.Default
	}

	var written []string
	fill := func(key string, value func() any) error {
		exists, err := s.Exists(ctx, key)
		if err != nil || exists {
			return err
		}
		if err := s.Write(ctx, key, value()); err != nil {
			return err
		}
		written = append(written, key)
		return nil
	}

	if err := fill(store.KeyProducts, defaultProducts); err != nil {
		return written, err
	}
	if err := fill(store.KeyCart, emptyList); err != nil {
		return written, err
	}
	if err := fill(store.KeyReviews, emptyList); err != nil {
		return written, err
	}
	if err := fill(store.KeyCategories, func() any { return defaultCategories(ids) }); err != nil {
		return written, err
	}

	reseed, err := bannersMissing(ctx, s)
	if err != nil {
		return written, err
	}
	if reseed {
		if err := s.Write(ctx, store.KeyBanners, defaultBanners()); err != nil {
			return written, err
		}
		written = append(written, store.KeyBanners)
	}

	return written, nil
}

// bannersMissing treats an absent, empty or unreadable banner list as missing
func bannersMissing(ctx context.Context, s *store.Store) (bool, error) {
	raw, found, err := s.ReadRaw(ctx, store.KeyBanners)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	var banners []json.RawMessage
	if err := json.Unmarshal(raw, &banners); err != nil {
		return true, nil
	}
	return len(banners) == 0, nil
}

func emptyList() any { return []any{} }

func defaultProducts() any {
	products := make([]product, len(defaults.Products))
	for i, p := range defaults.Products {
		products[i] = product{
			ID:             ident.ID(strconv.FormatInt(p.ID, 10)),
			Name:           p.Name,
			Description:    p.Description,
			Price:          p.Price,
			OldPrice:       p.OldPrice,
			Category:       p.Category,
			Image:          p.Image,
			Specifications: p.Specifications,
		}
	}
	return products
}

func defaultCategories(ids *ident.Generator) any {
	categories := make([]category, len(defaults.Categories))
	for i, name := range defaults.Categories {
		categories[i] = category{
			ID:    ids.New(""),
			Name:  name,
			Image: CategoryPlaceholder(name),
		}
	}
	return categories
}

func defaultBanners() any {
	banners := make([]banner, len(defaults.Banners))
	for i, b := range defaults.Banners {
		banners[i] = banner{
			ID:      ident.ID(strconv.FormatInt(b.ID, 10)),
			Image:   b.Image,
			Link:    b.Link,
			Section: b.Section,
		}
	}
	return banners
}
