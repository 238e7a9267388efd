package banner

import (
	"context"
	"errors"
	"strings"

	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/infrastructure/store"
)

// Section is the place on the storefront a banner is shown
type Section string

const (
	SectionHero   Section = "hero"
	SectionMiddle Section = "middle"
)

var (
	ErrInvalidSection = errors.New("section must be hero or middle")
	ErrImageRequired  = errors.New("image is required")
)

type Banner struct {
	ID      ident.ID `json:"id"`
	Image   string   `json:"image"`
	Link    string   `json:"link"`
	Section Section  `json:"section"`
}

// ParseSection validates a section name
func ParseSection(s string) (Section, error) {
	switch section := Section(strings.ToLower(strings.TrimSpace(s))); section {
	case SectionHero, SectionMiddle:
		return section, nil
	default:
		return "", ErrInvalidSection
	}
}

type Service struct {
	banners *store.Collection[Banner]
	ids     *ident.Generator
}

func NewService(s *store.Store, ids *ident.Generator) *Service {
	if ids == nil {
		ids = ident.Default
	}
	return &Service{
		banners: store.NewCollection[Banner](s, store.KeyBanners),
		ids:     ids,
	}
}

func (s *Service) List(ctx context.Context) ([]Banner, error) {
	return s.banners.Load(ctx)
}

func (s *Service) ListBySection(ctx context.Context, section Section) ([]Banner, error) {
	banners, err := s.banners.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Banner, 0)
	for _, b := range banners {
		if b.Section == section {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

// Add appends a banner; an empty link becomes "#"
func (s *Service) Add(ctx context.Context, image, link string, section Section) (Banner, error) {
	if _, err := ParseSection(string(section)); err != nil {
		return Banner{}, err
	}
	if image == "" {
		return Banner{}, ErrImageRequired
	}
	if link == "" {
		link = "#"
	}

	b := Banner{ID: s.ids.New(""), Image: image, Link: link, Section: section}
	err := s.banners.Mutate(ctx, func(banners []Banner) ([]Banner, error) {
		return append(banners, b), nil
	})
	if err != nil {
		return Banner{}, err
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id ident.ID) error {
	return s.banners.Mutate(ctx, func(banners []Banner) ([]Banner, error) {
		kept := make([]Banner, 0, len(banners))
		for _, b := range banners {
			if b.ID != id {
				kept = append(kept, b)
			}
		}
		if len(kept) == len(banners) {
			return nil, store.ErrUnchanged
		}
		return kept, nil
	})
}
