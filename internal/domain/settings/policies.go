package settings

import (
	"context"

	"github.com/example/blackshot-store/internal/infrastructure/store"
	"github.com/example/blackshot-store/internal/seed"
)

// PolicyText holds the rich text of the shipping and refund pages
type PolicyText = seed.Policies

type Policies struct {
	store *store.Store
}

func NewPolicies(s *store.Store) *Policies {
	return &Policies{store: s}
}

// Get returns the saved policies, or the built-in text when none were saved
func (p *Policies) Get(ctx context.Context) (PolicyText, error) {
	var text PolicyText
	found, err := p.store.Read(ctx, store.KeyPolicies, &text)
	if err != nil {
		return PolicyText{}, err
	}
	if !found || text == (PolicyText{}) {
		return seed.DefaultPolicies(), nil
	}
	return text, nil
}

func (p *Policies) Save(ctx context.Context, text PolicyText) error {
	return p.store.Write(ctx, store.KeyPolicies, text)
}
