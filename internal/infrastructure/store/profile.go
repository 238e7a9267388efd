package store

import (
	"context"
	"fmt"
	"sort"
)

// Export returns every key of the profile with its raw stored value, the same
// shape as a browser localStorage dump.
func Export(ctx context.Context, s *Store) (map[string]string, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list keys: %w", err)
	}
	dump := make(map[string]string, len(keys))
	for _, key := range keys {
		raw, found, err := s.ReadRaw(ctx, key)
		if err != nil {
			return nil, err
		}
		if found {
			dump[key] = string(raw)
		}
	}
	return dump, nil
}

// Import writes every entry of dump. With replace, keys missing from dump are
// removed first so the profile matches the dump exactly.
func Import(ctx context.Context, s *Store, dump map[string]string, replace bool) error {
	if replace {
		keys, err := s.Keys(ctx)
		if err != nil {
			return fmt.Errorf("store: list keys: %w", err)
		}
		for _, key := range keys {
			if _, keep := dump[key]; !keep {
				if err := s.Remove(ctx, key); err != nil {
					return err
				}
			}
		}
	}

	keys := make([]string, 0, len(dump))
	for key := range dump {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := s.WriteRaw(ctx, key, []byte(dump[key])); err != nil {
			return err
		}
	}
	return nil
}
