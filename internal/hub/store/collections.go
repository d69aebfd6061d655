package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/hub/internal/hub/domain"
)

// Tokens is the persisted credential set, in insertion order.
type Tokens struct{ s *Store }

// Load returns every stored token. A missing collection loads as empty.
func (t Tokens) Load(ctx context.Context) ([]domain.Token, error) {
	return loadList[domain.Token](ctx, t.s, KeyTokens)
}

// Save replaces the stored token set.
func (t Tokens) Save(ctx context.Context, tokens []domain.Token) error {
	return t.s.save(ctx, KeyTokens, tokens)
}

// Sessions holds the single persisted session record.
type Sessions struct{ s *Store }

// Load returns the persisted session or ErrNotFound.
func (ss Sessions) Load(ctx context.Context) (domain.Session, error) {
	var sess domain.Session
	if err := ss.s.load(ctx, KeySession, &sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// Save replaces the persisted session.
func (ss Sessions) Save(ctx context.Context, sess domain.Session) error {
	return ss.s.save(ctx, KeySession, sess)
}

// Clear removes the persisted session. Clearing when none exists is fine.
func (ss Sessions) Clear(ctx context.Context) error {
	if err := ss.s.kv.Delete(ctx, KeySession); err != nil {
		return fmt.Errorf("store: clear %s: %w", KeySession, err)
	}
	return nil
}

// Invitations is the persisted invitation set, in creation order.
type Invitations struct{ s *Store }

// Load returns every stored invitation. A missing collection loads as empty.
func (i Invitations) Load(ctx context.Context) ([]domain.Invitation, error) {
	return loadList[domain.Invitation](ctx, i.s, KeyInvitations)
}

// Save replaces the stored invitation set.
func (i Invitations) Save(ctx context.Context, invs []domain.Invitation) error {
	return i.s.save(ctx, KeyInvitations, invs)
}

func loadList[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	var out []T
	if err := s.load(ctx, key, &out); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []T{}, nil
		}
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (s *Store) load(ctx context.Context, key string, v any) error {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("store: get %s: %w", key, err)
	}
	if err := s.codec.Decode(data, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	return nil
}
