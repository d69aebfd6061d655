// Package store persists the hub's three collections (tokens, the session and
// invitations) on top of a pluggable key-value driver.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrClosed   = errors.New("store: closed")
)

// KV is the durable medium every driver implements. Implementations must be
// safe for concurrent use.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the backing medium is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Collection keys.
const (
	KeyTokens      = "tokens"
	KeySession     = "session"
	KeyInvitations = "invitations"
)

// Store exposes typed collections over a KV and a Codec. It does not
// serialise read-modify-write cycles; callers hold their own locks.
type Store struct {
	kv    KV
	codec Codec
}

// New wraps kv. A nil codec defaults to Base64Codec.
func New(kv KV, codec Codec) *Store {
	if codec == nil {
		codec = Base64Codec{}
	}
	return &Store{kv: kv, codec: codec}
}

func (s *Store) Tokens() Tokens           { return Tokens{s: s} }
func (s *Store) Session() Sessions        { return Sessions{s: s} }
func (s *Store) Invitations() Invitations { return Invitations{s: s} }

// Ping verifies the underlying driver is still reachable.
func (s *Store) Ping(ctx context.Context) error { return s.kv.Ping(ctx) }

func (s *Store) Close() error { return s.kv.Close() }
