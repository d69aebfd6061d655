package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aussiebroadwan/hub/internal/hub/audit"
	"github.com/aussiebroadwan/hub/internal/hub/domain"
	"github.com/aussiebroadwan/hub/internal/hub/store"
	"github.com/aussiebroadwan/hub/pkg/cryptox"
	"github.com/aussiebroadwan/hub/pkg/idx"
	"github.com/aussiebroadwan/hub/pkg/slogx"
)

var (
	ErrTokenConflict   = errors.New("token value already in use")
	ErrTokenGeneration = errors.New("could not generate a unique token value")
)

const maxGenerateAttempts = 8

// CredentialStore manages the stored master tokens. The default token is
// never stored; it is recognised by value.
type CredentialStore struct {
	Store *store.Store
	Audit audit.Emitter
	Now   func() time.Time

	// GenerateValue produces candidate values for Create. Defaults to a
	// 256-bit random token.
	GenerateValue func() (string, error)

	mu sync.Mutex
}

func (c *CredentialStore) generate() (string, error) {
	if c.GenerateValue != nil {
		return c.GenerateValue()
	}
	return cryptox.GenerateToken(cryptox.TokenSize256)
}

// Create issues a new active token. When explicitValue is empty a random value
// is generated. The returned record is the only place the full value is
// handed back.
func (c *CredentialStore) Create(
	ctx context.Context,
	name string,
	expiresAt *time.Time,
	explicitValue string,
	createdBy string,
) (domain.Token, error) {
	log := slogx.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	tokens, err := c.Store.Tokens().Load(ctx)
	if err != nil {
		log.Error("failed to load tokens", slog.Any("error", err))
		return domain.Token{}, err
	}

	taken := func(v string) bool {
		if cryptox.EqualTokens(v, domain.DefaultTokenValue) {
			return true
		}
		return slices.ContainsFunc(tokens, func(t domain.Token) bool { return t.Value == v })
	}

	// 1. Pick the value.
	value := explicitValue
	if value != "" {
		if taken(value) {
			log.Warn("explicit token value collides with an existing token")
			return domain.Token{}, ErrTokenConflict
		}
	} else {
		for range maxGenerateAttempts {
			candidate, err := c.generate()
			if err != nil {
				log.Error("failed to generate token value", slog.Any("error", err))
				return domain.Token{}, err
			}
			if !taken(candidate) {
				value = candidate
				break
			}
		}
		if value == "" {
			log.Error("token generation exhausted attempts", slog.Int("attempts", maxGenerateAttempts))
			return domain.Token{}, ErrTokenGeneration
		}
	}

	// 2. Append and persist.
	now := clock(c.Now)
	tok := domain.Token{
		ID:        idx.NewAt(now).String(),
		Value:     value,
		Name:      name,
		CreatedAt: now.UTC(),
		ExpiresAt: expiresAt,
		IsActive:  true,
		CreatedBy: createdBy,
	}
	if err := c.Store.Tokens().Save(ctx, append(tokens, tok)); err != nil {
		log.Error("failed to save tokens", slog.Any("error", err))
		return domain.Token{}, err
	}

	log.Info("token created",
		slog.String("token_id", tok.ID),
		slog.String("name", tok.Name),
		slog.String("token", domain.MaskToken(tok.Value)),
	)
	emit(ctx, c.Audit, audit.KindTokenCreated, now, tok.Value,
		fmt.Sprintf("name=%q created_by=%s", tok.Name, domain.MaskToken(createdBy)))

	return tok, nil
}

// Delete removes the token with id. Unknown ids are ignored. Sessions already
// bound to the value are left alone.
func (c *CredentialStore) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	tokens, err := c.Store.Tokens().Load(ctx)
	if err != nil {
		log.Error("failed to load tokens", slog.Any("error", err))
		return err
	}

	i := slices.IndexFunc(tokens, func(t domain.Token) bool { return t.ID == id })
	if i < 0 {
		log.Debug("delete of unknown token ignored", slog.String("token_id", id))
		return nil
	}
	removed := tokens[i]

	if err := c.Store.Tokens().Save(ctx, slices.Delete(tokens, i, i+1)); err != nil {
		log.Error("failed to save tokens", slog.Any("error", err))
		return err
	}

	log.Info("token deleted", slog.String("token_id", id), slog.String("name", removed.Name))
	emit(ctx, c.Audit, audit.KindTokenDeleted, clock(c.Now), removed.Value, fmt.Sprintf("name=%q", removed.Name))
	return nil
}

// ToggleActive flips the active flag of the token with id. Unknown ids are
// ignored.
func (c *CredentialStore) ToggleActive(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	tokens, err := c.Store.Tokens().Load(ctx)
	if err != nil {
		log.Error("failed to load tokens", slog.Any("error", err))
		return err
	}

	i := slices.IndexFunc(tokens, func(t domain.Token) bool { return t.ID == id })
	if i < 0 {
		log.Debug("toggle of unknown token ignored", slog.String("token_id", id))
		return nil
	}
	tokens[i].IsActive = !tokens[i].IsActive
	tok := tokens[i]

	if err := c.Store.Tokens().Save(ctx, tokens); err != nil {
		log.Error("failed to save tokens", slog.Any("error", err))
		return err
	}

	kind := audit.KindTokenDeactivated
	if tok.IsActive {
		kind = audit.KindTokenActivated
	}
	log.Info("token toggled", slog.String("token_id", id), slog.Bool("active", tok.IsActive))
	emit(ctx, c.Audit, kind, clock(c.Now), tok.Value, fmt.Sprintf("name=%q", tok.Name))
	return nil
}

// IsValid reports whether value currently authenticates: it is the default
// token, or a stored token that is active and unexpired. Storage failures
// count as invalid.
func (c *CredentialStore) IsValid(ctx context.Context, value string) bool {
	if value == "" {
		return false
	}
	if cryptox.EqualTokens(value, domain.DefaultTokenValue) {
		return true
	}

	tokens, err := c.Store.Tokens().Load(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load tokens for validation", slog.Any("error", err))
		return false
	}

	now := clock(c.Now)
	valid := false
	for _, t := range tokens {
		if cryptox.EqualTokens(t.Value, value) && t.ValidAt(now) {
			valid = true
		}
	}
	return valid
}

// List returns stored tokens in insertion order. The default token is not
// included.
func (c *CredentialStore) List(ctx context.Context) ([]domain.Token, error) {
	return c.Store.Tokens().Load(ctx)
}

// Lookup finds the stored record for value regardless of its state.
func (c *CredentialStore) Lookup(ctx context.Context, value string) (domain.Token, bool) {
	tokens, err := c.Store.Tokens().Load(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load tokens for lookup", slog.Any("error", err))
		return domain.Token{}, false
	}
	for _, t := range tokens {
		if cryptox.EqualTokens(t.Value, value) {
			return t, true
		}
	}
	return domain.Token{}, false
}

// Identify resolves the display identity for a credential value. It never
// fails: unknown or deleted values resolve to the "unknown" placeholder.
func (c *CredentialStore) Identify(ctx context.Context, value string) domain.Identity {
	if cryptox.EqualTokens(value, domain.DefaultTokenValue) {
		return domain.Identity{Name: domain.IdentityDefaultAdmin, Privileged: true}
	}
	if t, ok := c.Lookup(ctx, value); ok && t.Name != "" {
		return domain.Identity{Name: t.Name}
	}
	return domain.Identity{Name: domain.IdentityUnknown}
}

// Stats summarises the credential set, counting the default token.
func (c *CredentialStore) Stats(ctx context.Context) (domain.TokenStats, error) {
	tokens, err := c.Store.Tokens().Load(ctx)
	if err != nil {
		return domain.TokenStats{}, err
	}
	return domain.ComputeTokenStats(tokens, clock(c.Now)), nil
}
