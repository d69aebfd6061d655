package domain

import (
	"time"

	"github.com/aussiebroadwan/hub/pkg/cryptox"
)

// DefaultTokenValue is the reserved administrative credential. It is always
// valid, never expires and can not be deleted or shadowed by a stored token.
const DefaultTokenValue = "5419810"

// Token is a stored bearer credential ("master token").
type Token struct {
	ID        string     `json:"id"`
	Value     string     `json:"token"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt"` // nil never expires
	IsActive  bool       `json:"isActive"`
	CreatedBy string     `json:"createdBy"` // token value of the creating session
}

// ValidAt reports whether the stored token authenticates at now.
func (t Token) ValidAt(now time.Time) bool {
	return t.IsActive && (t.ExpiresAt == nil || t.ExpiresAt.After(now))
}

type TokenStatus string

const (
	TokenStatusActive   TokenStatus = "active"
	TokenStatusExpired  TokenStatus = "expired"
	TokenStatusDisabled TokenStatus = "disabled"
)

// Status classifies the token for listings. Disabled wins over expired.
func (t Token) Status(now time.Time) TokenStatus {
	switch {
	case !t.IsActive:
		return TokenStatusDisabled
	case t.ExpiresAt != nil && !t.ExpiresAt.After(now):
		return TokenStatusExpired
	default:
		return TokenStatusActive
	}
}

// TokenStats summarises the credential set. The default token is counted in
// Total and Active.
type TokenStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Expired  int `json:"expired"`
	Disabled int `json:"disabled"`
}

// ComputeTokenStats counts tokens by status at now.
func ComputeTokenStats(tokens []Token, now time.Time) TokenStats {
	s := TokenStats{Total: len(tokens) + 1, Active: 1}
	for _, t := range tokens {
		switch t.Status(now) {
		case TokenStatusActive:
			s.Active++
		case TokenStatusExpired:
			s.Expired++
		case TokenStatusDisabled:
			s.Disabled++
		}
	}
	return s
}

// MaskToken returns the display form of a credential value, e.g. "5419****".
func MaskToken(value string) string {
	return cryptox.MaskToken(value)
}
