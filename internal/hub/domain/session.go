package domain

import "time"

// SessionTTL is how long a login stays valid.
const SessionTTL = 24 * time.Hour

// Session binds the process to one validated credential until ExpiresAt.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExpiredAt reports whether the session is no longer usable at now.
func (s Session) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Placeholder identity names.
const (
	IdentityDefaultAdmin = "default admin"
	IdentityUnknown      = "unknown"
)

// Identity is the resolved display identity of a credential. It is derived on
// demand and never persisted.
type Identity struct {
	Name       string `json:"name"`
	Privileged bool   `json:"privileged"`
}
