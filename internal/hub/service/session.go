package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/hub/internal/hub/audit"
	"github.com/aussiebroadwan/hub/internal/hub/domain"
	"github.com/aussiebroadwan/hub/internal/hub/store"
	"github.com/aussiebroadwan/hub/pkg/cryptox"
	"github.com/aussiebroadwan/hub/pkg/slogx"
)

var (
	ErrDenied        = errors.New("access denied")
	ErrNoSession     = errors.New("no active session")
	ErrNotPrivileged = errors.New("operation requires the default credential")
)

// SessionManager owns the single process session.
type SessionManager struct {
	Store       *store.Store
	Credentials *CredentialStore
	Audit       audit.Emitter
	Now         func() time.Time

	// MinLoginDuration is the least time every Login call takes, so that
	// accepted and rejected attempts are indistinguishable by timing.
	MinLoginDuration time.Duration

	mu sync.Mutex
}

// Login validates value and, on success, replaces the current session with a
// new one lasting SessionTTL. Any rejection is reported as ErrDenied.
func (m *SessionManager) Login(ctx context.Context, value string) (domain.Session, error) {
	deadline := time.Now().Add(m.MinLoginDuration)
	sess, err := m.login(ctx, value)
	waitUntil(ctx, deadline)
	return sess, err
}

func (m *SessionManager) login(ctx context.Context, value string) (domain.Session, error) {
	log := slogx.FromContext(ctx)
	now := clock(m.Now)

	if !m.Credentials.IsValid(ctx, value) {
		log.Warn("login denied", slog.String("token", domain.MaskToken(value)))
		emit(ctx, m.Audit, audit.KindLoginFailure, now, value, "")
		return domain.Session{}, ErrDenied
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess := domain.Session{Token: value, ExpiresAt: now.Add(domain.SessionTTL).UTC()}
	if err := m.Store.Session().Save(ctx, sess); err != nil {
		log.Error("failed to persist session", slog.Any("error", err))
		return domain.Session{}, err
	}

	log.Info("login succeeded",
		slog.String("token", domain.MaskToken(value)),
		slog.Time("expires_at", sess.ExpiresAt),
	)
	emit(ctx, m.Audit, audit.KindLoginSuccess, now, value, "")
	return sess, nil
}

// Restore loads the persisted session at start-up. An expired record is
// cleared and ErrNoSession returned.
func (m *SessionManager) Restore(ctx context.Context) (domain.Session, error) {
	sess, err := m.Current(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	slogx.FromContext(ctx).Info("session restored",
		slog.String("token", domain.MaskToken(sess.Token)),
		slog.Time("expires_at", sess.ExpiresAt),
	)
	return sess, nil
}

// Current returns the live session, expiring it lazily.
func (m *SessionManager) Current(ctx context.Context) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current(ctx)
}

// current must be called with mu held.
func (m *SessionManager) current(ctx context.Context) (domain.Session, error) {
	sess, err := m.Store.Session().Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrNoSession
	}
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load session", slog.Any("error", err))
		return domain.Session{}, err
	}

	if sess.ExpiredAt(clock(m.Now)) {
		if err := m.Store.Session().Clear(ctx); err != nil {
			slogx.FromContext(ctx).Error("failed to clear expired session", slog.Any("error", err))
			return domain.Session{}, err
		}
		slogx.FromContext(ctx).Info("session expired", slog.String("token", domain.MaskToken(sess.Token)))
		return domain.Session{}, ErrNoSession
	}
	return sess, nil
}

// Logout ends the current session. Without a session it does nothing.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.current(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := m.Store.Session().Clear(ctx); err != nil {
		slogx.FromContext(ctx).Error("failed to clear session", slog.Any("error", err))
		return err
	}

	slogx.FromContext(ctx).Info("logged out", slog.String("token", domain.MaskToken(sess.Token)))
	emit(ctx, m.Audit, audit.KindLogout, clock(m.Now), sess.Token, "")
	return nil
}

// CurrentIdentity resolves who the session belongs to. It never fails.
func (m *SessionManager) CurrentIdentity(ctx context.Context) domain.Identity {
	sess, err := m.Current(ctx)
	if err != nil {
		return domain.Identity{Name: domain.IdentityUnknown}
	}
	return m.Credentials.Identify(ctx, sess.Token)
}

// IsPrivileged reports whether the session is bound to the default token.
func (m *SessionManager) IsPrivileged(ctx context.Context) bool {
	sess, err := m.Current(ctx)
	return err == nil && cryptox.EqualTokens(sess.Token, domain.DefaultTokenValue)
}

// RequirePrivileged returns ErrNotPrivileged unless IsPrivileged.
func (m *SessionManager) RequirePrivileged(ctx context.Context) error {
	if !m.IsPrivileged(ctx) {
		return ErrNotPrivileged
	}
	return nil
}

// Verify checks that bearer is the token of the live session.
func (m *SessionManager) Verify(ctx context.Context, bearer string) (domain.Session, error) {
	sess, err := m.Current(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if bearer == "" || !cryptox.EqualTokens(sess.Token, bearer) {
		return domain.Session{}, ErrNoSession
	}
	return sess, nil
}

func waitUntil(ctx context.Context, deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
