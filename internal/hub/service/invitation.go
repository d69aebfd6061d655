package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/hub/internal/hub/audit"
	"github.com/aussiebroadwan/hub/internal/hub/domain"
	"github.com/aussiebroadwan/hub/internal/hub/store"
	"github.com/aussiebroadwan/hub/pkg/idx"
	"github.com/aussiebroadwan/hub/pkg/slogx"
)

var (
	// ErrRejected covers every reason an invitation can not be sent. Callers
	// can not tell an unknown recipient from a duplicate.
	ErrRejected        = errors.New("invitation rejected")
	ErrInvalidDecision = errors.New("decision must be accepted or rejected")
)

// InvitationEngine runs the share invitation protocol between tokens.
type InvitationEngine struct {
	Store       *store.Store
	Credentials *CredentialStore
	Sessions    *SessionManager
	Audit       audit.Emitter
	Merges      *MergeRegistry
	Now         func() time.Time

	mu sync.Mutex
}

// Send offers the session holder's appType data to toToken. A blank message
// is replaced by the default text.
func (e *InvitationEngine) Send(ctx context.Context, toToken, appType, message string) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Sender is the live session.
	sess, err := e.Sessions.Current(ctx)
	if err != nil {
		log.Debug("invitation rejected", slog.String("reason", "no session"))
		return domain.Invitation{}, ErrRejected
	}

	// 2. Recipient must currently validate.
	if !e.Credentials.IsValid(ctx, toToken) {
		log.Debug("invitation rejected", slog.String("reason", "recipient not valid"))
		return domain.Invitation{}, ErrRejected
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	invs, err := e.Store.Invitations().Load(ctx)
	if err != nil {
		log.Error("failed to load invitations", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	// 3. At most one live pending invitation per (from, to, appType).
	now := clock(e.Now)
	dup := slices.ContainsFunc(invs, func(i domain.Invitation) bool {
		return i.FromToken == sess.Token && i.ToToken == toToken && i.AppType == appType && i.Actionable(now)
	})
	if dup {
		log.Debug("invitation rejected", slog.String("reason", "duplicate pending"))
		return domain.Invitation{}, ErrRejected
	}

	if strings.TrimSpace(message) == "" {
		message = domain.DefaultInvitationMessage(e.Credentials.Identify(ctx, sess.Token).Name, appType)
	}

	inv := domain.Invitation{
		ID:        idx.NewAt(now).String(),
		FromToken: sess.Token,
		ToToken:   toToken,
		AppType:   appType,
		Message:   message,
		Status:    domain.InvitationPending,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(domain.InvitationTTL).UTC(),
	}
	if err := e.Store.Invitations().Save(ctx, append(invs, inv)); err != nil {
		log.Error("failed to save invitations", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	log.Info("invitation sent",
		slog.String("invitation_id", inv.ID),
		slog.String("app_type", appType),
		slog.String("to", domain.MaskToken(toToken)),
	)
	emit(ctx, e.Audit, audit.KindInvitationSent, now, sess.Token,
		fmt.Sprintf("to=%s app=%s", domain.MaskToken(toToken), appType))
	return inv, nil
}

// ListInbound returns the actionable invitations addressed to forToken in
// creation order.
func (e *InvitationEngine) ListInbound(ctx context.Context, forToken string) ([]domain.Invitation, error) {
	return e.list(ctx, func(i domain.Invitation) bool { return i.ToToken == forToken })
}

// ListOutbound returns the actionable invitations sent by fromToken in
// creation order.
func (e *InvitationEngine) ListOutbound(ctx context.Context, fromToken string) ([]domain.Invitation, error) {
	return e.list(ctx, func(i domain.Invitation) bool { return i.FromToken == fromToken })
}

func (e *InvitationEngine) list(ctx context.Context, match func(domain.Invitation) bool) ([]domain.Invitation, error) {
	invs, err := e.Store.Invitations().Load(ctx)
	if err != nil {
		return nil, err
	}

	now := clock(e.Now)
	out := make([]domain.Invitation, 0, len(invs))
	for _, i := range invs {
		if match(i) && i.Actionable(now) {
			out = append(out, i)
		}
	}
	return out, nil
}

// Respond applies the session holder's decision to invitation id. Unknown,
// foreign, answered or expired invitations are left untouched without error.
// Accepting hands a MergeRequest to the registered handler once the new
// status is persisted.
func (e *InvitationEngine) Respond(ctx context.Context, id string, decision domain.InvitationStatus) error {
	log := slogx.FromContext(ctx)

	if !decision.Terminal() {
		return ErrInvalidDecision
	}

	sess, err := e.Sessions.Current(ctx)
	if errors.Is(err, ErrNoSession) {
		log.Debug("respond ignored", slog.String("reason", "no session"))
		return nil
	}
	if err != nil {
		return err
	}

	inv, changed, err := e.transition(ctx, sess.Token, id, decision)
	if err != nil || !changed {
		return err
	}

	kind := audit.KindInvitationRejected
	if decision == domain.InvitationAccepted {
		kind = audit.KindInvitationAccepted
	}
	log.Info("invitation answered",
		slog.String("invitation_id", inv.ID),
		slog.String("status", string(decision)),
	)
	emit(ctx, e.Audit, kind, clock(e.Now), sess.Token,
		fmt.Sprintf("invitation=%s from=%s app=%s", inv.ID, domain.MaskToken(inv.FromToken), inv.AppType))

	if decision == domain.InvitationAccepted {
		e.Merges.Dispatch(ctx, domain.MergeRequest{
			InvitationID: inv.ID,
			AppType:      inv.AppType,
			FromToken:    inv.FromToken,
			ToToken:      inv.ToToken,
		})
	}
	return nil
}

func (e *InvitationEngine) transition(
	ctx context.Context,
	recipient string,
	id string,
	decision domain.InvitationStatus,
) (domain.Invitation, bool, error) {
	log := slogx.FromContext(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	invs, err := e.Store.Invitations().Load(ctx)
	if err != nil {
		log.Error("failed to load invitations", slog.Any("error", err))
		return domain.Invitation{}, false, err
	}

	i := slices.IndexFunc(invs, func(inv domain.Invitation) bool { return inv.ID == id })
	if i < 0 || invs[i].ToToken != recipient || !invs[i].Actionable(clock(e.Now)) {
		log.Debug("respond ignored", slog.String("invitation_id", id))
		return domain.Invitation{}, false, nil
	}

	invs[i].Status = decision
	if err := e.Store.Invitations().Save(ctx, invs); err != nil {
		log.Error("failed to save invitations", slog.Any("error", err))
		return domain.Invitation{}, false, err
	}
	return invs[i], true, nil
}
