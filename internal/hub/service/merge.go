package service

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/aussiebroadwan/hub/internal/hub/domain"
	"github.com/aussiebroadwan/hub/pkg/slogx"
)

// MergeHandler merges the data of an accepted invitation for one feature.
type MergeHandler func(ctx context.Context, req domain.MergeRequest) error

// MergeRegistry routes accepted invitations to the feature that owns their
// app type. The zero value is ready to use.
type MergeRegistry struct {
	mu       sync.RWMutex
	handlers map[string]MergeHandler
}

// Register installs h for appType, replacing any previous handler.
func (r *MergeRegistry) Register(appType string, h MergeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		r.handlers = make(map[string]MergeHandler)
	}
	r.handlers[appType] = h
}

// AppTypes lists the app types with a registered handler.
func (r *MergeRegistry) AppTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.handlers))
}

// Dispatch runs the handler for req.AppType. A missing handler or a handler
// error is logged and otherwise ignored.
func (r *MergeRegistry) Dispatch(ctx context.Context, req domain.MergeRequest) {
	log := slogx.FromContext(ctx).With(
		slog.String("invitation_id", req.InvitationID),
		slog.String("app_type", req.AppType),
	)

	if r == nil {
		log.Info("no merge handler registered")
		return
	}

	r.mu.RLock()
	h, ok := r.handlers[req.AppType]
	r.mu.RUnlock()

	if !ok {
		log.Info("no merge handler registered")
		return
	}
	if err := h(ctx, req); err != nil {
		log.Error("merge handler failed", slog.Any("error", err))
		return
	}
	log.Info("merge handler completed")
}
