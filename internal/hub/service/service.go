// Package service implements the hub core: credential management, the
// process session and share invitations.
package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/hub/internal/hub/audit"
)

// clock returns now() or time.Now when unset.
func clock(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

func emit(ctx context.Context, em audit.Emitter, kind audit.Kind, at time.Time, token, detail string) {
	if em == nil {
		return
	}
	em.Emit(ctx, audit.NewEvent(kind, at, token, detail))
}
