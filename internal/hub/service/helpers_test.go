package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/hub/internal/hub/audit"
	"github.com/aussiebroadwan/hub/internal/hub/store"
	"github.com/aussiebroadwan/hub/internal/hub/store/drivers/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorder) Emit(_ context.Context, e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Kinds() []audit.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func (r *recorder) Last() audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type harness struct {
	kv          *memory.Driver
	store       *store.Store
	clock       *fakeClock
	audit       *recorder
	merges      *MergeRegistry
	credentials *CredentialStore
	sessions    *SessionManager
	invitations *InvitationEngine
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		kv:     memory.New(),
		clock:  newFakeClock(),
		audit:  &recorder{},
		merges: &MergeRegistry{},
	}
	h.store = store.New(h.kv, store.Base64Codec{})
	h.credentials = &CredentialStore{Store: h.store, Audit: h.audit, Now: h.clock.Now}
	h.sessions = &SessionManager{Store: h.store, Credentials: h.credentials, Audit: h.audit, Now: h.clock.Now}
	h.invitations = &InvitationEngine{
		Store:       h.store,
		Credentials: h.credentials,
		Sessions:    h.sessions,
		Audit:       h.audit,
		Merges:      h.merges,
		Now:         h.clock.Now,
	}
	return h
}
