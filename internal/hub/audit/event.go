package audit

import (
	"time"

	"github.com/aussiebroadwan/hub/internal/hub/domain"
	"github.com/aussiebroadwan/hub/pkg/idx"
)

type Kind string

const (
	KindLoginSuccess       Kind = "login_success"
	KindLoginFailure       Kind = "login_failure"
	KindLogout             Kind = "logout"
	KindTokenCreated       Kind = "token_created"
	KindTokenDeleted       Kind = "token_deleted"
	KindTokenActivated     Kind = "token_activated"
	KindTokenDeactivated   Kind = "token_deactivated"
	KindInvitationSent     Kind = "invitation_sent"
	KindInvitationAccepted Kind = "invitation_accepted"
	KindInvitationRejected Kind = "invitation_rejected"
)

// Event is a single audit record.
type Event struct {
	ID     string    `json:"id"`
	Kind   Kind      `json:"kind"`
	Time   time.Time `json:"time"`
	Token  string    `json:"token"`
	Detail string    `json:"detail,omitempty"`
}

// NewEvent stamps a new event with a fresh ID and the given time.
func NewEvent(kind Kind, at time.Time, token, detail string) Event {
	return Event{
		ID:     idx.NewAt(at).String(),
		Kind:   kind,
		Time:   at.UTC(),
		Token:  token,
		Detail: detail,
	}
}

// Config controls how events are prepared for sinks.
type Config struct {
	// QueueSize bounds the Dispatcher queue. Zero uses DefaultQueueSize.
	QueueSize int

	// RedactFailed masks the presented value on login_failure events.
	RedactFailed bool

	// SendTimeout bounds a single sink delivery. Zero uses DefaultSendTimeout.
	SendTimeout time.Duration
}

func (c Config) prepare(e Event) Event {
	if c.RedactFailed && e.Kind == KindLoginFailure {
		e.Token = domain.MaskToken(e.Token)
	}
	return e
}
