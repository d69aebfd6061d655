package domain

import (
	"fmt"
	"strings"
	"time"
)

// InvitationTTL is the fixed lifetime of a share invitation.
const InvitationTTL = 7 * 24 * time.Hour

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationRejected
}

// ParseDecision accepts only the two terminal statuses a recipient may choose.
func ParseDecision(s string) (InvitationStatus, bool) {
	switch InvitationStatus(strings.ToLower(strings.TrimSpace(s))) {
	case InvitationAccepted:
		return InvitationAccepted, true
	case InvitationRejected:
		return InvitationRejected, true
	default:
		return "", false
	}
}

// Invitation proposes that FromToken's data for AppType be merged into
// ToToken's data set.
type Invitation struct {
	ID        string           `json:"id"`
	FromToken string           `json:"fromToken"`
	ToToken   string           `json:"toToken"`
	AppType   string           `json:"appType"`
	Message   string           `json:"message"`
	Status    InvitationStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// Actionable reports whether the invitation can still be answered at now.
func (i Invitation) Actionable(now time.Time) bool {
	return i.Status == InvitationPending && i.ExpiresAt.After(now)
}

// MergeRequest is handed to the feature module registered for AppType once an
// invitation is accepted.
type MergeRequest struct {
	InvitationID string `json:"invitationId"`
	AppType      string `json:"appType"`
	FromToken    string `json:"fromToken"`
	ToToken      string `json:"toToken"`
}

var appDisplayNames = map[string]string{
	"notes":     "Notes",
	"websites":  "Websites",
	"todos":     "Tasks",
	"contacts":  "Contacts",
	"discord":   "Discord Contacts",
	"instagram": "Instagram Contacts",
	"youtube":   "YouTube Videos",
	"photos":    "Photo Gallery",
	"osint":     "OSINT Tools",
	"pdf-tools": "PDF Tools",
}

// AppDisplayName returns the human name of a feature, or appType itself when
// the feature is not known.
func AppDisplayName(appType string) string {
	if name, ok := appDisplayNames[appType]; ok {
		return name
	}
	return appType
}

// DefaultInvitationMessage is used when the sender leaves the message blank.
func DefaultInvitationMessage(senderName, appType string) string {
	if strings.TrimSpace(senderName) == "" {
		senderName = "Someone"
	}
	return fmt.Sprintf("%s wants to share their %s data with you.", senderName, AppDisplayName(appType))
}
