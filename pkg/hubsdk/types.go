package hubsdk

import "time"

// LoginRequest is the body of POST /v1/session.
type LoginRequest struct {
	Token string `json:"token"`
}

// SessionResponse describes the live session. The token is only ever echoed
// in masked form.
type SessionResponse struct {
	TokenMasked string    `json:"token_masked"`
	ExpiresAt   time.Time `json:"expires_at"`
	Identity    string    `json:"identity"`
	Privileged  bool      `json:"privileged"`
}

// CreateTokenRequest is the body of POST /v1/tokens.
type CreateTokenRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Value     string     `json:"value,omitempty"`
}

// TokenResponse is a credential record. Token holds the full value only in
// the response to CreateToken; listings carry the masked form.
type TokenResponse struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  bool       `json:"is_active"`
	Status    string     `json:"status"`
	CreatedBy string     `json:"created_by"`
}

// TokenStats summarises the credential set, counting the default token.
type TokenStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Expired  int `json:"expired"`
	Disabled int `json:"disabled"`
}

// TokenListResponse is the body of GET /v1/tokens.
type TokenListResponse struct {
	Tokens []TokenResponse `json:"tokens"`
	Stats  TokenStats      `json:"stats"`
}

// SendInvitationRequest is the body of POST /v1/invitations.
type SendInvitationRequest struct {
	ToToken string `json:"to_token"`
	AppType string `json:"app_type"`
	Message string `json:"message,omitempty"`
}

// InvitationResponse is a share invitation as seen by one of its parties.
type InvitationResponse struct {
	ID         string    `json:"id"`
	FromToken  string    `json:"from_token"`
	ToToken    string    `json:"to_token"`
	SenderName string    `json:"sender_name,omitempty"`
	AppType    string    `json:"app_type"`
	AppName    string    `json:"app_name"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// InvitationListResponse wraps invitation listings.
type InvitationListResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
}

// RespondInvitationRequest is the body of POST /v1/invitations/{id}/respond.
type RespondInvitationRequest struct {
	Decision string `json:"decision"`
}

// Decisions accepted by RespondInvitation.
const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
)

// HealthChecks reports the state of dependencies.
type HealthChecks struct {
	Store string `json:"store"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
