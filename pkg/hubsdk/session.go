package hubsdk

import (
	"context"
	"net/http"
)

// Session performs calls as a logged-in credential.
type Session struct {
	client *SDKClient
	token  string
	info   *SessionResponse
}

// Token returns the bearer value the session uses.
func (s *Session) Token() string { return s.token }

// Info returns the session description captured at login, if any.
func (s *Session) Info() *SessionResponse { return s.info }

// Current fetches the live session and resolved identity.
func (s *Session) Current(ctx context.Context) (*SessionResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/session", nil, nil)
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	s.info = &out
	return &out, nil
}

// Logout ends the daemon's session.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/session", nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
