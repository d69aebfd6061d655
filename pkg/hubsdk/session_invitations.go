package hubsdk

import (
	"context"
	"net/http"
	"net/url"
)

// SendInvitation offers the session's data for an app type to another token.
// Every failure reason is reported as ErrRejected.
func (s *Session) SendInvitation(ctx context.Context, req SendInvitationRequest) (*InvitationResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/invitations", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var out InvitationResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// InboundInvitations lists pending invitations addressed to the session.
func (s *Session) InboundInvitations(ctx context.Context) ([]InvitationResponse, error) {
	return s.listInvitations(ctx, "/v1/invitations/inbound")
}

// OutboundInvitations lists pending invitations the session has sent.
func (s *Session) OutboundInvitations(ctx context.Context) ([]InvitationResponse, error) {
	return s.listInvitations(ctx, "/v1/invitations/outbound")
}

func (s *Session) listInvitations(ctx context.Context, path string) ([]InvitationResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out InvitationListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Invitations, nil
}

// RespondInvitation applies decision to invitation id.
func (s *Session) RespondInvitation(ctx context.Context, id, decision string) error {
	body, err := jsonBody(RespondInvitationRequest{Decision: decision})
	if err != nil {
		return err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/invitations/"+url.PathEscape(id)+"/respond", body, jsonHeaders)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

func (s *Session) AcceptInvitation(ctx context.Context, id string) error {
	return s.RespondInvitation(ctx, id, DecisionAccepted)
}

func (s *Session) RejectInvitation(ctx context.Context, id string) error {
	return s.RespondInvitation(ctx, id, DecisionRejected)
}
