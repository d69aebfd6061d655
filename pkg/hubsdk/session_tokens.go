package hubsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListTokens returns every stored credential (masked) and the stats.
func (s *Session) ListTokens(ctx context.Context) (*TokenListResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/tokens", nil, nil)
	if err != nil {
		return nil, err
	}

	var out TokenListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateToken issues a credential. The response holds the full value.
func (s *Session) CreateToken(ctx context.Context, req CreateTokenRequest) (*TokenResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/tokens", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteToken removes a credential. Unknown ids succeed.
func (s *Session) DeleteToken(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/tokens/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ToggleToken flips a credential between active and disabled.
func (s *Session) ToggleToken(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/tokens/"+url.PathEscape(id)+"/toggle", nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
