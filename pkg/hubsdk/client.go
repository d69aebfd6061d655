package hubsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to a hub daemon.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the daemon at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login presents token and returns a Session bound to it. Every rejection is
// reported as ErrAccessDenied.
func (c *SDKClient) Login(ctx context.Context, token string) (*Session, error) {
	body, err := jsonBody(LoginRequest{Token: token})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/session", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var sess SessionResponse
	if err := decodeJSON(resp, &sess, http.StatusOK); err != nil {
		return nil, err
	}

	return &Session{client: c, token: token, info: &sess}, nil
}

// NewSession wraps a token that is already logged in on the daemon.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}
