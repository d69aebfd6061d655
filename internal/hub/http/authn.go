package http

import (
	"context"

	"github.com/aussiebroadwan/hub/internal/hub/service"
	"github.com/aussiebroadwan/hub/pkg/httpx"
)

// sessionAuthenticator accepts only the bearer of the live session.
type sessionAuthenticator struct {
	sessions    *service.SessionManager
	credentials *service.CredentialStore
}

func (a sessionAuthenticator) Authenticate(ctx context.Context, bearer string) (httpx.Principal, error) {
	sess, err := a.sessions.Verify(ctx, bearer)
	if err != nil {
		return httpx.Principal{}, err
	}

	id := a.credentials.Identify(ctx, sess.Token)
	return httpx.Principal{
		Token:      sess.Token,
		Name:       id.Name,
		Privileged: id.Privileged,
	}, nil
}
