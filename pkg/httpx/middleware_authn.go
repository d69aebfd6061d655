package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/hub/pkg/slogx"
)

// Authenticator resolves a presented bearer secret into a Principal.
// Implementations return an error when the bearer does not match the
// active session.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (Principal, error)
}

// AuthnMiddleware rejects requests whose bearer does not authenticate and
// injects the resulting Principal into the request context.
func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			p, err := a.Authenticate(ctx, raw)
			if err != nil {
				log.Debug("bearer rejected", "err", err)
				writeBearerError(w, "no active session for token")
				return
			}

			ctx = slogx.With(WithPrincipal(ctx, p), "identity", p.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the credential from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return raw, raw != ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
