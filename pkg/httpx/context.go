package httpx

import "context"

type ctxKey string

const (
	CtxKeyPrincipal ctxKey = "principal"
)

// Principal is the caller identity attached to an authenticated request.
type Principal struct {
	// Token is the bearer secret the caller logged in with.
	Token string
	// Name is the display name of the credential.
	Name string
	// Privileged is true only for the built-in default credential.
	Privileged bool
}

// WithPrincipal stores p on the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, CtxKeyPrincipal, p)
}

// PrincipalFromContext returns the principal placed by AuthnMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(CtxKeyPrincipal).(Principal)
	return p, ok
}
