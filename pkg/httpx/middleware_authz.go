package httpx

import (
	"net/http"
)

// RequirePrivileged only lets through callers whose Principal is privileged.
// It must run after AuthnMiddleware.
func RequirePrivileged() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing principal")
				return
			}
			if !p.Privileged {
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
				WriteError(w, http.StatusForbidden, "forbidden", "operation requires the administrative credential")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
