package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/hub/internal/hub/service"
	"github.com/aussiebroadwan/hub/internal/hub/store"
	"github.com/aussiebroadwan/hub/pkg/httpx"
	"github.com/aussiebroadwan/hub/pkg/slogx"

	_ "github.com/aussiebroadwan/hub/api/hub" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        *store.Store

	Credentials *service.CredentialStore
	Sessions    *service.SessionManager
	Invitations *service.InvitationEngine

	// Now is the clock used for request validation. Defaults to time.Now.
	Now func() time.Time
}

func NewRouter(buildVersion string, st *store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Now:          time.Now,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerTokens()
	r.registerInvitations()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Private Hub API
//	@version		0.1.0
//	@description	Local API of the Private Hub daemon: master token login, credential administration and share invitations between tokens.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/hub
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Token of the live session. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(sessionAuthenticator{
		sessions:    r.Sessions,
		credentials: r.Credentials,
	})
}

func (r *Router) registerSession() {
	h := &SessionHandler{Sessions: r.Sessions, Credentials: r.Credentials}

	// POST /session - strict rate limit by IP, every request is a credential guess
	r.Mux.Handle("POST /v1/session",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /v1/session",
		httpx.Chain(http.HandlerFunc(h.HandleCurrent),
			r.authn(),
			httpx.RateLimitBySession(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("DELETE /v1/session",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.authn(),
			httpx.RateLimitBySession(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTokens() {
	h := &TokensHandler{Credentials: r.Credentials, Now: r.now}

	privileged := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			r.authn(),
			httpx.RequirePrivileged(),
			httpx.RateLimitBySession(limit),
		)
	}

	r.Mux.Handle("GET /v1/tokens", privileged(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/tokens", privileged(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/tokens/{id}", privileged(h.HandleDelete, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/tokens/{id}/toggle", privileged(h.HandleToggle, httpx.ModerateLimit))
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{Invitations: r.Invitations, Credentials: r.Credentials}

	authed := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			r.authn(),
			httpx.RateLimitBySession(limit),
		)
	}

	r.Mux.Handle("POST /v1/invitations", authed(h.HandleSend, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/invitations/inbound", authed(h.HandleInbound, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/invitations/outbound", authed(h.HandleOutbound, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/invitations/{id}/respond", authed(h.HandleRespond, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
