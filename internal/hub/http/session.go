package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/hub/internal/hub/domain"
	"github.com/aussiebroadwan/hub/internal/hub/service"
	"github.com/aussiebroadwan/hub/pkg/httpx"
	"github.com/aussiebroadwan/hub/pkg/hubsdk"
	"github.com/aussiebroadwan/hub/pkg/slogx"
)

type SessionHandler struct {
	Sessions    *service.SessionManager
	Credentials *service.CredentialStore
}

// HandleLogin godoc
//
//	@Summary		Log in with a master token
//	@Description	Validates the presented token and starts a 24 hour session, replacing any previous one.
//	@Description	Every rejection is the same generic 401.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		hubsdk.LoginRequest		true	"Token"
//	@Success		200		{object}	hubsdk.SessionResponse
//	@Failure		401		{object}	hubsdk.ErrorResponse	"access_denied"
//	@Failure		429		{object}	hubsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/v1/session [post].
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req hubsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		// A malformed body fails like an unknown token: padded, audited, same error.
		log.Debug("login body rejected", "err", err)
		_, _ = h.Sessions.Login(ctx, "")
		hubsdk.ErrAccessDenied.WriteError(w)
		return
	}

	sess, err := h.Sessions.Login(ctx, req.Token)
	if err != nil {
		if errors.Is(err, service.ErrDenied) {
			hubsdk.ErrAccessDenied.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		hubsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, h.describe(ctx, sess))
}

// HandleCurrent godoc
//
//	@Summary	Describe the live session
//	@Tags		Session
//	@Produce	json
//	@Success	200	{object}	hubsdk.SessionResponse
//	@Failure	401	{object}	hubsdk.ErrorResponse	"invalid_token"
//	@Security	BearerAuth
//	@Router		/v1/session [get].
func (h *SessionHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.Sessions.Current(ctx)
	if err != nil {
		// Expired between authentication and now.
		httpx.WriteError(w, http.StatusUnauthorized, hubsdk.ErrorCodeInvalidToken, "no active session for token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, h.describe(ctx, sess))
}

// HandleLogout godoc
//
//	@Summary	End the live session
//	@Tags		Session
//	@Success	204
//	@Failure	401	{object}	hubsdk.ErrorResponse	"invalid_token"
//	@Security	BearerAuth
//	@Router		/v1/session [delete].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(r.Context()); err != nil {
		slogx.FromContext(r.Context()).Error("logout failed", "err", err)
		hubsdk.ErrServerError.WriteError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) describe(ctx context.Context, sess domain.Session) hubsdk.SessionResponse {
	id := h.Credentials.Identify(ctx, sess.Token)
	return hubsdk.SessionResponse{
		TokenMasked: domain.MaskToken(sess.Token),
		ExpiresAt:   sess.ExpiresAt,
		Identity:    id.Name,
		Privileged:  id.Privileged,
	}
}
