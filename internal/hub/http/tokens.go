package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/hub/internal/hub/domain"
	"github.com/aussiebroadwan/hub/internal/hub/service"
	"github.com/aussiebroadwan/hub/pkg/httpx"
	"github.com/aussiebroadwan/hub/pkg/hubsdk"
	"github.com/aussiebroadwan/hub/pkg/slogx"
)

// TokensHandler serves credential administration. Every route is privileged.
type TokensHandler struct {
	Credentials *service.CredentialStore
	Now         func() time.Time
}

// HandleList godoc
//
//	@Summary		List master tokens
//	@Description	Stored tokens with masked values, plus counts by status. The default token is counted but not listed.
//	@Tags			Tokens
//	@Produce		json
//	@Success		200	{object}	hubsdk.TokenListResponse
//	@Failure		401	{object}	hubsdk.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	hubsdk.ErrorResponse	"forbidden"
//	@Security		BearerAuth
//	@Router			/v1/tokens [get].
func (h *TokensHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	tokens, err := h.Credentials.List(ctx)
	if err != nil {
		log.Error("failed to list tokens", "err", err)
		hubsdk.ErrServerError.WriteError(w)
		return
	}

	now := h.Now()
	resp := hubsdk.TokenListResponse{
		Tokens: make([]hubsdk.TokenResponse, 0, len(tokens)),
		Stats:  toStats(domain.ComputeTokenStats(tokens, now)),
	}
	for _, t := range tokens {
		tr := toTokenResponse(t, now)
		tr.Token = domain.MaskToken(t.Value)
		tr.CreatedBy = domain.MaskToken(t.CreatedBy)
		resp.Tokens = append(resp.Tokens, tr)
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCreate godoc
//
//	@Summary		Create a master token
//	@Description	Issues a new active token. When value is omitted a random one is generated.
//	@Description	The response is the only time the full value is returned.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		hubsdk.CreateTokenRequest	true	"Token"
//	@Success		201		{object}	hubsdk.TokenResponse
//	@Failure		400		{object}	hubsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	hubsdk.ErrorResponse	"invalid_token"
//	@Failure		403		{object}	hubsdk.ErrorResponse	"forbidden"
//	@Failure		409		{object}	hubsdk.ErrorResponse	"token_conflict"
//	@Security		BearerAuth
//	@Router			/v1/tokens [post].
func (h *TokensHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req hubsdk.CreateTokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		hubsdk.NewInvalidRequest("Invalid JSON body").WriteError(w)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		hubsdk.NewInvalidRequest("name is required").WriteError(w)
		return
	}
	now := h.Now()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		hubsdk.NewInvalidRequest("expires_at must be in the future").WriteError(w)
		return
	}

	p, _ := httpx.PrincipalFromContext(ctx)
	tok, err := h.Credentials.Create(ctx, name, req.ExpiresAt, strings.TrimSpace(req.Value), p.Token)
	switch {
	case errors.Is(err, service.ErrTokenConflict):
		hubsdk.ErrTokenConflict.WriteError(w)
		return
	case err != nil:
		log.Error("failed to create token", "err", err)
		hubsdk.ErrServerError.WriteError(w)
		return
	}

	resp := toTokenResponse(tok, now)
	resp.CreatedBy = domain.MaskToken(tok.CreatedBy)
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// HandleDelete godoc
//
//	@Summary		Delete a master token
//	@Description	Removes the token. Unknown ids succeed. Sessions already using the token are not ended.
//	@Tags			Tokens
//	@Param			id	path	string	true	"Token ID"
//	@Success		204
//	@Failure		401	{object}	hubsdk.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	hubsdk.ErrorResponse	"forbidden"
//	@Security		BearerAuth
//	@Router			/v1/tokens/{id} [delete].
func (h *TokensHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Credentials.Delete(r.Context(), r.PathValue("id")); err != nil {
		slogx.FromContext(r.Context()).Error("failed to delete token", "err", err)
		hubsdk.ErrServerError.WriteError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggle godoc
//
//	@Summary	Enable or disable a master token
//	@Tags		Tokens
//	@Param		id	path	string	true	"Token ID"
//	@Success	204
//	@Failure	401	{object}	hubsdk.ErrorResponse	"invalid_token"
//	@Failure	403	{object}	hubsdk.ErrorResponse	"forbidden"
//	@Security	BearerAuth
//	@Router		/v1/tokens/{id}/toggle [post].
func (h *TokensHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	if err := h.Credentials.ToggleActive(r.Context(), r.PathValue("id")); err != nil {
		slogx.FromContext(r.Context()).Error("failed to toggle token", "err", err)
		hubsdk.ErrServerError.WriteError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toTokenResponse(t domain.Token, now time.Time) hubsdk.TokenResponse {
	return hubsdk.TokenResponse{
		ID:        t.ID,
		Token:     t.Value,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
		IsActive:  t.IsActive,
		Status:    string(t.Status(now)),
		CreatedBy: t.CreatedBy,
	}
}

func toStats(s domain.TokenStats) hubsdk.TokenStats {
	return hubsdk.TokenStats{
		Total:    s.Total,
		Active:   s.Active,
		Expired:  s.Expired,
		Disabled: s.Disabled,
	}
}
