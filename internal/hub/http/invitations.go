package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/hub/internal/hub/domain"
	"github.com/aussiebroadwan/hub/internal/hub/service"
	"github.com/aussiebroadwan/hub/pkg/httpx"
	"github.com/aussiebroadwan/hub/pkg/hubsdk"
	"github.com/aussiebroadwan/hub/pkg/slogx"
)

type InvitationsHandler struct {
	Invitations *service.InvitationEngine
	Credentials *service.CredentialStore
}

// HandleSend godoc
//
//	@Summary		Send a share invitation
//	@Description	Offers the session's data for app_type to another token. A blank message is replaced by a default.
//	@Description	Every failure reason is reported as the same generic 400.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		hubsdk.SendInvitationRequest	true	"Invitation"
//	@Success		201		{object}	hubsdk.InvitationResponse
//	@Failure		400		{object}	hubsdk.ErrorResponse	"rejected"
//	@Failure		401		{object}	hubsdk.ErrorResponse	"invalid_token"
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationsHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req hubsdk.SendInvitationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		hubsdk.NewInvalidRequest("Invalid JSON body").WriteError(w)
		return
	}

	inv, err := h.Invitations.Send(ctx, strings.TrimSpace(req.ToToken), req.AppType, req.Message)
	switch {
	case errors.Is(err, service.ErrRejected):
		hubsdk.ErrRejected.WriteError(w)
		return
	case err != nil:
		log.Error("failed to send invitation", "err", err)
		hubsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, h.toResponse(ctx, inv))
}

// HandleInbound godoc
//
//	@Summary		Pending invitations addressed to the session
//	@Description	Actionable invitations in creation order, with the sender's display name.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{object}	hubsdk.InvitationListResponse
//	@Failure		401	{object}	hubsdk.ErrorResponse	"invalid_token"
//	@Security		BearerAuth
//	@Router			/v1/invitations/inbound [get].
func (h *InvitationsHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Invitations.ListInbound)
}

// HandleOutbound godoc
//
//	@Summary	Pending invitations sent by the session
//	@Tags		Invitations
//	@Produce	json
//	@Success	200	{object}	hubsdk.InvitationListResponse
//	@Failure	401	{object}	hubsdk.ErrorResponse	"invalid_token"
//	@Security	BearerAuth
//	@Router		/v1/invitations/outbound [get].
func (h *InvitationsHandler) HandleOutbound(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Invitations.ListOutbound)
}

func (h *InvitationsHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	load func(context.Context, string) ([]domain.Invitation, error),
) {
	ctx := r.Context()
	p, _ := httpx.PrincipalFromContext(ctx)

	invs, err := load(ctx, p.Token)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list invitations", "err", err)
		hubsdk.ErrServerError.WriteError(w)
		return
	}

	resp := hubsdk.InvitationListResponse{Invitations: make([]hubsdk.InvitationResponse, 0, len(invs))}
	for _, inv := range invs {
		resp.Invitations = append(resp.Invitations, h.toResponse(ctx, inv))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRespond godoc
//
//	@Summary		Accept or reject an invitation
//	@Description	Unknown, foreign, already answered and expired invitations are ignored and still return 204.
//	@Tags			Invitations
//	@Accept			json
//	@Param			id		path	string							true	"Invitation ID"
//	@Param			request	body	hubsdk.RespondInvitationRequest	true	"Decision"
//	@Success		204
//	@Failure		400	{object}	hubsdk.ErrorResponse	"invalid_decision"
//	@Failure		401	{object}	hubsdk.ErrorResponse	"invalid_token"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/respond [post].
func (h *InvitationsHandler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req hubsdk.RespondInvitationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		hubsdk.NewInvalidRequest("Invalid JSON body").WriteError(w)
		return
	}

	decision, ok := domain.ParseDecision(req.Decision)
	if !ok {
		hubsdk.ErrInvalidDecision.WriteError(w)
		return
	}

	if err := h.Invitations.Respond(ctx, r.PathValue("id"), decision); err != nil {
		if errors.Is(err, service.ErrInvalidDecision) {
			hubsdk.ErrInvalidDecision.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to respond to invitation", "err", err)
		hubsdk.ErrServerError.WriteError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InvitationsHandler) toResponse(ctx context.Context, inv domain.Invitation) hubsdk.InvitationResponse {
	return hubsdk.InvitationResponse{
		ID:         inv.ID,
		FromToken:  domain.MaskToken(inv.FromToken),
		ToToken:    domain.MaskToken(inv.ToToken),
		SenderName: h.Credentials.Identify(ctx, inv.FromToken).Name,
		AppType:    inv.AppType,
		AppName:    domain.AppDisplayName(inv.AppType),
		Message:    inv.Message,
		Status:     string(inv.Status),
		CreatedAt:  inv.CreatedAt,
		ExpiresAt:  inv.ExpiresAt,
	}
}
