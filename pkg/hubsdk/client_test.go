package hubsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hub/pkg/httpx"
)

func TestLogin(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST /v1/session", r.Method+" "+r.URL.Path)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Token != "good" {
			ErrAccessDenied.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, SessionResponse{TokenMasked: "go...od", Identity: "Alice"})
	}))
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL + "/")

	t.Run("accepted", func(t *testing.T) {
		sess, err := client.Login(context.Background(), "good")
		require.NoError(t, err)
		require.Equal(t, "good", sess.Token())
		require.Equal(t, "Alice", sess.Info().Identity)
	})

	t.Run("denied", func(t *testing.T) {
		_, err := client.Login(context.Background(), "bad")
		require.Error(t, err)
		require.True(t, IsAccessDenied(err))
		require.True(t, IsUnauthorized(err))
	})
}

func TestSessionSendsBearer(t *testing.T) {
	t.Parallel()

	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer tok" {
			httpx.WriteError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "no active session for token")
			return
		}

		switch r.Method + " " + r.URL.Path {
		case "GET /v1/session":
			httpx.WriteJSON(w, http.StatusOK, SessionResponse{Identity: "Bob"})
		case "POST /v1/invitations/inv-1/respond":
			var req RespondInvitationRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, DecisionAccepted, req.Decision)
			w.WriteHeader(http.StatusNoContent)
		case "GET /v1/invitations/inbound":
			httpx.WriteJSON(w, http.StatusOK, InvitationListResponse{
				Invitations: []InvitationResponse{{ID: "inv-2", AppType: "notes"}},
			})
		case "POST /v1/invitations":
			ErrRejected.WriteError(w)
		case "DELETE /v1/session":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	client := NewSDKClient(srv.URL)
	sess := client.NewSession("tok")

	me, err := sess.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, "Bob", me.Identity)

	require.NoError(t, sess.AcceptInvitation(ctx, "inv-1"))

	inbox, err := sess.InboundInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, "inv-2", inbox[0].ID)

	_, err = sess.SendInvitation(ctx, SendInvitationRequest{ToToken: "x", AppType: "notes"})
	require.True(t, IsRejected(err))

	require.NoError(t, sess.Logout(ctx))

	_, err = client.NewSession("other").Current(ctx)
	require.True(t, IsUnauthorized(err))
	require.False(t, IsAccessDenied(err))

	require.Equal(t, []string{
		"GET /v1/session",
		"POST /v1/invitations/inv-1/respond",
		"GET /v1/invitations/inbound",
		"POST /v1/invitations",
		"DELETE /v1/session",
		"GET /v1/session",
	}, seen)
}

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	resp := &http.Response{StatusCode: http.StatusBadGateway}
	err := parseErrorResponse(resp, []byte("<html>"))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: http.StatusOK}, nil))
}
