package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hub/internal/hub/audit"
	"github.com/aussiebroadwan/hub/internal/hub/domain"
	hubhttp "github.com/aussiebroadwan/hub/internal/hub/http"
	"github.com/aussiebroadwan/hub/internal/hub/service"
	"github.com/aussiebroadwan/hub/internal/hub/store"
	"github.com/aussiebroadwan/hub/internal/hub/store/drivers/memory"
	"github.com/aussiebroadwan/hub/pkg/hubsdk"
	"github.com/aussiebroadwan/hub/pkg/slogx"
)

type testServer struct {
	handler     http.Handler
	credentials *service.CredentialStore
	merged      chan domain.MergeRequest
	audited     *kindRecorder
}

type kindRecorder struct {
	mu    sync.Mutex
	kinds []audit.Kind
}

func (k *kindRecorder) Send(_ context.Context, e audit.Event) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kinds = append(k.kinds, e.Kind)
	return nil
}

func (k *kindRecorder) Kinds() []audit.Kind {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]audit.Kind(nil), k.kinds...)
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st := store.New(memory.New(), store.Base64Codec{})
	audited := &kindRecorder{}
	emitter := audit.Synchronous{Sink: audited}

	merges := &service.MergeRegistry{}
	merged := make(chan domain.MergeRequest, 1)
	merges.Register("notes", func(_ context.Context, req domain.MergeRequest) error {
		merged <- req
		return nil
	})

	creds := &service.CredentialStore{Store: st, Audit: emitter}
	sessions := &service.SessionManager{Store: st, Credentials: creds, Audit: emitter}
	invitations := &service.InvitationEngine{
		Store:       st,
		Credentials: creds,
		Sessions:    sessions,
		Audit:       emitter,
		Merges:      merges,
	}

	r := hubhttp.NewRouter("test", st, slogx.Discard())
	r.Credentials = creds
	r.Sessions = sessions
	r.Invitations = invitations
	r.ApplyRoutes()

	return &testServer{handler: r, credentials: creds, merged: merged, audited: audited}
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, rdr)
	req.RemoteAddr = "127.0.0.1:5000"
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLogin(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/session", "", hubsdk.LoginRequest{Token: "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, hubsdk.ErrorCodeAccessDenied, decode[hubsdk.ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPost, "/v1/session", "", hubsdk.LoginRequest{Token: domain.DefaultTokenValue})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	sess := decode[hubsdk.SessionResponse](t, rec)
	require.Equal(t, "5419****", sess.TokenMasked)
	require.Equal(t, domain.IdentityDefaultAdmin, sess.Identity)
	require.True(t, sess.Privileged)
	require.WithinDuration(t, time.Now().Add(domain.SessionTTL), sess.ExpiresAt, time.Minute)
	require.NotContains(t, rec.Body.String(), domain.DefaultTokenValue)

	rec = s.do(t, http.MethodGet, "/v1/session", domain.DefaultTokenValue, nil)
	require.Equal(t, http.StatusOK, rec.Code)

}

func TestLoginMalformedBodyLooksLikeUnknownToken(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	unknown := s.do(t, http.MethodPost, "/v1/session", "", hubsdk.LoginRequest{Token: "nope"})
	require.Equal(t, http.StatusUnauthorized, unknown.Code)

	for name, body := range map[string]any{
		"numeric token": map[string]any{"token": 5419811},
		"extra field":   map[string]any{"token": "nope", "extra": true},
	} {
		rec := s.do(t, http.MethodPost, "/v1/session", "", body)
		require.Equal(t, unknown.Code, rec.Code, name)
		require.JSONEq(t, unknown.Body.String(), rec.Body.String(), name)
	}

	require.Equal(t,
		[]audit.Kind{audit.KindLoginFailure, audit.KindLoginFailure, audit.KindLoginFailure},
		s.audited.Kinds(),
		"every failed login is audited",
	)
}

func TestBearerMustMatchLiveSession(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/v1/session", domain.DefaultTokenValue, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "no session yet")
	require.Equal(t, hubsdk.ErrorCodeInvalidToken, decode[hubsdk.ErrorResponse](t, rec).Error)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/session", "", hubsdk.LoginRequest{Token: domain.DefaultTokenValue}).Code)

	rec = s.do(t, http.MethodGet, "/v1/session", "someone-else", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/session", domain.DefaultTokenValue, nil).Code)
	require.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/v1/session", domain.DefaultTokenValue, nil).Code)
}

func TestTokenAdministration(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	admin := domain.DefaultTokenValue
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/session", "", hubsdk.LoginRequest{Token: admin}).Code)

	t.Run("validation", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/tokens", admin, hubsdk.CreateTokenRequest{Name: "   "})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		past := time.Now().Add(-time.Hour)
		rec = s.do(t, http.MethodPost, "/v1/tokens", admin, hubsdk.CreateTokenRequest{Name: "Old", ExpiresAt: &past})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(t, http.MethodPost, "/v1/tokens", admin, hubsdk.CreateTokenRequest{Name: "Shadow", Value: admin})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	rec := s.do(t, http.MethodPost, "/v1/tokens", admin, hubsdk.CreateTokenRequest{Name: "Alice", Value: "alice-secret"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[hubsdk.TokenResponse](t, rec)
	require.Equal(t, "alice-secret", created.Token)
	require.Equal(t, "active", created.Status)

	rec = s.do(t, http.MethodGet, "/v1/tokens", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[hubsdk.TokenListResponse](t, rec)
	require.Len(t, list.Tokens, 1)
	require.Equal(t, domain.MaskToken("alice-secret"), list.Tokens[0].Token)
	require.Equal(t, hubsdk.TokenStats{Total: 2, Active: 2}, list.Stats)
	require.NotContains(t, rec.Body.String(), "alice-secret")

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/v1/tokens/"+created.ID+"/toggle", admin, nil).Code)
	list = decode[hubsdk.TokenListResponse](t, s.do(t, http.MethodGet, "/v1/tokens", admin, nil))
	require.Equal(t, "disabled", list.Tokens[0].Status)

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/tokens/"+created.ID, admin, nil).Code)
	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/v1/tokens/unknown", admin, nil).Code)
	list = decode[hubsdk.TokenListResponse](t, s.do(t, http.MethodGet, "/v1/tokens", admin, nil))
	require.Empty(t, list.Tokens)
}

func TestTokenRoutesRequirePrivilege(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	_, err := s.credentials.Create(t.Context(), "Bob", nil, "bob-secret", domain.DefaultTokenValue)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/session", "", hubsdk.LoginRequest{Token: "bob-secret"}).Code)

	rec := s.do(t, http.MethodGet, "/v1/tokens", "bob-secret", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, hubsdk.ErrorCodeForbidden, decode[hubsdk.ErrorResponse](t, rec).Error)

	me := decode[hubsdk.SessionResponse](t, s.do(t, http.MethodGet, "/v1/session", "bob-secret", nil))
	require.Equal(t, "Bob", me.Identity)
	require.False(t, me.Privileged)
}

func TestInvitationFlow(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ctx := t.Context()

	_, err := s.credentials.Create(ctx, "Alice", nil, "alice-secret", domain.DefaultTokenValue)
	require.NoError(t, err)
	_, err = s.credentials.Create(ctx, "Bob", nil, "bob-secret", domain.DefaultTokenValue)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/session", "", hubsdk.LoginRequest{Token: "alice-secret"}).Code)

	rec := s.do(t, http.MethodPost, "/v1/invitations", "alice-secret", hubsdk.SendInvitationRequest{ToToken: "nobody", AppType: "notes"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, hubsdk.ErrorCodeRejected, decode[hubsdk.ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPost, "/v1/invitations", "alice-secret", hubsdk.SendInvitationRequest{ToToken: "  bob-secret\n", AppType: "notes"})
	require.Equal(t, http.StatusCreated, rec.Code, "recipient token is trimmed")
	sent := decode[hubsdk.InvitationResponse](t, rec)
	require.Equal(t, "Alice wants to share their Notes data with you.", sent.Message)
	require.Equal(t, "Notes", sent.AppName)
	require.NotContains(t, rec.Body.String(), "bob-secret")

	duplicate := s.do(t, http.MethodPost, "/v1/invitations", "alice-secret", hubsdk.SendInvitationRequest{ToToken: "bob-secret", AppType: "notes"})
	require.Equal(t, http.StatusBadRequest, duplicate.Code)
	require.Equal(t, rec.Header().Get("Content-Type"), duplicate.Header().Get("Content-Type"))

	out := decode[hubsdk.InvitationListResponse](t, s.do(t, http.MethodGet, "/v1/invitations/outbound", "alice-secret", nil))
	require.Len(t, out.Invitations, 1)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/session", "", hubsdk.LoginRequest{Token: "bob-secret"}).Code)

	inbox := decode[hubsdk.InvitationListResponse](t, s.do(t, http.MethodGet, "/v1/invitations/inbound", "bob-secret", nil))
	require.Len(t, inbox.Invitations, 1)
	require.Equal(t, "Alice", inbox.Invitations[0].SenderName)

	rec = s.do(t, http.MethodPost, "/v1/invitations/"+sent.ID+"/respond", "bob-secret", hubsdk.RespondInvitationRequest{Decision: "maybe"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, hubsdk.ErrorCodeInvalidDecision, decode[hubsdk.ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPost, "/v1/invitations/"+sent.ID+"/respond", "bob-secret", hubsdk.RespondInvitationRequest{Decision: hubsdk.DecisionAccepted})
	require.Equal(t, http.StatusNoContent, rec.Code)

	select {
	case req := <-s.merged:
		require.Equal(t, sent.ID, req.InvitationID)
		require.Equal(t, "alice-secret", req.FromToken)
		require.Equal(t, "bob-secret", req.ToToken)
	case <-time.After(time.Second):
		t.Fatal("merge handler was not called")
	}

	inbox = decode[hubsdk.InvitationListResponse](t, s.do(t, http.MethodGet, "/v1/invitations/inbound", "bob-secret", nil))
	require.Empty(t, inbox.Invitations)

	rec = s.do(t, http.MethodPost, "/v1/invitations/unknown/respond", "bob-secret", hubsdk.RespondInvitationRequest{Decision: hubsdk.DecisionRejected})
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", decode[hubsdk.HealthResponse](t, rec).Version)

	rec = s.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[hubsdk.HealthResponse](t, rec)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Store)
}
