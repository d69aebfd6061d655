package domain

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestTokenValidAtMatchesDefinition(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		tok := Token{IsActive: r.IntN(2) == 0}
		if r.IntN(3) > 0 {
			tok.ExpiresAt = ptr(testNow.Add(time.Duration(r.IntN(7200)-3600) * time.Second))
		}

		want := tok.IsActive && (tok.ExpiresAt == nil || tok.ExpiresAt.After(testNow))
		require.Equal(t, want, tok.ValidAt(testNow), "%+v", tok)
	}
}

func TestTokenValidAtBoundary(t *testing.T) {
	t.Parallel()

	tok := Token{IsActive: true, ExpiresAt: ptr(testNow)}
	require.False(t, tok.ValidAt(testNow), "expiry equal to now is expired")
	require.True(t, tok.ValidAt(testNow.Add(-time.Nanosecond)))
}

func TestTokenStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tok  Token
		want TokenStatus
	}{
		{"active no expiry", Token{IsActive: true}, TokenStatusActive},
		{"active future expiry", Token{IsActive: true, ExpiresAt: ptr(testNow.Add(time.Hour))}, TokenStatusActive},
		{"expired", Token{IsActive: true, ExpiresAt: ptr(testNow.Add(-time.Hour))}, TokenStatusExpired},
		{"disabled", Token{IsActive: false}, TokenStatusDisabled},
		{"disabled and expired", Token{IsActive: false, ExpiresAt: ptr(testNow.Add(-time.Hour))}, TokenStatusDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.tok.Status(testNow))
		})
	}
}

func TestComputeTokenStatsCountsDefault(t *testing.T) {
	t.Parallel()

	stats := ComputeTokenStats([]Token{
		{IsActive: true},
		{IsActive: true, ExpiresAt: ptr(testNow.Add(-time.Minute))},
		{IsActive: false},
	}, testNow)

	require.Equal(t, TokenStats{Total: 4, Active: 2, Expired: 1, Disabled: 1}, stats)
	require.Equal(t, TokenStats{Total: 1, Active: 1}, ComputeTokenStats(nil, testNow))
}

func TestSessionExpiredAt(t *testing.T) {
	t.Parallel()

	s := Session{Token: DefaultTokenValue, ExpiresAt: testNow.Add(SessionTTL)}
	require.False(t, s.ExpiredAt(testNow))
	require.True(t, s.ExpiredAt(testNow.Add(SessionTTL)))
}

func TestInvitationActionable(t *testing.T) {
	t.Parallel()

	inv := Invitation{Status: InvitationPending, CreatedAt: testNow, ExpiresAt: testNow.Add(InvitationTTL)}
	require.True(t, inv.Actionable(testNow))
	require.False(t, inv.Actionable(testNow.Add(InvitationTTL)))

	inv.Status = InvitationAccepted
	require.False(t, inv.Actionable(testNow))
	require.True(t, inv.Status.Terminal())
	require.False(t, InvitationPending.Terminal())
}

func TestParseDecision(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]InvitationStatus{
		"accepted":   InvitationAccepted,
		"REJECTED":   InvitationRejected,
		" accepted ": InvitationAccepted,
	} {
		got, ok := ParseDecision(in)
		require.True(t, ok, in)
		require.Equal(t, want, got)
	}

	for _, in := range []string{"pending", "", "accept", "maybe"} {
		_, ok := ParseDecision(in)
		require.False(t, ok, in)
	}
}

func TestDefaultInvitationMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Alice wants to share their Tasks data with you.", DefaultInvitationMessage("Alice", "todos"))
	require.Equal(t, "Someone wants to share their Photo Gallery data with you.", DefaultInvitationMessage("", "photos"))
	require.Equal(t, "Bob wants to share their recipes data with you.", DefaultInvitationMessage("Bob", "recipes"))
}

func TestMaskToken(t *testing.T) {
	t.Parallel()
	require.Equal(t, "5419****", MaskToken(DefaultTokenValue))
}
