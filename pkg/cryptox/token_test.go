package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
		len  int
	}{
		{"128-bit token", TokenSize128, 22},
		{"256-bit token", TokenSize256, 43},
		{"custom size", 24, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.len)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestGenerateToken_EntropyQuality(t *testing.T) {
	const count = 100
	tokens := make(map[string]bool, count)

	for range count {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.NotContains(t, tokens, token, "duplicate token generated")
		tokens[token] = true
	}
}

func TestEqualTokens(t *testing.T) {
	require.True(t, EqualTokens("5419810", "5419810"))
	require.False(t, EqualTokens("5419810", "5419811"))
	require.False(t, EqualTokens("5419810", "541981"))
	require.False(t, EqualTokens("", "x"))
}

func TestMaskToken(t *testing.T) {
	require.Equal(t, "5419****", MaskToken("5419810"))
	require.Equal(t, "abcd****", MaskToken("abcdefghijklmnop"))
	require.Equal(t, "****", MaskToken("abcd"))
	require.Equal(t, "****", MaskToken(""))
}
