package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStateNonceUnique(t *testing.T) {
	seen := make(map[string]struct{}, 2000)
	for i := 0; i < 1000; i++ {
		s, n, err := GenerateStateNonce()
		require.NoError(t, err)
		require.NotEqual(t, s, n)
		for _, v := range []string{s, n} {
			_, dup := seen[v]
			require.False(t, dup, "duplicated value %q", v)
			seen[v] = struct{}{}
		}
	}
}

func TestGenerateOpaqueTokenLength(t *testing.T) {
	v, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	assert.Len(t, v, 43) // 32 bytes base64url sin padding
}

func TestSignerRoundTrip(t *testing.T) {
	s, err := NewSigner([]byte("secret"), "session-cookie")
	require.NoError(t, err)

	signed := s.Sign("abc123")
	got, err := s.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)
}

func TestSignerRejectsTampering(t *testing.T) {
	s, err := NewSigner([]byte("secret"), "session-cookie")
	require.NoError(t, err)
	other, err := NewSigner([]byte("secret"), "other-purpose")
	require.NoError(t, err)

	signed := s.Sign("abc123")
	for _, bad := range []string{"", "abc123", "abc123.", ".mac", "abc124" + signed[6:], other.Sign("abc123")} {
		_, err := s.Verify(bad)
		assert.ErrorIs(t, err, ErrBadSignature, bad)
	}
}

func TestNewSignerEmptySecret(t *testing.T) {
	_, err := NewSigner(nil, "x")
	require.Error(t, err)
}
