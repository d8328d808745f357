package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/types"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdentity = types.Identity{Subject: "0b1c-sub", Email: "ana@habo.dev", Username: "ana"}

func mustIssuer(t *testing.T, secret string, opts ...Option) *Issuer {
	t.Helper()
	iss, err := NewIssuer(secret, opts...)
	require.NoError(t, err)
	return iss
}

func TestMintVerifyRoundTrip(t *testing.T) {
	iss := mustIssuer(t, "s3cret")

	ids := []types.Identity{
		testIdentity,
		{Subject: "only-sub"},
		{Subject: "ñandú", Email: "x@y.z", Username: "usuario con espacios"},
	}
	for _, id := range ids {
		tok, exp, err := iss.Mint(id)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

		got, err := iss.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestVerifyExpired(t *testing.T) {
	past := time.Now().Add(-25 * time.Hour)
	old := mustIssuer(t, "s3cret", WithClock(func() time.Time { return past }))
	tok, _, err := old.Mint(testIdentity)
	require.NoError(t, err)

	_, err = mustIssuer(t, "s3cret").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejects(t *testing.T) {
	iss := mustIssuer(t, "s3cret")
	good, _, err := iss.Mint(testIdentity)
	require.NoError(t, err)

	otherKey, _, err := mustIssuer(t, "otro").Mint(testIdentity)
	require.NoError(t, err)

	none := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{
		"sub": "x", "iss": DefaultIssuer, "exp": time.Now().Add(time.Hour).Unix(),
	})
	noneTok, err := none.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{"sub": "x", "iss": DefaultIssuer})
	noExpTok, err := noExp.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	wrongIss := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"sub": "x", "iss": "otro", "exp": time.Now().Add(time.Hour).Unix(),
	})
	wrongIssTok, err := wrongIss.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	cases := map[string]string{
		"empty":       "",
		"garbage":     "not-a-jwt",
		"other key":   otherKey,
		"alg none":    noneTok,
		"missing exp": noExpTok,
		"wrong iss":   wrongIssTok,
		"tampered":    tampered,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := iss.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Equal(t, ErrInvalidToken, err)
		})
	}
}

func TestMintRequiresSubject(t *testing.T) {
	_, _, err := mustIssuer(t, "s3cret").Mint(types.Identity{Email: "a@b.c"})
	require.Error(t, err)
}

func TestNewIssuerEmptySecret(t *testing.T) {
	_, err := NewIssuer("  ")
	require.Error(t, err)
}

func TestWithTTL(t *testing.T) {
	iss := mustIssuer(t, "s3cret", WithTTL(time.Minute))
	_, exp, err := iss.Mint(testIdentity)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)
}
