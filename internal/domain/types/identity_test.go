package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserInfoClaimsUsernameFallback(t *testing.T) {
	tests := []struct {
		name   string
		claims UserInfoClaims
		want   string
	}{
		{"username", UserInfoClaims{Sub: "s", Email: "e@x.io", Username: "ana"}, "ana"},
		{"cognito username", UserInfoClaims{Sub: "s", Email: "e@x.io", CognitoUsername: "ana-c"}, "ana-c"},
		{"email", UserInfoClaims{Sub: "s", Email: "e@x.io"}, "e@x.io"},
		{"sub", UserInfoClaims{Sub: "s"}, "s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.claims.Identity()
			assert.Equal(t, tt.want, id.Username)
			assert.Equal(t, tt.claims.Sub, id.Subject)
		})
	}
}

func TestIdentityIsZero(t *testing.T) {
	assert.True(t, Identity{}.IsZero())
	assert.False(t, Identity{Subject: "abc"}.IsZero())
}
