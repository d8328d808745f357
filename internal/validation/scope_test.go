package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidScopeName(t *testing.T) {
	valid := []string{"openid", "email", "profile", "aws.cognito.signin.user.admin", "https://api.habo.dev/read", "a"}
	invalid := []string{"", "has space", `quote"`, `back\slash`, "ñ", strings.Repeat("a", 257)}

	for _, s := range valid {
		assert.True(t, ValidScopeName(s), s)
	}
	for _, s := range invalid {
		assert.False(t, ValidScopeName(s), s)
	}
}

func TestScopes(t *testing.T) {
	assert.NoError(t, Scopes(nil))
	assert.NoError(t, Scopes([]string{"openid", "email", "profile"}))

	assert.ErrorContains(t, Scopes([]string{"email", "profile"}), "openid")
	assert.ErrorContains(t, Scopes([]string{"openid", "email", "email"}), "duplicated")
	assert.ErrorContains(t, Scopes([]string{"openid", "bad scope"}), "invalid")
}
