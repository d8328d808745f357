package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, d := range []Dialect{Postgres, SQLite} {
		migs, err := Parse(d)
		require.NoError(t, err)
		require.NotEmpty(t, migs)
		assert.Equal(t, 1, migs[0].Version)
		assert.Equal(t, "sessions", migs[0].Name)
		assert.Contains(t, migs[0].SQL, "habo_sessions")
	}
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$2", Postgres.Placeholder(2))
	assert.Equal(t, "?", SQLite.Placeholder(2))
}
