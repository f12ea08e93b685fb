package cycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-cycle/internal/cycle"
)

func TestThemes_Catalog(t *testing.T) {
	themes := cycle.Themes()
	require.Len(t, themes, 5)
	assert.Equal(t, "default", themes[0].Key)

	seen := map[string]bool{}
	for _, th := range themes {
		assert.NotEmpty(t, th.Name)
		assert.NotEmpty(t, th.Description)
		assert.False(t, seen[th.Key], "duplicate key %s", th.Key)
		seen[th.Key] = true
	}

	// Callers cannot mutate the catalog through the returned slice.
	themes[0].Name = "Hacked"
	assert.Equal(t, "Classic", cycle.Themes()[0].Name)
}

func TestResolveTheme(t *testing.T) {
	assert.Equal(t, "dark", cycle.ResolveTheme("dark").Key)
	assert.Equal(t, "default", cycle.ResolveTheme("").Key)
	assert.Equal(t, "default", cycle.ResolveTheme("neon").Key)

	_, err := cycle.LookupTheme("neon")
	assert.ErrorIs(t, err, cycle.ErrUnknownTheme)
}
