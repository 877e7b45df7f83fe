//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depbot/internal/domain/entities"
)

func TestParseRepositorySlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		raw           string
		expectedHost  string
		expectedOwner string
		expectedName  string
	}{
		{
			name:          "should default to github.com for owner/name",
			raw:           "acme/app",
			expectedHost:  "github.com",
			expectedOwner: "acme",
			expectedName:  "app",
		},
		{
			name:          "should read the host from the first segment when it looks like a domain",
			raw:           "gitlab.example.com/group/sub/app",
			expectedHost:  "gitlab.example.com",
			expectedOwner: "group/sub",
			expectedName:  "app",
		},
		{
			name:          "should parse an HTTPS clone URL",
			raw:           "https://github.com/acme/app.git",
			expectedHost:  "github.com",
			expectedOwner: "acme",
			expectedName:  "app",
		},
		{
			name:          "should parse an SSH remote",
			raw:           "git@gitlab.com:group/app.git",
			expectedHost:  "gitlab.com",
			expectedOwner: "group",
			expectedName:  "app",
		},
		{
			name:          "should lowercase the host",
			raw:           "https://GitHub.com/acme/app/",
			expectedHost:  "github.com",
			expectedOwner: "acme",
			expectedName:  "app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			raw := tt.raw

			// when
			slug, err := entities.ParseRepositorySlug(raw)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.expectedHost, slug.Host())
			assert.Equal(t, tt.expectedOwner, slug.Owner())
			assert.Equal(t, tt.expectedName, slug.Name())
			assert.Equal(t, tt.expectedOwner+"/"+tt.expectedName, slug.String())
		})
	}

	t.Run("should reject malformed input with a parse error", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "   ", "justname", "a/b/c", "git@github.com", "acme//app"} {
			// when
			_, err := entities.ParseRepositorySlug(raw)

			// then
			require.Error(t, err, raw)
			assert.ErrorIs(t, err, entities.ErrParse, raw)
		}
	})
}

func TestRepositorySlugCacheKey(t *testing.T) {
	t.Parallel()

	t.Run("should be a stable hex digest of owner/name", func(t *testing.T) {
		t.Parallel()

		// given
		slug := entities.NewRepositorySlug("github.com", "acme", "app")

		// when
		key := slug.CacheKey()

		// then
		assert.Len(t, key, 32)
		assert.Equal(t, entities.HashKey("acme/app"), key)
		assert.NotEqual(t, entities.HashKey("acme/other"), key)
	})

	t.Run("should report a zero slug", func(t *testing.T) {
		t.Parallel()

		// given
		var slug entities.RepositorySlug

		// when
		zero := slug.IsZero()

		// then
		assert.True(t, zero)
		assert.False(t, entities.NewRepositorySlug("github.com", "acme", "app").IsZero())
	})
}
