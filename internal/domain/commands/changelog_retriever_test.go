//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depbot/internal/domain/commands"
	"github.com/rios0rios0/depbot/internal/domain/entities"
	doubles "github.com/rios0rios0/depbot/test/infrastructure/repositorydoubles"
)

func gitLockfile(reference string) *entities.Lockfile {
	return &entities.Lockfile{Packages: []entities.LockedPackage{{
		Name:    "acme/lib",
		Version: "1.2.0",
		Source: &entities.PackageSource{
			Type:      "git",
			URL:       "https://github.com/acme/lib.git",
			Reference: reference,
		},
	}}}
}

func TestChangelogRetrieverRetrieve(t *testing.T) {
	t.Parallel()

	t.Run("should read the commit range from the dependency mirror", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &doubles.StubChangelogRepository{
			MirrorPath: "/mirrors/acme-lib",
			Lines:      []string{"bbbbbbb Add feature", "ccccccc Fix bug"},
		}
		retriever := commands.NewChangelogRetriever(stub)

		// when
		changelog, err := retriever.Retrieve(
			context.Background(), "/mirrors", "acme/lib", gitLockfile("aaaaaaa"), "aaaaaaa", "ccccccc")

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"bbbbbbb Add feature", "ccccccc Fix bug"}, changelog.Lines)
		assert.Equal(t, "https://github.com/acme/lib", changelog.GitSource)
		assert.Equal(t, []string{"https://github.com/acme/lib.git"}, stub.MirrorURLs)
		assert.Equal(t, [][2]string{{"aaaaaaa", "ccccccc"}}, stub.RangeCalls)
	})

	t.Run("should fail without a source when the package is not from git", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &doubles.StubChangelogRepository{}
		retriever := commands.NewChangelogRetriever(stub)
		lockfile := &entities.Lockfile{Packages: []entities.LockedPackage{{Name: "acme/lib", Version: "1.2.0"}}}

		// when
		_, err := retriever.Retrieve(context.Background(), "/mirrors", "acme/lib", lockfile, "1.2.0", "1.3.0")

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrNoSource)
		assert.Empty(t, stub.MirrorURLs)
	})

	t.Run("should fail without a source when the package is not locked", func(t *testing.T) {
		t.Parallel()

		// given
		retriever := commands.NewChangelogRetriever(&doubles.StubChangelogRepository{})

		// when
		_, err := retriever.Retrieve(context.Background(), "/mirrors", "acme/lib", nil, "1.2.0", "1.3.0")

		// then
		assert.ErrorIs(t, err, entities.ErrNoSource)
	})

	t.Run("should wrap mirror failures", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &doubles.StubChangelogRepository{MirrorErr: errors.New("network unreachable")}
		retriever := commands.NewChangelogRetriever(stub)

		// when
		_, err := retriever.Retrieve(
			context.Background(), "/mirrors", "acme/lib", gitLockfile("aaaaaaa"), "aaaaaaa", "bbbbbbb")

		// then
		assert.ErrorIs(t, err, entities.ErrChangelog)
		assert.Empty(t, stub.RangeCalls)
	})

	t.Run("should report an empty range", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &doubles.StubChangelogRepository{MirrorPath: "/mirrors/acme-lib"}
		retriever := commands.NewChangelogRetriever(stub)

		// when
		_, err := retriever.Retrieve(
			context.Background(), "/mirrors", "acme/lib", gitLockfile("aaaaaaa"), "aaaaaaa", "aaaaaaa")

		// then
		assert.ErrorIs(t, err, entities.ErrEmptyChangelog)
	})
}
