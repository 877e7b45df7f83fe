//go:build unit

package composer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/infrastructure/repositories/composer"
)

func TestParseOutdated(t *testing.T) {
	t.Parallel()

	t.Run("should parse the installed list and classify each update", func(t *testing.T) {
		t.Parallel()

		// given
		repository := composer.NewPackageManagerRepository()
		output := `{"installed": [
			{"name": "acme/lib", "version": "1.2.0", "latest": "1.3.0", "latest-status": "semver-safe-update"},
			{"name": "acme/util", "version": "2.0.1", "latest": "2.0.4", "latest-status": "semver-safe-update"}
		]}`

		// when
		dependencies, err := repository.ParseOutdated(output)

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.OutdatedDependency{
			{
				Name: "acme/lib", Version: "1.2.0", Latest: "1.3.0",
				LatestStatus: "semver-safe-update", UpdateType: entities.UpdateTypeMinor,
			},
			{
				Name: "acme/util", Version: "2.0.1", Latest: "2.0.4",
				LatestStatus: "semver-safe-update", UpdateType: entities.UpdateTypePatch,
			},
		}, dependencies)
	})

	t.Run("should ignore warnings printed before the report", func(t *testing.T) {
		t.Parallel()

		// given
		repository := composer.NewPackageManagerRepository()
		output := "Deprecation warning: require.foo is invalid\n" +
			`{"installed": [{"name": "acme/lib", "version": "1.2.0", "latest": "1.3.0"}]}`

		// when
		dependencies, err := repository.ParseOutdated(output)

		// then
		require.NoError(t, err)
		require.Len(t, dependencies, 1)
		assert.Equal(t, "acme/lib", dependencies[0].Name)
	})

	t.Run("should treat empty output as nothing outdated", func(t *testing.T) {
		t.Parallel()

		// given
		repository := composer.NewPackageManagerRepository()

		// when
		dependencies, err := repository.ParseOutdated("  \n")

		// then
		require.NoError(t, err)
		assert.Empty(t, dependencies)
	})

	t.Run("should fail with a parse error for unexpected output", func(t *testing.T) {
		t.Parallel()

		// given
		repository := composer.NewPackageManagerRepository()
		outputs := []string{
			"Composer could not find a composer.json file",
			`{"unexpected": []}`,
			`{"installed": [{"name": "acme/lib"}]}`,
			`{"installed": "nope"}`,
		}

		for _, output := range outputs {
			// when
			_, err := repository.ParseOutdated(output)

			// then
			require.Error(t, err, output)
			assert.ErrorIs(t, err, entities.ErrParse, output)
		}
	})
}

func TestComposerCommands(t *testing.T) {
	t.Parallel()

	t.Run("should only list direct minor updates as JSON", func(t *testing.T) {
		t.Parallel()

		// given
		repository := composer.NewPackageManagerRepository()

		// when
		command := repository.OutdatedCommand()

		// then
		assert.Equal(t, "composer outdated --no-ansi --direct --minor-only --format=json", command.String())
		assert.Contains(t, command.Env, "COMPOSER_ALLOW_SUPERUSER=1")
	})

	t.Run("should require development packages with the dev flag", func(t *testing.T) {
		t.Parallel()

		// given
		repository := composer.NewPackageManagerRepository()

		// when
		command := repository.RequireCommand("acme/lib", "^1.3.0", true, false)

		// then
		assert.Equal(t, "composer --no-ansi require --dev acme/lib:^1.3.0", command.String())
	})

	t.Run("should update with dependencies and discard local changes", func(t *testing.T) {
		t.Parallel()

		// given
		repository := composer.NewPackageManagerRepository()

		// when
		command := repository.UpdateCommand("acme/lib")

		// then
		assert.Equal(t, "composer --no-ansi update -n --no-scripts --with-dependencies acme/lib", command.String())
		assert.Contains(t, command.Env, "COMPOSER_DISCARD_CHANGES=true")
	})

	t.Run("should pick the auth key from the forge type", func(t *testing.T) {
		t.Parallel()

		// given
		repository := composer.NewPackageManagerRepository()

		// when
		github := repository.AuthCommand(entities.ProviderTypeGitHub, "github.com", "ghp")
		gitlab := repository.AuthCommand(entities.ProviderTypeGitLab, "gitlab.example.com", "glpat")

		// then
		assert.Equal(t, []string{"config", "--auth", "github-oauth.github.com", "ghp"}, github.Args)
		assert.Equal(t, []string{"config", "--auth", "gitlab-token.gitlab.example.com", "glpat"}, gitlab.Args)
		assert.Equal(t, "composer config --auth github-oauth.github.com ***", github.String())
		assert.Equal(t, "composer config --auth gitlab-token.gitlab.example.com ***", gitlab.String())
	})

	t.Run("should run a custom binary", func(t *testing.T) {
		t.Parallel()

		// given
		repository := composer.NewPackageManagerRepository()

		// when
		command := repository.WithBinary("/opt/composer.phar").InstallCommand()

		// then
		assert.Equal(t, "/opt/composer.phar install --no-ansi -n --no-scripts", command.String())
		assert.Equal(t, "composer.json", repository.ManifestFile())
		assert.Equal(t, "composer.lock", repository.LockFile())
	})
}
