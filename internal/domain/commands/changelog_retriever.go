package commands

import (
	"context"
	"fmt"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/domain/repositories"
)

// ChangelogRetriever builds the commit log between two versions of a
// dependency from a local mirror of the dependency's own repository.
type ChangelogRetriever struct {
	repository repositories.ChangelogRepository
}

// NewChangelogRetriever creates a ChangelogRetriever.
func NewChangelogRetriever(repository repositories.ChangelogRepository) *ChangelogRetriever {
	return &ChangelogRetriever{repository: repository}
}

// Retrieve looks the dependency up in lockfile to find its source. It fails
// with entities.ErrNoSource when the package is not installed from git and
// with entities.ErrEmptyChangelog when the range has no commits.
func (it *ChangelogRetriever) Retrieve(
	ctx context.Context,
	mirrorDir, name string,
	lockfile *entities.Lockfile,
	versionFrom, versionTo string,
) (*entities.ChangeLogData, error) {
	pkg, err := lockfile.Package(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrNoSource, err)
	}
	if !pkg.IsVersionControlled() {
		return nil, fmt.Errorf("%w: %q", entities.ErrNoSource, name)
	}

	mirrorPath, err := it.repository.Mirror(ctx, mirrorDir, name, pkg.Source.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to mirror %q: %w", entities.ErrChangelog, name, err)
	}

	lines, err := it.repository.CommitRange(ctx, mirrorPath, versionFrom, versionTo)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s..%s of %q: %w",
			entities.ErrChangelog, versionFrom, versionTo, name, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s..%s of %q", entities.ErrEmptyChangelog, versionFrom, versionTo, name)
	}

	changelog := entities.NewChangeLogData(lines, pkg.Source.URL, versionTo)
	return &changelog, nil
}
