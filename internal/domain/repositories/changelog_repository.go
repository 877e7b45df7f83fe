package repositories

import (
	"context"
)

// ChangelogRepository keeps local mirrors of dependency repositories.
type ChangelogRepository interface {
	// Mirror clones the repository under baseDir on first sight and refreshes
	// it after that. Refresh failures are tolerated since a stale mirror is
	// still usable. It returns the mirror path.
	Mirror(ctx context.Context, baseDir, name, url string) (string, error)

	// CommitRange lists "<short sha> <subject>" for the commits reachable
	// from to and not from from, newest first.
	CommitRange(ctx context.Context, mirrorPath, from, to string) ([]string, error)
}
