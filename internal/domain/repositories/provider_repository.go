package repositories

import (
	"context"

	"github.com/rios0rios0/depbot/internal/domain/entities"
)

// ProviderRepository is the capability set of a git forge (GitHub, GitLab).
// The run command never branches on which forge it is talking to.
type ProviderRepository interface {
	// Name returns the provider type, e.g. "github".
	Name() string

	// Authenticate sets the credential used by every later call.
	Authenticate(ctx context.Context, token string) error

	RepoIsPrivate(ctx context.Context, owner, repo string) (bool, error)
	GetDefaultBranch(ctx context.Context, owner, repo string) (string, error)

	// GetBranchesFlattened returns every branch name on the remote.
	GetBranchesFlattened(ctx context.Context, owner, repo string) (map[string]struct{}, error)

	// GetDefaultBase returns the head commit of the default branch, or ""
	// when it cannot be resolved. An empty base disables staleness checks.
	GetDefaultBase(ctx context.Context, owner, repo, defaultBranch string) (string, error)

	// GetPrsNamed returns the open requests keyed by their source branch.
	GetPrsNamed(ctx context.Context, owner, repo string) (entities.ExistingRequestIndex, error)

	// CreateFork fails with entities.ErrUnsupportedOperation on forges that
	// only support same-repository requests.
	CreateFork(ctx context.Context, owner, repo, forkOwner string) (*entities.Repository, error)

	// CreatePullRequest fails with entities.ErrValidation when the forge
	// rejects the request (duplicate, no diff, protected branch).
	CreatePullRequest(
		ctx context.Context,
		owner, repo string,
		input entities.PullRequestInput,
	) (*entities.PullRequest, error)

	// CloneURL returns an authenticated HTTPS clone URL.
	CloneURL(owner, repo string) string
}
