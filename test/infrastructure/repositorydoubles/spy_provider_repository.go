//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/domain/repositories"
)

// SpyProviderRepository implements repositories.ProviderRepository as a configurable spy.
type SpyProviderRepository struct {
	// --- identity ---
	ProviderName string
	Token        string
	AuthErr      error

	// --- RepoIsPrivate ---
	Private    bool
	PrivateErr error

	// --- GetDefaultBranch ---
	DefaultBranch    string
	DefaultBranchErr error

	// --- GetBranchesFlattened ---
	Branches       []string
	BranchesErr    error
	BranchesOwners []string

	// --- GetDefaultBase ---
	DefaultBase        string
	DefaultBaseErr     error
	DefaultBaseByOwner map[string]string // answers for these owners win over DefaultBase
	DefaultBaseOwners  []string

	// --- GetPrsNamed ---
	Requests    entities.ExistingRequestIndex
	RequestsErr error

	// --- CreateFork ---
	Fork       *entities.Repository
	ForkErr    error
	ForkOwners []string

	// --- CreatePullRequest ---
	CreatedPR   *entities.PullRequest
	CreatePRErr error
	PRInputs    []entities.PullRequestInput
}

var _ repositories.ProviderRepository = (*SpyProviderRepository)(nil)

func (p *SpyProviderRepository) Name() string { return p.ProviderName }

func (p *SpyProviderRepository) Authenticate(_ context.Context, token string) error {
	p.Token = token
	return p.AuthErr
}

func (p *SpyProviderRepository) RepoIsPrivate(_ context.Context, _, _ string) (bool, error) {
	return p.Private, p.PrivateErr
}

func (p *SpyProviderRepository) GetDefaultBranch(_ context.Context, _, _ string) (string, error) {
	return p.DefaultBranch, p.DefaultBranchErr
}

func (p *SpyProviderRepository) GetBranchesFlattened(
	_ context.Context, owner, _ string,
) (map[string]struct{}, error) {
	p.BranchesOwners = append(p.BranchesOwners, owner)
	if p.BranchesErr != nil {
		return nil, p.BranchesErr
	}
	branches := make(map[string]struct{}, len(p.Branches))
	for _, branch := range p.Branches {
		branches[branch] = struct{}{}
	}
	return branches, nil
}

func (p *SpyProviderRepository) GetDefaultBase(_ context.Context, owner, _, _ string) (string, error) {
	p.DefaultBaseOwners = append(p.DefaultBaseOwners, owner)
	if base, ok := p.DefaultBaseByOwner[owner]; ok {
		return base, nil
	}
	return p.DefaultBase, p.DefaultBaseErr
}

func (p *SpyProviderRepository) GetPrsNamed(_ context.Context, _, _ string) (entities.ExistingRequestIndex, error) {
	if p.RequestsErr != nil {
		return nil, p.RequestsErr
	}
	if p.Requests == nil {
		return entities.ExistingRequestIndex{}, nil
	}
	return p.Requests, nil
}

func (p *SpyProviderRepository) CreateFork(
	_ context.Context, _, repo, forkOwner string,
) (*entities.Repository, error) {
	p.ForkOwners = append(p.ForkOwners, forkOwner)
	if p.ForkErr != nil {
		return nil, p.ForkErr
	}
	if p.Fork != nil {
		return p.Fork, nil
	}
	return &entities.Repository{Name: repo, Organization: forkOwner}, nil
}

func (p *SpyProviderRepository) CreatePullRequest(
	_ context.Context, owner, repo string, input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	p.PRInputs = append(p.PRInputs, input)
	if p.CreatePRErr != nil {
		return nil, p.CreatePRErr
	}
	if p.CreatedPR != nil {
		return p.CreatedPR, nil
	}
	number := len(p.PRInputs)
	return &entities.PullRequest{
		ID:     number,
		Title:  input.Title,
		URL:    fmt.Sprintf("https://example.com/%s/%s/pull/%d", owner, repo, number),
		Status: "open",
	}, nil
}

func (p *SpyProviderRepository) CloneURL(owner, repo string) string {
	return fmt.Sprintf("https://example.com/%s/%s.git", owner, repo)
}
