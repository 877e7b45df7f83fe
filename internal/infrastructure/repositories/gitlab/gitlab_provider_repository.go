package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/domain/repositories"
)

const (
	providerName = "gitlab"
	publicHost   = "gitlab.com"
	perPage      = 100
	openedState  = "opened"
)

var errClientNotInitialized = errors.New("gitlab client not initialized")

// GitLabProviderRepository implements repositories.ProviderRepository for
// gitlab.com and self-hosted GitLab instances. Merge requests are always
// opened from a branch of the same project, so it has no fork support.
type GitLabProviderRepository struct {
	host       string
	baseURL    string
	token      string
	httpClient *http.Client
	client     *gl.Client
}

// NewGitLabProviderRepository creates a provider for the configured host.
// The client itself is built by Authenticate.
func NewGitLabProviderRepository(config entities.ProviderConfig) repositories.ProviderRepository {
	host := config.Host
	if host == "" {
		host = publicHost
	}
	return &GitLabProviderRepository{
		host:    host,
		baseURL: "https://" + host + "/api/v4",
		token:   config.Token,
	}
}

// NewGitLabProviderRepositoryWithClient targets an arbitrary API base URL.
// It is used to point the provider at an httptest server.
func NewGitLabProviderRepositoryWithClient(
	httpClient *http.Client,
	baseURL, host string,
) *GitLabProviderRepository {
	return &GitLabProviderRepository{
		host:       host,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (p *GitLabProviderRepository) Name() string { return providerName }

func (p *GitLabProviderRepository) Authenticate(_ context.Context, token string) error {
	options := []gl.ClientOptionFunc{gl.WithBaseURL(p.baseURL)}
	if p.httpClient != nil {
		options = append(options, gl.WithHTTPClient(p.httpClient))
	}

	client, err := gl.NewClient(token, options...)
	if err != nil {
		return fmt.Errorf("failed to create gitlab client: %w", err)
	}
	p.token = token
	p.client = client
	return nil
}

// RepoIsPrivate always reports true so that branches are pushed to the
// project itself instead of a fork.
func (p *GitLabProviderRepository) RepoIsPrivate(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

func (p *GitLabProviderRepository) GetDefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	if p.client == nil {
		return "", errClientNotInitialized
	}

	project, _, err := p.client.Projects.GetProject(projectID(owner, repo), nil, gl.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get project %s: %w", projectID(owner, repo), err)
	}
	return project.DefaultBranch, nil
}

func (p *GitLabProviderRepository) GetBranchesFlattened(
	ctx context.Context,
	owner, repo string,
) (map[string]struct{}, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	branches := make(map[string]struct{})
	opts := &gl.ListBranchesOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
	}

	pid := projectID(owner, repo)
	for {
		page, resp, err := p.client.Branches.ListBranches(pid, opts, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list branches of %s: %w", pid, err)
		}

		for _, branch := range page {
			branches[branch.Name] = struct{}{}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return branches, nil
}

func (p *GitLabProviderRepository) GetDefaultBase(
	ctx context.Context,
	owner, repo, defaultBranch string,
) (string, error) {
	if p.client == nil {
		return "", errClientNotInitialized
	}

	branch, _, err := p.client.Branches.GetBranch(projectID(owner, repo), defaultBranch, gl.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get branch %q: %w", defaultBranch, err)
	}
	if branch.Commit == nil {
		return "", nil
	}
	return branch.Commit.ID, nil
}

// GetPrsNamed lists open merge requests. The list endpoint omits diff refs,
// so every request is fetched once more to read its base commit.
func (p *GitLabProviderRepository) GetPrsNamed(
	ctx context.Context,
	owner, repo string,
) (entities.ExistingRequestIndex, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	requests := make(entities.ExistingRequestIndex)
	opts := &gl.ListProjectMergeRequestsOptions{
		State:       gl.Ptr(openedState),
		ListOptions: gl.ListOptions{PerPage: perPage},
	}

	pid := projectID(owner, repo)
	for {
		mrs, resp, err := p.client.MergeRequests.ListProjectMergeRequests(pid, opts, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list merge requests: %w", err)
		}

		for _, mr := range mrs {
			record := entities.PullRequestRecord{
				Number:     int(mr.IID),
				Title:      mr.Title,
				URL:        mr.WebURL,
				HeadBranch: mr.SourceBranch,
			}
			detailed, _, detailErr := p.client.MergeRequests.GetMergeRequest(pid, mr.IID, nil, gl.WithContext(ctx))
			if detailErr == nil && detailed != nil {
				record.BaseSHA = detailed.DiffRefs.BaseSha
			}
			requests[mr.SourceBranch] = record
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return requests, nil
}

func (p *GitLabProviderRepository) CreateFork(
	_ context.Context,
	_, _, _ string,
) (*entities.Repository, error) {
	return nil, fmt.Errorf("%w: gitlab merge requests are opened from the same project", entities.ErrUnsupportedOperation)
}

func (p *GitLabProviderRepository) CreatePullRequest(
	ctx context.Context,
	owner, repo string,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	sourceBranch := strings.TrimPrefix(input.SourceBranch, "refs/heads/")
	targetBranch := strings.TrimPrefix(input.TargetBranch, "refs/heads/")

	mr, _, err := p.client.MergeRequests.CreateMergeRequest(
		projectID(owner, repo),
		&gl.CreateMergeRequestOptions{
			Title:        gl.Ptr(input.Title),
			Description:  gl.Ptr(input.Description),
			SourceBranch: gl.Ptr(sourceBranch),
			TargetBranch: gl.Ptr(targetBranch),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		var errorResponse *gl.ErrorResponse
		if errors.As(err, &errorResponse) && errorResponse.Response != nil &&
			(errorResponse.Response.StatusCode == http.StatusConflict ||
				errorResponse.Response.StatusCode == http.StatusUnprocessableEntity) {
			return nil, fmt.Errorf("%w: %s", entities.ErrValidation, errorResponse.Message)
		}
		return nil, fmt.Errorf("failed to create merge request: %w", err)
	}

	return &entities.PullRequest{
		ID:     int(mr.IID),
		Title:  mr.Title,
		URL:    mr.WebURL,
		Status: mr.State,
	}, nil
}

func (p *GitLabProviderRepository) CloneURL(owner, repo string) string {
	if p.token == "" {
		return fmt.Sprintf("https://%s/%s/%s.git", p.host, owner, repo)
	}
	return fmt.Sprintf("https://oauth2:%s@%s/%s/%s.git", p.token, p.host, owner, repo)
}

func projectID(owner, repo string) string {
	return owner + "/" + repo
}
