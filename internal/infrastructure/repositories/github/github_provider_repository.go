package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v66/github"
	"github.com/gregjones/httpcache"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/domain/repositories"
)

const (
	providerName = "github"
	publicHost   = "github.com"
	perPage      = 100
)

// GitHubProviderRepository implements repositories.ProviderRepository for
// github.com and GitHub Enterprise hosts.
type GitHubProviderRepository struct {
	host   string
	token  string
	client *gh.Client
}

// NewGitHubProviderRepository builds the client on the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (REST client, token added by Authenticate)
func NewGitHubProviderRepository(config entities.ProviderConfig) repositories.ProviderRepository {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)

	host := config.Host
	if host == "" {
		host = publicHost
	}
	if !strings.EqualFold(host, publicHost) {
		enterprise, err := client.WithEnterpriseURLs(
			"https://"+host+"/api/v3/", "https://"+host+"/api/uploads/",
		)
		if err == nil {
			client = enterprise
		}
	}

	return &GitHubProviderRepository{host: host, token: config.Token, client: client}
}

// NewGitHubProviderRepositoryWithClient targets an arbitrary API base URL.
// It is used to point the provider at an httptest server.
func NewGitHubProviderRepositoryWithClient(
	httpClient *http.Client,
	baseURL, host string,
) (*GitHubProviderRepository, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	client.BaseURL = u

	return &GitHubProviderRepository{host: host, client: client}, nil
}

func (p *GitHubProviderRepository) Name() string { return providerName }

// Authenticate attaches token to every later request. An empty token keeps
// the client anonymous, which is enough for public repositories.
func (p *GitHubProviderRepository) Authenticate(_ context.Context, token string) error {
	p.token = token
	if token == "" {
		return nil
	}
	p.client = p.client.WithAuthToken(token)
	return nil
}

func (p *GitHubProviderRepository) RepoIsPrivate(ctx context.Context, owner, repo string) (bool, error) {
	repository, _, err := p.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return false, fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return repository.GetPrivate(), nil
}

func (p *GitHubProviderRepository) GetDefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	repository, _, err := p.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return repository.GetDefaultBranch(), nil
}

func (p *GitHubProviderRepository) GetBranchesFlattened(
	ctx context.Context,
	owner, repo string,
) (map[string]struct{}, error) {
	branches := make(map[string]struct{})
	opts := &gh.BranchListOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	for {
		page, resp, err := p.client.Repositories.ListBranches(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list branches of %s/%s: %w", owner, repo, err)
		}

		for _, branch := range page {
			branches[branch.GetName()] = struct{}{}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return branches, nil
}

func (p *GitHubProviderRepository) GetDefaultBase(
	ctx context.Context,
	owner, repo, defaultBranch string,
) (string, error) {
	branch, _, err := p.client.Repositories.GetBranch(ctx, owner, repo, defaultBranch, 1)
	if err != nil {
		return "", fmt.Errorf("failed to get branch %q: %w", defaultBranch, err)
	}
	return branch.GetCommit().GetSHA(), nil
}

func (p *GitHubProviderRepository) GetPrsNamed(
	ctx context.Context,
	owner, repo string,
) (entities.ExistingRequestIndex, error) {
	requests := make(entities.ExistingRequestIndex)
	opts := &gh.PullRequestListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	for {
		prs, resp, err := p.client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}

		for _, pr := range prs {
			head := pr.GetHead().GetRef()
			requests[head] = entities.PullRequestRecord{
				Number:     pr.GetNumber(),
				Title:      pr.GetTitle(),
				URL:        pr.GetHTMLURL(),
				HeadBranch: head,
				BaseSHA:    pr.GetBase().GetSHA(),
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return requests, nil
}

// CreateFork forks into forkOwner. GitHub creates forks asynchronously, an
// accepted-but-pending fork is reported as created.
func (p *GitHubProviderRepository) CreateFork(
	ctx context.Context,
	owner, repo, forkOwner string,
) (*entities.Repository, error) {
	opts := &gh.RepositoryCreateForkOptions{}
	if forkOwner != "" && !p.isAuthenticatedUser(ctx, forkOwner) {
		opts.Organization = forkOwner
	}

	fork, _, err := p.client.Repositories.CreateFork(ctx, owner, repo, opts)
	var accepted *gh.AcceptedError
	if err != nil && !errors.As(err, &accepted) {
		return nil, fmt.Errorf("failed to fork %s/%s: %w", owner, repo, err)
	}
	if fork == nil || fork.GetName() == "" {
		return &entities.Repository{
			Name:         repo,
			Organization: forkOwner,
			ProviderName: providerName,
		}, nil
	}

	return &entities.Repository{
		ID:            strconv.FormatInt(fork.GetID(), 10),
		Name:          fork.GetName(),
		Organization:  fork.GetOwner().GetLogin(),
		DefaultBranch: fork.GetDefaultBranch(),
		RemoteURL:     fork.GetCloneURL(),
		SSHURL:        fork.GetSSHURL(),
		ProviderName:  providerName,
	}, nil
}

func (p *GitHubProviderRepository) isAuthenticatedUser(ctx context.Context, login string) bool {
	user, _, err := p.client.Users.Get(ctx, "")
	if err != nil {
		return false
	}
	return strings.EqualFold(user.GetLogin(), login)
}

func (p *GitHubProviderRepository) CreatePullRequest(
	ctx context.Context,
	owner, repo string,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	sourceBranch := strings.TrimPrefix(input.SourceBranch, "refs/heads/")
	targetBranch := strings.TrimPrefix(input.TargetBranch, "refs/heads/")

	maintainerCanModify := true
	pr, _, err := p.client.PullRequests.Create(
		ctx, owner, repo,
		&gh.NewPullRequest{
			Title:               &input.Title,
			Head:                &sourceBranch,
			Base:                &targetBranch,
			Body:                &input.Description,
			MaintainerCanModify: &maintainerCanModify,
		},
	)
	if err != nil {
		var errorResponse *gh.ErrorResponse
		if errors.As(err, &errorResponse) && errorResponse.Response != nil &&
			errorResponse.Response.StatusCode == http.StatusUnprocessableEntity {
			return nil, fmt.Errorf("%w: %s", entities.ErrValidation, errorResponse.Message)
		}
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	return &entities.PullRequest{
		ID:     pr.GetNumber(),
		Title:  pr.GetTitle(),
		URL:    pr.GetHTMLURL(),
		Status: pr.GetState(),
	}, nil
}

func (p *GitHubProviderRepository) CloneURL(owner, repo string) string {
	if p.token == "" {
		return fmt.Sprintf("https://%s/%s/%s.git", p.host, owner, repo)
	}
	return fmt.Sprintf("https://x-access-token:%s@%s/%s/%s.git", p.token, p.host, owner, repo)
}
