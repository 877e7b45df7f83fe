package entities

import (
	gitforgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
)

// PullRequestInput is re-exported from gitforge.
type PullRequestInput = gitforgeEntities.PullRequestInput

// PullRequest is re-exported from gitforge.
type PullRequest = gitforgeEntities.PullRequest

// PullRequestRecord is an open pull or merge request as seen on the forge.
type PullRequestRecord struct {
	Number     int
	Title      string
	URL        string
	HeadBranch string
	// BaseSHA is the commit of the target branch the request was opened against.
	BaseSHA string
}

// ExistingRequestIndex maps a source branch name to its open request.
type ExistingRequestIndex map[string]PullRequestRecord
