package gitmirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/domain/repositories"
)

const shortHashLength = 7

// ChangelogRepository keeps full clones of dependency repositories with go-git.
type ChangelogRepository struct{}

// NewChangelogRepository creates a ChangelogRepository.
func NewChangelogRepository() repositories.ChangelogRepository {
	return &ChangelogRepository{}
}

// Mirror stores the clone at baseDir/md5(name).
func (it *ChangelogRepository) Mirror(ctx context.Context, baseDir, name, url string) (string, error) {
	path := filepath.Join(baseDir, entities.HashKey(name))

	repo, err := git.PlainOpen(path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		logger.Debugf("Cloning %s into %s", name, path)
		_, cloneErr := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
			URL:  url,
			Tags: git.AllTags,
		})
		if cloneErr != nil {
			_ = os.RemoveAll(path)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", fmt.Errorf("%w: cloning %s: %w", entities.ErrCommandTimeout, name, cloneErr)
			}
			return "", fmt.Errorf("failed to clone %s: %w", name, cloneErr)
		}
		return path, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open mirror of %s: %w", name, err)
	}

	it.refresh(ctx, repo, name)
	return path, nil
}

// refresh fetches tags and fast-forwards the checked out branch. Failures
// only mean the mirror may be stale.
func (it *ChangelogRepository) refresh(ctx context.Context, repo *git.Repository, name string) {
	fetchErr := repo.FetchContext(ctx, &git.FetchOptions{Tags: git.AllTags, Force: true})
	if fetchErr != nil && !errors.Is(fetchErr, git.NoErrAlreadyUpToDate) {
		logger.Debugf("Could not fetch mirror of %s: %v", name, fetchErr)
	}
	if ctx.Err() != nil {
		return
	}

	worktree, err := repo.Worktree()
	if err != nil {
		logger.Debugf("Could not open worktree of %s: %v", name, err)
		return
	}
	pullErr := worktree.PullContext(ctx, &git.PullOptions{RemoteName: git.DefaultRemoteName})
	if pullErr != nil && !errors.Is(pullErr, git.NoErrAlreadyUpToDate) {
		logger.Debugf("Could not pull mirror of %s: %v", name, pullErr)
	}
}

// CommitRange lists the commits of from..to, newest first.
func (it *ChangelogRepository) CommitRange(ctx context.Context, mirrorPath, from, to string) ([]string, error) {
	repo, err := git.PlainOpen(mirrorPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror %q: %w", mirrorPath, err)
	}

	toHash, err := resolve(repo, to)
	if err != nil {
		return nil, err
	}
	fromHash, err := resolve(repo, from)
	if err != nil {
		return nil, err
	}

	excluded := make(map[plumbing.Hash]struct{})
	if err = walk(ctx, repo, fromHash, func(commit *object.Commit) {
		excluded[commit.Hash] = struct{}{}
	}); err != nil {
		return nil, err
	}

	var lines []string
	err = walk(ctx, repo, toHash, func(commit *object.Commit) {
		if _, skip := excluded[commit.Hash]; skip {
			return
		}
		subject, _, _ := strings.Cut(strings.TrimSpace(commit.Message), "\n")
		lines = append(lines, commit.Hash.String()[:shortHashLength]+" "+subject)
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func walk(ctx context.Context, repo *git.Repository, from plumbing.Hash, visit func(*object.Commit)) error {
	iter, err := repo.Log(&git.LogOptions{From: from, Order: git.LogOrderCommitterTime})
	if err != nil {
		return fmt.Errorf("failed to read log from %s: %w", from, err)
	}
	defer iter.Close()

	return iter.ForEach(func(commit *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		visit(commit)
		return nil
	})
}

// resolve accepts commit hashes, branches and tags. Version tags are tried
// with and without a "v" prefix.
func resolve(repo *git.Repository, revision string) (plumbing.Hash, error) {
	candidates := []string{revision}
	if strings.HasPrefix(revision, "v") {
		candidates = append(candidates, strings.TrimPrefix(revision, "v"))
	} else {
		candidates = append(candidates, "v"+revision)
	}

	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err == nil {
			return *hash, nil
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("revision %q not found", revision)
}
