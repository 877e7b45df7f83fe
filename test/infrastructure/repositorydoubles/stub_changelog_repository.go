//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/depbot/internal/domain/repositories"
)

// StubChangelogRepository implements repositories.ChangelogRepository with canned answers.
type StubChangelogRepository struct {
	MirrorPath string
	MirrorErr  error
	MirrorURLs []string

	// MirrorHangs makes Mirror wait for the context like an unresponsive host.
	MirrorHangs bool

	Lines      []string
	RangeErr   error
	RangeCalls [][2]string
}

var _ repositories.ChangelogRepository = (*StubChangelogRepository)(nil)

func (s *StubChangelogRepository) Mirror(ctx context.Context, _, _, url string) (string, error) {
	s.MirrorURLs = append(s.MirrorURLs, url)
	if s.MirrorHangs {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.MirrorPath, s.MirrorErr
}

func (s *StubChangelogRepository) CommitRange(_ context.Context, _, from, to string) ([]string, error) {
	s.RangeCalls = append(s.RangeCalls, [2]string{from, to})
	return s.Lines, s.RangeErr
}
