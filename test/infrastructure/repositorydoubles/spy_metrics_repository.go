//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/domain/repositories"
)

// SpyMetricsRepository implements repositories.MetricsRepository and keeps what it received.
type SpyMetricsRepository struct {
	Textfiles []string
	Reports   []*entities.Report
	RunErrs   []error
	RecordErr error
}

var _ repositories.MetricsRepository = (*SpyMetricsRepository)(nil)

func (s *SpyMetricsRepository) RecordRun(textfile string, report *entities.Report, runErr error) error {
	s.Textfiles = append(s.Textfiles, textfile)
	s.Reports = append(s.Reports, report)
	s.RunErrs = append(s.RunErrs, runErr)
	return s.RecordErr
}
