package repositories

import (
	"github.com/rios0rios0/depbot/internal/domain/entities"
)

// MetricsRepository records the result of a run. An empty textfile path
// disables recording.
type MetricsRepository interface {
	RecordRun(textfile string, report *entities.Report, runErr error) error
}
