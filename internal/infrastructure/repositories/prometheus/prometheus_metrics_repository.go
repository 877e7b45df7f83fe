package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/domain/repositories"
)

// MetricsRepository writes the result of a run as a node-exporter textfile.
// Every run gets a fresh registry, so a file only describes its own run.
type MetricsRepository struct{}

// NewMetricsRepository creates a MetricsRepository.
func NewMetricsRepository() repositories.MetricsRepository {
	return &MetricsRepository{}
}

func (it *MetricsRepository) RecordRun(textfile string, report *entities.Report, runErr error) error {
	if textfile == "" || report == nil {
		return nil
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	outcomes := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depbot_update_outcomes_total",
			Help: "Number of dependency updates by outcome",
		},
		[]string{"repository", "status", "kind"},
	)
	duration := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "depbot_run_duration_seconds",
			Help: "Wall-clock duration of the last run",
		},
		[]string{"repository"},
	)
	success := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "depbot_run_success",
			Help: "1 when the last run finished without a fatal error",
		},
		[]string{"repository"},
	)

	repository := report.Slug.String()
	for _, outcome := range report.Outcomes {
		outcomes.WithLabelValues(repository, string(outcome.Status), string(outcome.Kind)).Inc()
	}
	duration.WithLabelValues(repository).Set(report.Duration.Seconds())
	if runErr == nil {
		success.WithLabelValues(repository).Set(1)
	} else {
		success.WithLabelValues(repository).Set(0)
	}

	if err := prometheus.WriteToTextfile(textfile, registry); err != nil {
		return fmt.Errorf("failed to write metrics to %q: %w", textfile, err)
	}
	return nil
}
