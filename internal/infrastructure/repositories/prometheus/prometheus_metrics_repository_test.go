//go:build unit

package prometheus_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/infrastructure/repositories/prometheus"
)

func TestMetricsRepositoryRecordRun(t *testing.T) {
	t.Parallel()

	t.Run("should write outcomes, duration and success to the textfile", func(t *testing.T) {
		t.Parallel()

		// given
		repository := prometheus.NewMetricsRepository()
		textfile := filepath.Join(t.TempDir(), "depbot.prom")
		lib := entities.OutdatedDependency{Name: "acme/lib"}
		report := &entities.Report{
			Slug: entities.NewRepositorySlug("github.com", "acme", "app"),
			Outcomes: []entities.UpdateOutcome{
				entities.Created(lib, "https://github.com/acme/app/pull/1"),
				entities.Failed(lib, entities.StateUpdated, entities.ErrNotUpdated),
			},
			Duration: 90 * time.Second,
		}

		// when
		err := repository.RecordRun(textfile, report, nil)

		// then
		require.NoError(t, err)
		content, readErr := os.ReadFile(textfile)
		require.NoError(t, readErr)
		text := string(content)
		assert.Contains(t, text, `depbot_update_outcomes_total{kind="",repository="acme/app",status="created"} 1`)
		assert.Contains(t, text, `depbot_update_outcomes_total{kind="not_updated",repository="acme/app",status="failed"} 1`)
		assert.Contains(t, text, `depbot_run_duration_seconds{repository="acme/app"} 90`)
		assert.Contains(t, text, `depbot_run_success{repository="acme/app"} 1`)
	})

	t.Run("should mark a fatal run as unsuccessful", func(t *testing.T) {
		t.Parallel()

		// given
		repository := prometheus.NewMetricsRepository()
		textfile := filepath.Join(t.TempDir(), "depbot.prom")
		report := &entities.Report{Slug: entities.NewRepositorySlug("github.com", "acme", "app")}

		// when
		err := repository.RecordRun(textfile, report, errors.New("install error"))

		// then
		require.NoError(t, err)
		content, readErr := os.ReadFile(textfile)
		require.NoError(t, readErr)
		assert.Contains(t, string(content), `depbot_run_success{repository="acme/app"} 0`)
	})

	t.Run("should do nothing without a textfile", func(t *testing.T) {
		t.Parallel()

		// given
		repository := prometheus.NewMetricsRepository()

		// when
		err := repository.RecordRun("", &entities.Report{}, nil)

		// then
		assert.NoError(t, err)
	})
}
