//go:build unit

package entities_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/depbot/internal/domain/entities"
)

func TestClassifyFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected entities.FailureKind
	}{
		{
			name:     "should classify a constraint violation",
			err:      fmt.Errorf("%w: ^1.0 does not allow 2.0.0", entities.ErrConstraintViolation),
			expected: entities.FailureConstraintViolation,
		},
		{
			name:     "should classify an unchanged lockfile",
			err:      fmt.Errorf("%w: same version", entities.ErrNotUpdated),
			expected: entities.FailureNotUpdated,
		},
		{
			name:     "should classify a push failure",
			err:      fmt.Errorf("%w: rejected: %w", entities.ErrPush, entities.ErrExecution),
			expected: entities.FailurePush,
		},
		{
			name:     "should prefer timeout over the interrupted step",
			err:      fmt.Errorf("%w: %w", entities.ErrUpdateExecution, entities.ErrCommandTimeout),
			expected: entities.FailureTimeout,
		},
		{
			name:     "should classify a rejected request",
			err:      fmt.Errorf("%w: branch has no commits", entities.ErrValidation),
			expected: entities.FailureValidation,
		},
		{
			name:     "should fall back to unknown",
			err:      errors.New("boom"),
			expected: entities.FailureUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			err := tt.err

			// when
			kind := entities.ClassifyFailure(err)

			// then
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestUpdateOutcome(t *testing.T) {
	t.Parallel()

	t.Run("should keep the state reached and the kind of a failure", func(t *testing.T) {
		t.Parallel()

		// given
		dependency := entities.OutdatedDependency{Name: "acme/lib", Version: "1.2.0", Latest: "1.3.0"}
		err := fmt.Errorf("%w: same version", entities.ErrNotUpdated)

		// when
		outcome := entities.Failed(dependency, entities.StateUpdated, err)

		// then
		assert.Equal(t, entities.OutcomeFailed, outcome.Status)
		assert.Equal(t, entities.FailureNotUpdated, outcome.Kind)
		assert.Equal(t, entities.StateUpdated, outcome.LastState)
		assert.Equal(t, "acme/lib: failed [not_updated] package was not updated: same version", outcome.String())
	})

	t.Run("should count outcomes by status", func(t *testing.T) {
		t.Parallel()

		// given
		first := entities.OutdatedDependency{Name: "acme/a"}
		second := entities.OutdatedDependency{Name: "acme/b"}
		report := &entities.Report{Outcomes: []entities.UpdateOutcome{
			entities.Created(first, "https://example.com/pull/1"),
			entities.Skipped(second, "dry run"),
		}}

		// when
		created := report.Count(entities.OutcomeCreated)

		// then
		assert.Equal(t, 1, created)
		assert.Equal(t, 1, report.Count(entities.OutcomeSkipped))
		assert.Equal(t, 0, report.Count(entities.OutcomeFailed))
		outcome, found := report.Outcome("acme/b")
		assert.True(t, found)
		assert.Equal(t, "acme/b: skipped (dry run)", outcome.String())
	})
}
