package entities

import (
	"fmt"
	"time"
)

// OutcomeStatus is the terminal result of one candidate.
type OutcomeStatus string

const (
	OutcomeCreated OutcomeStatus = "created"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// TransactionState tracks how far an update got before it ended.
type TransactionState string

const (
	StateStart           TransactionState = "start"
	StateConstraintCheck TransactionState = "constraint_check"
	StateBranchCreated   TransactionState = "branch_created"
	StateUpdated         TransactionState = "updated"
	StateCommitted       TransactionState = "committed"
	StatePushed          TransactionState = "pushed"
	StateRequestCreated  TransactionState = "request_created"
	StateFailed          TransactionState = "failed"
)

// UpdateOutcome is recorded exactly once per outdated dependency.
type UpdateOutcome struct {
	Dependency OutdatedDependency
	Status     OutcomeStatus
	URL        string
	Reason     string
	Kind       FailureKind
	Message    string
	// LastState is the furthest state reached before failing.
	LastState TransactionState
}

// Created builds a successful outcome.
func Created(dependency OutdatedDependency, url string) UpdateOutcome {
	return UpdateOutcome{
		Dependency: dependency,
		Status:     OutcomeCreated,
		URL:        url,
		LastState:  StateRequestCreated,
	}
}

// Skipped builds an outcome for a candidate that was never attempted.
func Skipped(dependency OutdatedDependency, reason string) UpdateOutcome {
	return UpdateOutcome{
		Dependency: dependency,
		Status:     OutcomeSkipped,
		Reason:     reason,
		LastState:  StateStart,
	}
}

// Failed builds an outcome from a candidate-scoped error.
func Failed(dependency OutdatedDependency, reached TransactionState, err error) UpdateOutcome {
	return UpdateOutcome{
		Dependency: dependency,
		Status:     OutcomeFailed,
		Kind:       ClassifyFailure(err),
		Message:    err.Error(),
		LastState:  reached,
	}
}

func (it UpdateOutcome) String() string {
	switch it.Status {
	case OutcomeCreated:
		return fmt.Sprintf("%s: created %s", it.Dependency.Name, it.URL)
	case OutcomeSkipped:
		return fmt.Sprintf("%s: skipped (%s)", it.Dependency.Name, it.Reason)
	default:
		return fmt.Sprintf("%s: failed [%s] %s", it.Dependency.Name, it.Kind, it.Message)
	}
}

// Report is the observable result of a run.
type Report struct {
	Slug     RepositorySlug
	Outcomes []UpdateOutcome
	Messages []string
	Duration time.Duration
}

// Count returns how many outcomes have the given status.
func (it *Report) Count(status OutcomeStatus) int {
	total := 0
	for _, outcome := range it.Outcomes {
		if outcome.Status == status {
			total++
		}
	}
	return total
}

// Outcome returns the outcome recorded for a dependency name.
func (it *Report) Outcome(name string) (UpdateOutcome, bool) {
	for _, outcome := range it.Outcomes {
		if outcome.Dependency.Name == name {
			return outcome, true
		}
	}
	return UpdateOutcome{}, false
}
