package commands

import (
	"github.com/rios0rios0/depbot/internal/domain/entities"
)

// IsAlreadyHandled reports whether an update already has a live request:
// its branch exists, an open request uses that branch, and the request was
// opened against the current default base. An unknown base ("") cannot
// prove staleness, so it counts as a match.
func IsAlreadyHandled(
	dependency entities.OutdatedDependency,
	branches map[string]struct{},
	requests entities.ExistingRequestIndex,
	defaultBase string,
) bool {
	branch := dependency.BranchName()
	if _, exists := branches[branch]; !exists {
		return false
	}
	request, exists := requests[branch]
	if !exists {
		return false
	}
	return defaultBase == "" || request.BaseSHA == defaultBase
}

// FilterCandidates keeps, in order, the dependencies that still need work.
func FilterCandidates(
	dependencies []entities.OutdatedDependency,
	branches map[string]struct{},
	requests entities.ExistingRequestIndex,
	defaultBase string,
) []entities.OutdatedDependency {
	remaining := make([]entities.OutdatedDependency, 0, len(dependencies))
	for _, dependency := range dependencies {
		if IsAlreadyHandled(dependency, branches, requests, defaultBase) {
			continue
		}
		remaining = append(remaining, dependency)
	}
	return remaining
}
