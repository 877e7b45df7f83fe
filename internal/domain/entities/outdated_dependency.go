package entities

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// UpdateType classifies how far the latest version is from the installed one.
type UpdateType string

const (
	UpdateTypePatch   UpdateType = "patch"
	UpdateTypeMinor   UpdateType = "minor"
	UpdateTypeMajor   UpdateType = "major"
	UpdateTypeUnknown UpdateType = "unknown"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// OutdatedDependency is one directly declared package with a newer version available.
type OutdatedDependency struct {
	Name         string
	Version      string // currently installed
	Latest       string
	LatestStatus string // as reported by the package manager, e.g. "semver-safe-update"
	UpdateType   UpdateType
}

// BranchName is the deterministic branch used for this update. Punctuation
// is stripped, so "pkg/a" and "pkga" at the same versions share a branch.
func (it OutdatedDependency) BranchName() string {
	return BranchName(it.Name, it.Version, it.Latest)
}

// BranchName strips every non-alphanumeric character from name+from+to.
func BranchName(name, from, to string) string {
	return nonAlphanumeric.ReplaceAllString(name+from+to, "")
}

// ClassifyUpdate compares two versions with semver rules. Versions that are
// not semantic (branch aliases, commit references) are reported as unknown.
func ClassifyUpdate(from, to string) UpdateType {
	current := canonicalVersion(from)
	latest := canonicalVersion(to)
	if current == "" || latest == "" {
		return UpdateTypeUnknown
	}

	switch {
	case semver.Major(current) != semver.Major(latest):
		return UpdateTypeMajor
	case semver.MajorMinor(current) != semver.MajorMinor(latest):
		return UpdateTypeMinor
	default:
		return UpdateTypePatch
	}
}

func canonicalVersion(version string) string {
	v := strings.TrimSpace(version)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}
