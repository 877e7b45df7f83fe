package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	// "~1.2" in a manifest means ">=1.2 <2.0", unlike the stricter semver tilde.
	shortTildePattern = regexp.MustCompile(`(^|[\s,])~v?(\d+)\.(\d+)($|[\s,])`)
	singlePipePattern = regexp.MustCompile(`\s*\|{1,2}\s*`)
	stabilityPattern  = regexp.MustCompile(`@[a-zA-Z]+`)
)

// ConstraintOperator returns the leading "^" or "~" of a declared constraint,
// or "" for exact versions and any other form.
func ConstraintOperator(constraint string) string {
	trimmed := strings.TrimSpace(constraint)
	if strings.HasPrefix(trimmed, "^") || strings.HasPrefix(trimmed, "~") {
		return trimmed[:1]
	}
	return ""
}

// IsDevConstraint reports whether a constraint points at a branch alias.
func IsDevConstraint(constraint string) bool {
	return strings.Contains(constraint, "dev")
}

// SatisfiesConstraint reports whether version is allowed by the declared
// constraint. Branch aliases (dev-*) only match themselves.
func SatisfiesConstraint(version, constraint string) (bool, error) {
	normalizedVersion := strings.TrimSpace(version)
	normalizedConstraint := normalizeConstraint(constraint)

	if normalizedConstraint == "" || normalizedConstraint == "*" {
		return true, nil
	}

	parsedVersion, versionErr := semver.NewVersion(normalizedVersion)
	if versionErr != nil || IsDevConstraint(normalizedConstraint) {
		for _, alternative := range strings.Split(normalizedConstraint, "||") {
			if strings.TrimSpace(alternative) == normalizedVersion {
				return true, nil
			}
		}
		if versionErr != nil {
			return false, nil
		}
	}

	parsedConstraint, err := semver.NewConstraint(normalizedConstraint)
	if err != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}
	return parsedConstraint.Check(parsedVersion), nil
}

func normalizeConstraint(constraint string) string {
	normalized := strings.TrimSpace(stabilityPattern.ReplaceAllString(constraint, ""))
	normalized = singlePipePattern.ReplaceAllString(normalized, " || ")
	normalized = shortTildePattern.ReplaceAllStringFunc(normalized, func(match string) string {
		parts := shortTildePattern.FindStringSubmatch(match)
		major, _ := strconv.Atoi(parts[2])
		return fmt.Sprintf("%s>=%s.%s, <%d.0.0%s", parts[1], parts[2], parts[3], major+1, parts[4])
	})
	return normalized
}
