package entities

import (
	"fmt"
	"strings"
)

// PullRequestTitle is the request title for a single-package update.
func PullRequestTitle(dependency OutdatedDependency) string {
	return fmt.Sprintf("Update %s from %s to %s", dependency.Name, dependency.Version, dependency.Latest)
}

// CommitMessage is the message of the commit carrying the manifest and lockfile.
func CommitMessage(dependency OutdatedDependency) string {
	return "Update " + dependency.Name
}

// PullRequestBody renders the request description. The changelog block is
// only included when one could be retrieved.
func PullRequestBody(dependency OutdatedDependency, changelog *ChangeLogData) string {
	var sb strings.Builder
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf(
		"This PR updates **%s** from `%s` to `%s`.\n\n",
		dependency.Name, dependency.Version, dependency.Latest,
	))
	sb.WriteString("### Updated packages\n\n")
	sb.WriteString(fmt.Sprintf(
		"- %s: %s (updated from %s)\n", dependency.Name, dependency.Latest, dependency.Version,
	))

	if changelog != nil && len(changelog.Lines) > 0 {
		sb.WriteString("\n### Changelog\n\n")
		sb.WriteString(changelog.AsMarkdown())
	}

	sb.WriteString("\n---\n")
	sb.WriteString("*This PR was automatically created by [depbot](https://github.com/rios0rios0/depbot)*\n")
	return sb.String()
}
