package entities

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxChangelogLength caps the serialized changelog so the request body stays
// under the forge's size limit.
const MaxChangelogLength = 60000

const truncationMarkerFormat = "%s ...more commits found, but message is too long for PR"

var commitHashPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// ChangeLogData is the commit range between two versions of a dependency.
type ChangeLogData struct {
	Lines     []string
	GitSource string
}

// NewChangeLogData bounds lines to MaxChangelogLength and normalizes the
// source URL used for commit links.
func NewChangeLogData(lines []string, gitSource, versionTo string) ChangeLogData {
	return ChangeLogData{
		Lines:     TruncateChangelog(lines, versionTo, MaxChangelogLength),
		GitSource: NormalizeGitSource(gitSource),
	}
}

// NormalizeGitSource strips a trailing ".git" and slash from a clone URL.
func NormalizeGitSource(source string) string {
	return strings.TrimSuffix(strings.TrimSuffix(source, "/"), ".git")
}

// String joins the lines the way they are measured against the cap.
func (it ChangeLogData) String() string {
	return strings.Join(it.Lines, "\n")
}

// AsMarkdown renders one bullet per line, linking the leading commit hash to
// the source repository when there is one.
func (it ChangeLogData) AsMarkdown() string {
	var builder strings.Builder
	for _, line := range it.Lines {
		hash, message, found := strings.Cut(line, " ")
		if found && it.GitSource != "" && commitHashPattern.MatchString(hash) {
			fmt.Fprintf(&builder, "- [%s](%s/commit/%s) %s\n", hash, it.GitSource, hash, message)
			continue
		}
		fmt.Fprintf(&builder, "- %s\n", line)
	}
	return builder.String()
}

// TruncateChangelog keeps whole lines while the joined result plus a
// trailing truncation marker fits in maxLength characters. Input that
// already fits is returned unchanged.
func TruncateChangelog(lines []string, versionTo string, maxLength int) []string {
	if serializedLength(lines) <= maxLength {
		return lines
	}

	marker := fmt.Sprintf(truncationMarkerFormat, versionTo)
	budget := maxLength - utf8.RuneCountInString(marker)

	kept := make([]string, 0, len(lines))
	used := 0
	for _, line := range lines {
		// every kept line is followed by a newline, the marker closes the blob
		cost := utf8.RuneCountInString(line) + 1
		if used+cost > budget {
			break
		}
		kept = append(kept, line)
		used += cost
	}

	return append(kept, marker)
}

func serializedLength(lines []string) int {
	if len(lines) == 0 {
		return 0
	}
	total := len(lines) - 1
	for _, line := range lines {
		total += utf8.RuneCountInString(line)
	}
	return total
}
