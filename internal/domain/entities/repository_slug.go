package entities

import (
	"crypto/md5" //nolint:gosec // used as a cache key, not for security
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

const defaultForgeHost = "github.com"

// RepositorySlug addresses a repository on a forge. It cannot be changed once parsed.
type RepositorySlug struct {
	host  string
	owner string
	name  string
}

// NewRepositorySlug builds a slug from its parts.
func NewRepositorySlug(host, owner, name string) RepositorySlug {
	return RepositorySlug{host: strings.ToLower(host), owner: owner, name: name}
}

// ParseRepositorySlug accepts "owner/name", "host/owner/name",
// "https://host/owner/name(.git)" and "git@host:owner/name(.git)".
// Nested GitLab groups end up in the owner, the last segment is the name.
func ParseRepositorySlug(raw string) (RepositorySlug, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return RepositorySlug{}, fmt.Errorf("%w: empty repository", ErrParse)
	}

	host := ""
	path := value
	switch {
	case strings.Contains(value, "://"):
		parsed, err := url.Parse(value)
		if err != nil {
			return RepositorySlug{}, fmt.Errorf("%w: invalid repository URL %q: %w", ErrParse, value, err)
		}
		host = parsed.Host
		path = parsed.Path
	case strings.HasPrefix(value, "git@"):
		hostAndPath := strings.TrimPrefix(value, "git@")
		idx := strings.Index(hostAndPath, ":")
		if idx < 0 {
			return RepositorySlug{}, fmt.Errorf("%w: invalid SSH remote %q", ErrParse, value)
		}
		host = hostAndPath[:idx]
		path = hostAndPath[idx+1:]
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	segments := strings.Split(path, "/")
	for _, segment := range segments {
		if segment == "" {
			return RepositorySlug{}, fmt.Errorf("%w: invalid repository %q", ErrParse, value)
		}
	}

	if host == "" {
		switch {
		case len(segments) == 2:
			host = defaultForgeHost
		case len(segments) >= 3 && strings.Contains(segments[0], "."):
			host = segments[0]
			segments = segments[1:]
		default:
			return RepositorySlug{}, fmt.Errorf("%w: invalid repository %q", ErrParse, value)
		}
	}

	if len(segments) < 2 {
		return RepositorySlug{}, fmt.Errorf("%w: repository %q has no owner", ErrParse, value)
	}

	last := len(segments) - 1
	return NewRepositorySlug(host, strings.Join(segments[:last], "/"), segments[last]), nil
}

func (it RepositorySlug) Host() string  { return it.host }
func (it RepositorySlug) Owner() string { return it.owner }
func (it RepositorySlug) Name() string  { return it.name }

// String renders the slug as "owner/name".
func (it RepositorySlug) String() string {
	return it.owner + "/" + it.name
}

// CacheKey is the directory name used for the install-artifact cache.
func (it RepositorySlug) CacheKey() string {
	return HashKey(it.String())
}

// HashKey turns an arbitrary name into a stable directory name.
func HashKey(value string) string {
	sum := md5.Sum([]byte(value)) //nolint:gosec // directory key
	return hex.EncodeToString(sum[:])
}

// IsZero reports whether the slug was never parsed.
func (it RepositorySlug) IsZero() bool {
	return it.owner == "" && it.name == ""
}
