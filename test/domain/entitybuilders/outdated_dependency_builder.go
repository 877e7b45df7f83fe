//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/depbot/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// OutdatedDependencyBuilder helps create outdated dependencies with a fluent interface.
type OutdatedDependencyBuilder struct {
	*testkit.BaseBuilder
	name         string
	version      string
	latest       string
	latestStatus string
}

// NewOutdatedDependencyBuilder creates a new builder with sensible defaults.
func NewOutdatedDependencyBuilder() *OutdatedDependencyBuilder {
	return &OutdatedDependencyBuilder{
		BaseBuilder:  testkit.NewBaseBuilder(),
		name:         "acme/lib",
		version:      "1.2.0",
		latest:       "1.3.0",
		latestStatus: "semver-safe-update",
	}
}

// WithName sets the package name.
func (b *OutdatedDependencyBuilder) WithName(name string) *OutdatedDependencyBuilder {
	b.name = name
	return b
}

// WithVersion sets the installed version.
func (b *OutdatedDependencyBuilder) WithVersion(version string) *OutdatedDependencyBuilder {
	b.version = version
	return b
}

// WithLatest sets the latest available version.
func (b *OutdatedDependencyBuilder) WithLatest(latest string) *OutdatedDependencyBuilder {
	b.latest = latest
	return b
}

// WithLatestStatus sets the status reported by the package manager.
func (b *OutdatedDependencyBuilder) WithLatestStatus(status string) *OutdatedDependencyBuilder {
	b.latestStatus = status
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *OutdatedDependencyBuilder) Build() interface{} {
	return b.BuildOutdatedDependency()
}

// BuildOutdatedDependency creates the dependency with a concrete return type.
func (b *OutdatedDependencyBuilder) BuildOutdatedDependency() entities.OutdatedDependency {
	return entities.OutdatedDependency{
		Name:         b.name,
		Version:      b.version,
		Latest:       b.latest,
		LatestStatus: b.latestStatus,
		UpdateType:   entities.ClassifyUpdate(b.version, b.latest),
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *OutdatedDependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "acme/lib"
	b.version = "1.2.0"
	b.latest = "1.3.0"
	b.latestStatus = "semver-safe-update"
	return b
}

// Clone creates a deep copy of the OutdatedDependencyBuilder.
func (b *OutdatedDependencyBuilder) Clone() testkit.Builder {
	return &OutdatedDependencyBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:         b.name,
		version:      b.version,
		latest:       b.latest,
		latestStatus: b.latestStatus,
	}
}
