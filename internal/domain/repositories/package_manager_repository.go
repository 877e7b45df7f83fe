package repositories

import (
	"github.com/rios0rios0/depbot/internal/domain/entities"
)

// PackageManagerRepository knows the package manager's file names, builds
// its command lines and parses its structured output. It never runs anything.
type PackageManagerRepository interface {
	Name() string
	ManifestFile() string
	LockFile() string

	// WithBinary returns a repository running the given executable.
	WithBinary(binary string) PackageManagerRepository

	InstallCommand() entities.Command
	OutdatedCommand() entities.Command
	WhyNotCommand(name, version string) entities.Command
	RequireCommand(name, constraint string, dev, withDependencies bool) entities.Command
	UpdateCommand(name string) entities.Command
	AuthCommand(providerType, host, token string) entities.Command

	// ParseOutdated decodes the outdated report. Output in any other shape
	// fails with entities.ErrParse. Empty output means nothing is outdated.
	ParseOutdated(output string) ([]entities.OutdatedDependency, error)
}
