package composer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/domain/repositories"
)

const (
	packageManagerName = "composer"
	manifestFile       = "composer.json"
	lockFile           = "composer.lock"
	superuserEnv       = "COMPOSER_ALLOW_SUPERUSER=1"
	discardChangesEnv  = "COMPOSER_DISCARD_CHANGES=true"
)

// PackageManagerRepository builds composer command lines and parses the
// `composer outdated --format=json` report.
type PackageManagerRepository struct {
	binary string
}

// NewPackageManagerRepository creates a composer repository using the
// composer binary found on PATH.
func NewPackageManagerRepository() repositories.PackageManagerRepository {
	return &PackageManagerRepository{binary: packageManagerName}
}

func (it *PackageManagerRepository) Name() string         { return packageManagerName }
func (it *PackageManagerRepository) ManifestFile() string { return manifestFile }
func (it *PackageManagerRepository) LockFile() string     { return lockFile }

// WithBinary returns a copy that runs the given composer executable.
func (it *PackageManagerRepository) WithBinary(binary string) repositories.PackageManagerRepository {
	if binary == "" {
		return it
	}
	return &PackageManagerRepository{binary: binary}
}

func (it *PackageManagerRepository) InstallCommand() entities.Command {
	return it.command("install", "--no-ansi", "-n", "--no-scripts")
}

func (it *PackageManagerRepository) OutdatedCommand() entities.Command {
	return it.command("outdated", "--no-ansi", "--direct", "--minor-only", "--format=json")
}

func (it *PackageManagerRepository) WhyNotCommand(name, version string) entities.Command {
	return it.command("--no-ansi", "why-not", "-t", name+":"+version)
}

func (it *PackageManagerRepository) RequireCommand(
	name, constraint string,
	dev, withDependencies bool,
) entities.Command {
	args := []string{"--no-ansi", "require"}
	if dev {
		args = append(args, "--dev")
	}
	args = append(args, name+":"+constraint)
	if withDependencies {
		args = append(args, "--update-with-dependencies")
	}
	return it.command(args...)
}

func (it *PackageManagerRepository) UpdateCommand(name string) entities.Command {
	return it.command("--no-ansi", "update", "-n", "--no-scripts", "--with-dependencies", name).
		WithEnv(discardChangesEnv)
}

// AuthCommand stores the forge token in composer's auth configuration so
// private dependencies on the same host can be installed.
func (it *PackageManagerRepository) AuthCommand(providerType, host, token string) entities.Command {
	key := "github-oauth." + host
	if providerType == entities.ProviderTypeGitLab {
		key = "gitlab-token." + host
	}
	return it.command("config", "--auth", key, token).WithSecret(token)
}

func (it *PackageManagerRepository) command(args ...string) entities.Command {
	return entities.NewCommand(it.binary, args...).WithEnv(superuserEnv)
}

type outdatedPackage struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Latest       string `json:"latest"`
	LatestStatus string `json:"latest-status"`
}

// ParseOutdated decodes the first JSON object in output. Anything printed
// before it (warnings, deprecation notices) is ignored.
func (it *PackageManagerRepository) ParseOutdated(output string) ([]entities.OutdatedDependency, error) {
	start := strings.Index(output, "{")
	if start < 0 {
		if strings.TrimSpace(output) == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: no JSON object in outdated output", entities.ErrParse)
	}

	decoder := json.NewDecoder(strings.NewReader(output[start:]))
	var report map[string]json.RawMessage
	if err := decoder.Decode(&report); err != nil {
		return nil, fmt.Errorf("%w: invalid outdated output: %w", entities.ErrParse, err)
	}

	raw, ok := report["installed"]
	if !ok {
		return nil, fmt.Errorf(
			"%w: JSON output from %s was not looking as expected after checking updates",
			entities.ErrParse, packageManagerName,
		)
	}

	var installed []outdatedPackage
	if err := json.Unmarshal(raw, &installed); err != nil {
		return nil, fmt.Errorf("%w: invalid installed list: %w", entities.ErrParse, err)
	}

	dependencies := make([]entities.OutdatedDependency, 0, len(installed))
	for i, pkg := range installed {
		if pkg.Name == "" || pkg.Version == "" || pkg.Latest == "" {
			return nil, fmt.Errorf("%w: installed[%d] is incomplete: %+v", entities.ErrParse, i, pkg)
		}
		dependencies = append(dependencies, entities.OutdatedDependency{
			Name:         pkg.Name,
			Version:      pkg.Version,
			Latest:       pkg.Latest,
			LatestStatus: pkg.LatestStatus,
			UpdateType:   entities.ClassifyUpdate(pkg.Version, pkg.Latest),
		})
	}
	return dependencies, nil
}
