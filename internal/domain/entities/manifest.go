package entities

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest is the subset of the package manifest the bot reads.
type Manifest struct {
	Require    map[string]string `json:"require"`
	RequireDev map[string]string `json:"require-dev"`
}

// Requirement returns the declared constraint and whether it is a
// development requirement. ok is false when the package is not declared.
func (it Manifest) Requirement(name string) (constraint string, dev bool, ok bool) {
	if constraint, ok = it.Require[name]; ok {
		return constraint, false, true
	}
	if constraint, ok = it.RequireDev[name]; ok {
		return constraint, true, true
	}
	return "", false, false
}

// ReadManifest decodes the manifest at path.
func ReadManifest(path string) (Manifest, error) {
	var manifest Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return manifest, fmt.Errorf("%w: failed to read manifest %q: %w", ErrParse, path, err)
	}
	if err = json.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("%w: failed to decode manifest %q: %w", ErrParse, path, err)
	}
	return manifest, nil
}

// PackageSource is where a locked package was fetched from.
type PackageSource struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Reference string `json:"reference"`
}

// LockedPackage is one resolved entry of the lockfile.
type LockedPackage struct {
	Name    string         `json:"name"`
	Version string         `json:"version"`
	Source  *PackageSource `json:"source,omitempty"`
}

// IsVersionControlled reports whether the package was installed from a git source.
func (it LockedPackage) IsVersionControlled() bool {
	return it.Source != nil && it.Source.Type == "git" && it.Source.URL != ""
}

// InstalledReference is the value compared before and after an update: the
// commit reference for git sources, the version string otherwise.
func (it LockedPackage) InstalledReference() string {
	if it.IsVersionControlled() && it.Source.Reference != "" {
		return it.Source.Reference
	}
	return it.Version
}

// Lockfile is a snapshot of the resolved-versions file.
type Lockfile struct {
	Packages    []LockedPackage `json:"packages"`
	PackagesDev []LockedPackage `json:"packages-dev"`
}

// Package finds a locked package by name in either section.
func (it *Lockfile) Package(name string) (LockedPackage, error) {
	if it == nil {
		return LockedPackage{}, fmt.Errorf("no lockfile to look up %q in", name)
	}
	for _, sections := range [][]LockedPackage{it.Packages, it.PackagesDev} {
		for _, pkg := range sections {
			if pkg.Name == name {
				return pkg, nil
			}
		}
	}
	return LockedPackage{}, fmt.Errorf("package %q not found in lockfile", name)
}

// ReadLockfile decodes the lockfile at path. A missing file yields (nil, nil).
func ReadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil //nolint:nilnil // absence of a lockfile is a valid state
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read lockfile %q: %w", ErrParse, path, err)
	}

	var lockfile Lockfile
	if err = json.Unmarshal(data, &lockfile); err != nil {
		return nil, fmt.Errorf("%w: failed to decode lockfile %q: %w", ErrParse, path, err)
	}
	return &lockfile, nil
}
