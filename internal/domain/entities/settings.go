package entities

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/sethvargo/go-envconfig"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	ProviderTypeGitHub = "github"
	ProviderTypeGitLab = "gitlab"

	defaultCloneTimeout   = 120
	defaultInstallTimeout = 1200
	defaultUpdateTimeout  = 600
	defaultNetworkTimeout = 300
	defaultCommandTimeout = 120
)

// Settings is the complete configuration of one run. It is passed explicitly
// to the run command and never stored globally.
type Settings struct {
	Providers      []ProviderConfig     `yaml:"providers"`
	Identity       IdentityConfig       `yaml:"identity"`
	Workspace      WorkspaceConfig      `yaml:"workspace"`
	PackageManager PackageManagerConfig `yaml:"package_manager"`
	Timeouts       TimeoutConfig        `yaml:"timeouts"`
	Metrics        MetricsConfig        `yaml:"metrics"`
}

// ProviderConfig describes the credentials for one forge host.
type ProviderConfig struct {
	Type      string `yaml:"type"`       // "github" or "gitlab"
	Host      string `yaml:"host"`       // e.g. "github.com", "gitlab.example.com"
	Token     string `yaml:"token"`      // Inline, ${ENV_VAR}, or file path
	ForkOwner string `yaml:"fork_owner"` // account that owns forks of public repositories
}

// IdentityConfig is the author and committer of update commits.
type IdentityConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// WorkspaceConfig holds the on-disk locations used by a run.
type WorkspaceConfig struct {
	TmpParent string `yaml:"tmp_parent"`
	CacheDir  string `yaml:"cache_dir"`
	MirrorDir string `yaml:"mirror_dir"`
}

// PackageManagerConfig selects the package-manager binary.
type PackageManagerConfig struct {
	Binary string `yaml:"binary"`
}

// TimeoutConfig holds subprocess timeouts in whole seconds.
type TimeoutConfig struct {
	Clone   int `yaml:"clone"`
	Install int `yaml:"install"`
	Update  int `yaml:"update"`
	Network int `yaml:"network"`
	Default int `yaml:"default"`
}

// MetricsConfig points at a node-exporter textfile. Empty disables metrics.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type environmentOverrides struct {
	TmpParent       string `env:"DEPBOT_TMP_PARENT"`
	CacheDir        string `env:"DEPBOT_CACHE_DIR"`
	MirrorDir       string `env:"DEPBOT_MIRROR_DIR"`
	ComposerBinary  string `env:"DEPBOT_COMPOSER_BINARY"`
	MetricsTextfile string `env:"DEPBOT_METRICS_TEXTFILE"`
	GitHubToken     string `env:"GITHUB_TOKEN"`
	GitLabToken     string `env:"GITLAB_TOKEN"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// DefaultSettings returns the configuration used when no file is given.
func DefaultSettings() *Settings {
	return &Settings{
		Identity: IdentityConfig{
			Name:  "depbot",
			Email: "depbot@users.noreply.github.com",
		},
		Workspace: WorkspaceConfig{
			TmpParent: os.TempDir(),
			CacheDir:  filepath.Join(os.TempDir(), "depbot-cache"),
			MirrorDir: filepath.Join(os.TempDir(), "depbot-mirrors"),
		},
		PackageManager: PackageManagerConfig{Binary: "composer"},
		Timeouts: TimeoutConfig{
			Clone:   defaultCloneTimeout,
			Install: defaultInstallTimeout,
			Update:  defaultUpdateTimeout,
			Network: defaultNetworkTimeout,
			Default: defaultCommandTimeout,
		},
	}
}

// NewSettings loads the YAML file at path on top of the defaults, then
// applies environment overrides. An empty path skips the file.
func NewSettings(ctx context.Context, path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		if unmarshalErr := yaml.Unmarshal(data, settings); unmarshalErr != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
		}
	}

	if err := settings.applyEnvironment(ctx); err != nil {
		return nil, err
	}

	for i := range settings.Providers {
		settings.Providers[i].Token = resolveToken(settings.Providers[i].Token)
		if settings.Providers[i].Host == "" {
			settings.Providers[i].Host = defaultHostFor(settings.Providers[i].Type)
		}
	}

	if err := validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Provider returns the configuration for a forge host, falling back to the
// well-known public hosts when nothing was configured for it.
func (it *Settings) Provider(host string) (ProviderConfig, bool) {
	for _, provider := range it.Providers {
		if strings.EqualFold(provider.Host, host) {
			return provider, true
		}
	}
	switch strings.ToLower(host) {
	case "github.com":
		return ProviderConfig{Type: ProviderTypeGitHub, Host: host}, true
	case "gitlab.com":
		return ProviderConfig{Type: ProviderTypeGitLab, Host: host}, true
	}
	return ProviderConfig{}, false
}

// WithToken returns a copy of the settings that uses token for host, e.g.
// from a CLI flag. The receiver is left untouched.
func (it *Settings) WithToken(host, token string) *Settings {
	copied := *it
	copied.Providers = slices.Clone(it.Providers)
	for i := range copied.Providers {
		if strings.EqualFold(copied.Providers[i].Host, host) {
			copied.Providers[i].Token = token
			return &copied
		}
	}
	provider, ok := copied.Provider(host)
	if !ok {
		return &copied
	}
	provider.Token = token
	copied.Providers = append(copied.Providers, provider)
	return &copied
}

func (it *Settings) applyEnvironment(ctx context.Context) error {
	var overrides environmentOverrides
	if err := envconfig.Process(ctx, &overrides); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}

	overrideString(&it.Workspace.TmpParent, overrides.TmpParent)
	overrideString(&it.Workspace.CacheDir, overrides.CacheDir)
	overrideString(&it.Workspace.MirrorDir, overrides.MirrorDir)
	overrideString(&it.PackageManager.Binary, overrides.ComposerBinary)
	overrideString(&it.Metrics.Textfile, overrides.MetricsTextfile)

	it.fillToken("github.com", ProviderTypeGitHub, overrides.GitHubToken)
	it.fillToken("gitlab.com", ProviderTypeGitLab, overrides.GitLabToken)
	return nil
}

// fillToken sets the token of every provider of the given type that has
// none, adding the public host when no provider of that type exists.
func (it *Settings) fillToken(host, providerType, token string) {
	if token == "" {
		return
	}
	found := false
	for i := range it.Providers {
		if it.Providers[i].Type != providerType {
			continue
		}
		found = true
		if it.Providers[i].Token == "" {
			it.Providers[i].Token = token
		}
	}
	if !found {
		it.Providers = append(it.Providers, ProviderConfig{Type: providerType, Host: host, Token: token})
	}
}

func overrideString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func defaultHostFor(providerType string) string {
	switch providerType {
	case ProviderTypeGitHub:
		return "github.com"
	case ProviderTypeGitLab:
		return "gitlab.com"
	default:
		return ""
	}
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".depbot.yaml",
		".depbot.yml",
		"depbot.yaml",
		"depbot.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate checks for required configuration values.
func validate(settings *Settings) error {
	for i, p := range settings.Providers {
		if p.Type != ProviderTypeGitHub && p.Type != ProviderTypeGitLab {
			return fmt.Errorf("providers[%d].type must be %q or %q, got %q",
				i, ProviderTypeGitHub, ProviderTypeGitLab, p.Type)
		}
		if p.Host == "" {
			return fmt.Errorf("providers[%d].host is required", i)
		}
	}

	if settings.Identity.Name == "" || settings.Identity.Email == "" {
		return errors.New("identity.name and identity.email are required")
	}
	if settings.PackageManager.Binary == "" {
		return errors.New("package_manager.binary is required")
	}

	timeouts := map[string]int{
		"clone":   settings.Timeouts.Clone,
		"install": settings.Timeouts.Install,
		"update":  settings.Timeouts.Update,
		"network": settings.Timeouts.Network,
		"default": settings.Timeouts.Default,
	}
	for name, value := range timeouts {
		if value <= 0 {
			return fmt.Errorf("timeouts.%s must be a positive number of seconds", name)
		}
	}

	return nil
}
