package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/depbot/internal/infrastructure/repositories"
)

const (
	noUpdatesMessage      = "No updates found"
	alreadyPushedMessage  = "No updates that have not already been pushed."
	alreadyHandledReason  = "an open request for this update already exists"
	dryRunReason          = "dry run"
	workspacePattern      = "depbot-*"
	cacheDirPermissions   = 0o755
	defaultBranchFallback = "HEAD"
)

// Run is the interface for the run command.
type Run interface {
	Execute(ctx context.Context, settings *entities.Settings, opts RunOptions) (*entities.Report, error)
}

// RunOptions holds runtime options for a single run.
type RunOptions struct {
	Repository string // "owner/name", "host/owner/name" or a clone URL
	Token      string // overrides the configured token for the repository host
	DryRun     bool
	Verbose    bool
}

// RunCommand updates the outdated dependencies of one repository:
// clone -> install -> list outdated -> match -> one transaction per candidate.
type RunCommand struct {
	providerRegistry   *infraRepos.ProviderRegistry
	commandRepository  repositories.CommandRepository
	packageManager     repositories.PackageManagerRepository
	changelogRetriever *ChangelogRetriever
	metricsRepository  repositories.MetricsRepository
	clock              clockwork.Clock
}

// NewRunCommand creates a new RunCommand.
func NewRunCommand(
	providerRegistry *infraRepos.ProviderRegistry,
	commandRepository repositories.CommandRepository,
	packageManager repositories.PackageManagerRepository,
	changelogRetriever *ChangelogRetriever,
	metricsRepository repositories.MetricsRepository,
	clock clockwork.Clock,
) *RunCommand {
	return &RunCommand{
		providerRegistry:   providerRegistry,
		commandRepository:  commandRepository,
		packageManager:     packageManager,
		changelogRetriever: changelogRetriever,
		metricsRepository:  metricsRepository,
		clock:              clock,
	}
}

// runState is everything a single run knows about its target repository.
type runState struct {
	settings  *entities.Settings
	opts      RunOptions
	log       *logger.Entry
	slug      entities.RepositorySlug
	provider  repositories.ProviderRepository
	config    entities.ProviderConfig
	workspace string
	installed bool

	packageManager repositories.PackageManagerRepository

	manifest       entities.Manifest
	hadLockfile    bool
	lockfileBefore *entities.Lockfile

	defaultBranch string
	private       bool
	pushRemote    string
	headOwner     string
}

// Execute runs the full update cycle against opts.Repository. Only workspace,
// clone, install and parse failures (and an unknown forge host) are returned
// as errors. Everything scoped to a single dependency ends up in the report.
func (it *RunCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts RunOptions,
) (*entities.Report, error) {
	report := &entities.Report{}
	start := it.clock.Now()

	runErr := it.execute(ctx, settings, opts, report)

	report.Duration = it.clock.Since(start)
	if metricsErr := it.metricsRepository.RecordRun(settings.Metrics.Textfile, report, runErr); metricsErr != nil {
		logger.Warnf("Failed to record run metrics: %v", metricsErr)
	}
	return report, runErr
}

func (it *RunCommand) execute(
	ctx context.Context,
	settings *entities.Settings,
	opts RunOptions,
	report *entities.Report,
) error {
	slug, err := entities.ParseRepositorySlug(opts.Repository)
	if err != nil {
		return err
	}
	report.Slug = slug

	if opts.Token != "" {
		settings = settings.WithToken(slug.Host(), opts.Token)
	}
	run := &runState{
		settings: settings,
		opts:     opts,
		log:      newRunLogger(report, opts.Verbose).WithField("repository", slug.String()),
		slug:     slug,

		packageManager: it.packageManager.WithBinary(settings.PackageManager.Binary),
	}

	run.provider, run.config, err = it.providerRegistry.ForHost(settings, slug.Host())
	if err != nil {
		return err
	}
	if authErr := run.provider.Authenticate(ctx, run.config.Token); authErr != nil {
		run.log.Warnf("Could not authenticate against %s: %v", slug.Host(), authErr)
	}

	run.workspace, err = os.MkdirTemp(settings.Workspace.TmpParent, workspacePattern)
	if err != nil {
		return fmt.Errorf("%w: failed to create workspace: %w", entities.ErrWorkspace, err)
	}
	defer it.cleanUp(ctx, run)

	if err = it.prepareWorkspace(ctx, run); err != nil {
		return err
	}

	dependencies, err := it.listOutdated(ctx, run)
	if err != nil {
		return err
	}
	if len(dependencies) == 0 {
		run.log.Info(noUpdatesMessage)
		return nil
	}

	branches, requests, defaultBase := it.gatherForgeMetadata(ctx, run)

	remaining := FilterCandidates(dependencies, branches, requests, defaultBase)
	if len(remaining) == 0 {
		run.log.Info(alreadyPushedMessage)
		for _, dependency := range dependencies {
			report.Outcomes = append(report.Outcomes, entities.Skipped(dependency, alreadyHandledReason))
		}
		return nil
	}

	if opts.DryRun {
		for _, dependency := range dependencies {
			reason := dryRunReason
			if IsAlreadyHandled(dependency, branches, requests, defaultBase) {
				reason = alreadyHandledReason
			}
			run.log.Infof("Would update %s from %s to %s", dependency.Name, dependency.Version, dependency.Latest)
			report.Outcomes = append(report.Outcomes, entities.Skipped(dependency, reason))
		}
		return nil
	}

	if _, unshallowErr := it.runChecked(ctx, run, settings.Timeouts.Network, gitUnshallow()); unshallowErr != nil {
		run.log.Warnf("Could not unshallow the clone: %v", unshallowErr)
	}
	it.prepareRemote(ctx, run)

	run.lockfileBefore, err = entities.ReadLockfile(it.workspacePath(run, run.packageManager.LockFile()))
	if err != nil {
		return err
	}

	for _, dependency := range dependencies {
		if IsAlreadyHandled(dependency, branches, requests, defaultBase) {
			run.log.Infof("Skipping %s, %s", dependency.Name, alreadyHandledReason)
			report.Outcomes = append(report.Outcomes, entities.Skipped(dependency, alreadyHandledReason))
			continue
		}
		report.Outcomes = append(report.Outcomes, it.applyUpdate(ctx, run, dependency))
	}

	run.log.Infof("Run complete: %d created, %d skipped, %d failed",
		report.Count(entities.OutcomeCreated),
		report.Count(entities.OutcomeSkipped),
		report.Count(entities.OutcomeFailed),
	)
	return nil
}

// prepareWorkspace clones the repository, restores the install cache and
// installs the dependency tree.
func (it *RunCommand) prepareWorkspace(ctx context.Context, run *runState) error {
	timeouts := run.settings.Timeouts

	run.log.Infof("Cloning %s", run.slug)
	result, err := it.run(ctx, run, timeouts.Clone,
		gitClone(run.provider.CloneURL(run.slug.Owner(), run.slug.Name())))
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrClone, err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("%w: git clone exited with %d: %s", entities.ErrClone, result.ExitCode, result.Stderr)
	}

	run.manifest, err = entities.ReadManifest(it.workspacePath(run, run.packageManager.ManifestFile()))
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(it.workspacePath(run, run.packageManager.LockFile())); statErr == nil {
		run.hadLockfile = true
	}

	it.authenticatePackageManager(ctx, run)
	it.restoreCache(ctx, run)

	run.log.Infof("Installing dependencies with %s", run.packageManager.Name())
	result, err = it.run(ctx, run, timeouts.Install, run.packageManager.InstallCommand())
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrInstall, err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("%w: install exited with %d: %s", entities.ErrInstall, result.ExitCode, result.Stderr)
	}
	run.installed = true
	return nil
}

func (it *RunCommand) listOutdated(ctx context.Context, run *runState) ([]entities.OutdatedDependency, error) {
	result, err := it.run(ctx, run, run.settings.Timeouts.Update, run.packageManager.OutdatedCommand())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrParse, err)
	}
	if !result.Succeeded() {
		return nil, fmt.Errorf("%w: outdated listing exited with %d: %s",
			entities.ErrParse, result.ExitCode, result.Stderr)
	}

	dependencies, err := run.packageManager.ParseOutdated(result.Stdout)
	if err != nil {
		return nil, err
	}
	for _, dependency := range dependencies {
		run.log.Infof("%s: %s installed, %s available (type %s)",
			dependency.Name, dependency.Version, dependency.Latest, dependency.LatestStatus)
	}
	return dependencies, nil
}

// gatherForgeMetadata never fails: forge errors leave the values empty, which
// turns deduplication off instead of aborting the run.
func (it *RunCommand) gatherForgeMetadata(
	ctx context.Context,
	run *runState,
) (map[string]struct{}, entities.ExistingRequestIndex, string) {
	owner, name := run.slug.Owner(), run.slug.Name()

	defaultBranch, err := run.provider.GetDefaultBranch(ctx, owner, name)
	if err != nil || defaultBranch == "" {
		run.log.Warnf("Could not read the default branch from %s: %v", run.provider.Name(), providerError(err))
		defaultBranch = it.currentBranch(ctx, run)
	}
	run.defaultBranch = defaultBranch

	private, err := run.provider.RepoIsPrivate(ctx, owner, name)
	if err != nil {
		run.log.Warnf("Could not read repository visibility, assuming private: %v", providerError(err))
		private = true
	}
	run.private = private
	if !run.private && run.config.ForkOwner == "" {
		run.log.Warn("No fork owner configured, pushing directly to origin")
		run.private = true
	}

	branchOwner := owner
	if !run.private {
		branchOwner = run.config.ForkOwner
	}
	branches, err := run.provider.GetBranchesFlattened(ctx, branchOwner, name)
	if err != nil {
		run.log.Warnf("Could not list branches: %v", providerError(err))
		branches = map[string]struct{}{}
	}

	requests, err := run.provider.GetPrsNamed(ctx, owner, name)
	if err != nil {
		run.log.Warnf("Could not list open requests: %v", providerError(err))
		requests = entities.ExistingRequestIndex{}
	}

	defaultBase, err := run.provider.GetDefaultBase(ctx, owner, name, defaultBranch)
	if err != nil && !run.private {
		run.log.Warnf("Could not resolve the head of %s, trying the fork: %v", defaultBranch, providerError(err))
		defaultBase, err = run.provider.GetDefaultBase(ctx, run.config.ForkOwner, name, defaultBranch)
	}
	if err != nil {
		run.log.Warnf("Could not resolve the head of %s: %v", defaultBranch, providerError(err))
		defaultBase = ""
	}

	return branches, requests, defaultBase
}

func (it *RunCommand) currentBranch(ctx context.Context, run *runState) string {
	result, err := it.runChecked(ctx, run, run.settings.Timeouts.Default, gitCurrentBranch())
	if err != nil {
		run.log.Warnf("Could not read the checked out branch: %v", err)
		return defaultBranchFallback
	}
	return strings.TrimSpace(result.Stdout)
}

// prepareRemote decides where branches are pushed. Public repositories get
// a synced fork. Forges without forks push to origin.
func (it *RunCommand) prepareRemote(ctx context.Context, run *runState) {
	run.pushRemote = originName
	run.headOwner = ""
	if run.private {
		return
	}

	owner, name := run.slug.Owner(), run.slug.Name()
	fork, err := run.provider.CreateFork(ctx, owner, name, run.config.ForkOwner)
	if err != nil {
		if !errors.Is(err, entities.ErrUnsupportedOperation) {
			run.log.Errorf("Could not create a fork of %s: %v", run.slug, err)
		}
		run.log.Infof("Pushing update branches directly to %s", originName)
		run.private = true
		return
	}

	forkOwner, forkName := run.config.ForkOwner, name
	if fork != nil && fork.Organization != "" {
		forkOwner, forkName = fork.Organization, fork.Name
	}
	if _, remoteErr := it.runChecked(ctx, run, run.settings.Timeouts.Default,
		gitAddRemote(forkRemote, run.provider.CloneURL(forkOwner, forkName))); remoteErr != nil {
		run.log.Warnf("Could not add the fork remote: %v", remoteErr)
	}
	if _, syncErr := it.runChecked(ctx, run, run.settings.Timeouts.Network,
		gitPush(forkRemote, run.defaultBranch, false)); syncErr != nil {
		run.log.Warnf("Could not sync the fork: %v", syncErr)
	}

	run.pushRemote = forkRemote
	run.headOwner = forkOwner
}

func (it *RunCommand) authenticatePackageManager(ctx context.Context, run *runState) {
	if run.config.Token == "" {
		return
	}
	command := run.packageManager.AuthCommand(run.config.Type, run.slug.Host(), run.config.Token)
	if _, err := it.runChecked(ctx, run, run.settings.Timeouts.Default, command); err != nil {
		run.log.Warnf("Could not configure %s authentication: %v", run.packageManager.Name(), err)
	}
}

func (it *RunCommand) cachePath(run *runState) string {
	return filepath.Join(run.settings.Workspace.CacheDir, run.slug.CacheKey())
}

func (it *RunCommand) restoreCache(ctx context.Context, run *runState) {
	cachePath := it.cachePath(run)
	if _, err := os.Stat(cachePath); err != nil {
		return
	}
	run.log.Info("Restoring install cache")
	if _, err := it.runChecked(ctx, run, run.settings.Timeouts.Network, rsyncRestore(cachePath, run.workspace)); err != nil {
		run.log.Warnf("Could not restore the install cache: %v", err)
	}
}

// cleanUp persists the install artifacts of a successful install, then
// removes the workspace.
func (it *RunCommand) cleanUp(ctx context.Context, run *runState) {
	run.log.Info("Cleaning up after update check.")
	if run.installed {
		cachePath := it.cachePath(run)
		manifestPrefix := strings.TrimSuffix(
			run.packageManager.ManifestFile(), filepath.Ext(run.packageManager.ManifestFile()))
		if err := os.MkdirAll(cachePath, cacheDirPermissions); err != nil {
			run.log.Warnf("Could not create cache directory %q: %v", cachePath, err)
		} else if _, syncErr := it.runChecked(ctx, run, run.settings.Timeouts.Network,
			rsyncPersist(run.workspace, cachePath, manifestPrefix)); syncErr != nil {
			run.log.Warnf("Could not store the install cache: %v", syncErr)
		}
	}
	if err := os.RemoveAll(run.workspace); err != nil {
		run.log.Warnf("Could not remove workspace %q: %v", run.workspace, err)
	}
}

func (it *RunCommand) workspacePath(run *runState, file string) string {
	return filepath.Join(run.workspace, file)
}

// run executes a command in the workspace. A non-zero exit is returned in
// the result, not as an error.
func (it *RunCommand) run(
	ctx context.Context,
	run *runState,
	timeoutSeconds int,
	command entities.Command,
) (entities.CommandResult, error) {
	run.log.Debugf("Running: %s", command)
	result, err := it.commandRepository.Execute(ctx, run.workspace, command, entities.Seconds(timeoutSeconds))
	if err != nil {
		return result, err
	}
	if !result.Succeeded() {
		run.log.Debugf("Command exited with %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return result, nil
}

// runChecked is run with a non-zero exit turned into entities.ErrExecution.
func (it *RunCommand) runChecked(
	ctx context.Context,
	run *runState,
	timeoutSeconds int,
	command entities.Command,
) (entities.CommandResult, error) {
	result, err := it.run(ctx, run, timeoutSeconds, command)
	if err != nil {
		return result, err
	}
	if !result.Succeeded() {
		return result, fmt.Errorf("%w: %q exited with %d: %s",
			entities.ErrExecution, command.String(), result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return result, nil
}

func providerError(err error) error {
	if err == nil {
		return fmt.Errorf("%w: empty response", entities.ErrProviderRuntime)
	}
	return fmt.Errorf("%w: %w", entities.ErrProviderRuntime, err)
}
