package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rios0rios0/depbot/internal/domain/entities"
)

// applyUpdate takes one dependency through
// constraint check -> branch -> update -> commit -> push -> request.
// Whatever happens, the default branch is checked out again afterwards.
func (it *RunCommand) applyUpdate(
	ctx context.Context,
	run *runState,
	dependency entities.OutdatedDependency,
) entities.UpdateOutcome {
	state := entities.StateStart
	defer func() {
		run.log.Infof("Checking out default branch - %s", run.defaultBranch)
		if _, err := it.runChecked(ctx, run, run.settings.Timeouts.Default, gitCheckout(run.defaultBranch)); err != nil {
			run.log.Errorf("Could not check out %s: %v", run.defaultBranch, err)
		}
	}()

	fail := func(err error) entities.UpdateOutcome {
		outcome := entities.Failed(dependency, state, err)
		switch {
		case errors.Is(err, entities.ErrConstraintViolation):
			run.log.Error(err.Error())
		case errors.Is(err, entities.ErrValidation):
			run.log.Errorf("Had a problem with creating the pull request: %v", err)
		default:
			run.log.Errorf("Caught an error updating %s: %v", dependency.Name, err)
		}
		return outcome
	}

	// informational only, the result never decides anything
	whyNot, whyNotErr := it.run(ctx, run, run.settings.Timeouts.Network,
		run.packageManager.WhyNotCommand(dependency.Name, dependency.Latest))
	if whyNotErr == nil {
		run.log.Debugf("why-not %s:%s: %s", dependency.Name, dependency.Latest, whyNot.Stdout)
	}

	state = entities.StateConstraintCheck
	constraint, dev, err := it.checkConstraint(run, dependency)
	if err != nil {
		return fail(err)
	}

	branch := dependency.BranchName()
	run.log.Infof("Checking out new branch: %s", branch)
	if _, err = it.runChecked(ctx, run, run.settings.Timeouts.Default, gitCheckoutNewBranch(branch)); err != nil {
		return fail(err)
	}
	if _, err = it.runChecked(ctx, run, run.settings.Timeouts.Default, gitDiscardChanges()); err != nil {
		return fail(err)
	}
	state = entities.StateBranchCreated

	if err = it.executeUpdate(ctx, run, dependency, constraint, dev); err != nil {
		return fail(err)
	}
	state = entities.StateUpdated

	lockfileAfter, versionFrom, versionTo, err := it.detectChange(run, dependency)
	if err != nil {
		return fail(err)
	}

	if err = it.commit(ctx, run, dependency); err != nil {
		return fail(err)
	}
	state = entities.StateCommitted

	if _, err = it.runChecked(ctx, run, run.settings.Timeouts.Network,
		gitPush(run.pushRemote, branch, true)); err != nil {
		return fail(fmt.Errorf("%w: could not push to %s: %w", entities.ErrPush, branch, err))
	}
	state = entities.StatePushed

	changelog := it.retrieveChangelog(ctx, run, dependency.Name, lockfileAfter, versionFrom, versionTo)

	head := branch
	if run.headOwner != "" {
		head = run.headOwner + ":" + branch
	}
	run.log.Infof("Creating pull request from %s", branch)
	request, err := run.provider.CreatePullRequest(ctx, run.slug.Owner(), run.slug.Name(), entities.PullRequestInput{
		SourceBranch: head,
		TargetBranch: run.defaultBranch,
		Title:        entities.PullRequestTitle(dependency),
		Description:  entities.PullRequestBody(dependency, changelog),
	})
	if err != nil {
		return fail(err)
	}

	run.log.Infof("Created pull request %s", request.URL)
	return entities.Created(dependency, request.URL)
}

// checkConstraint returns the declared constraint and whether the package is
// a development requirement, failing when latest falls outside the constraint.
func (it *RunCommand) checkConstraint(
	run *runState,
	dependency entities.OutdatedDependency,
) (string, bool, error) {
	constraint, dev, declared := run.manifest.Requirement(dependency.Name)
	if !declared {
		return "", false, fmt.Errorf("%w: package %s is not declared in %s",
			entities.ErrConstraintViolation, dependency.Name, run.packageManager.ManifestFile())
	}

	satisfied, err := entities.SatisfiesConstraint(dependency.Latest, constraint)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", entities.ErrConstraintViolation, err)
	}
	if !satisfied {
		return "", false, fmt.Errorf("%w: package %s with the constraint %s can not be updated to %s",
			entities.ErrConstraintViolation, dependency.Name, constraint, dependency.Latest)
	}
	return constraint, dev, nil
}

// executeUpdate keeps the declared operator. Without a lockfile the package
// is required directly, otherwise it is updated with its dependencies and an
// exact constraint is moved to the new version as well.
func (it *RunCommand) executeUpdate(
	ctx context.Context,
	run *runState,
	dependency entities.OutdatedDependency,
	constraint string,
	dev bool,
) error {
	timeout := run.settings.Timeouts.Update
	operator := entities.ConstraintOperator(constraint)

	if !run.hadLockfile {
		result, err := it.run(ctx, run, timeout,
			run.packageManager.RequireCommand(dependency.Name, operator+dependency.Latest, dev, false))
		if err != nil {
			return fmt.Errorf("%w: %w", entities.ErrUpdateExecution, err)
		}
		if !result.Succeeded() {
			return fmt.Errorf("%w: require exited with %d: %s",
				entities.ErrUpdateExecution, result.ExitCode, result.Stderr)
		}
		return nil
	}

	run.log.Infof("Running %s update for package %s", run.packageManager.Name(), dependency.Name)
	result, err := it.run(ctx, run, timeout, run.packageManager.UpdateCommand(dependency.Name))
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrUpdateExecution, err)
	}
	if !result.Succeeded() {
		run.log.Errorf("Problem running %s update: %s", run.packageManager.Name(), result.Stderr)
		return fmt.Errorf("%w: update did not complete successfully", entities.ErrUpdateExecution)
	}
	run.log.Infof("Successfully ran %s update for package %s", run.packageManager.Name(), dependency.Name)

	if operator == "" && !entities.IsDevConstraint(constraint) {
		if _, requireErr := it.runChecked(ctx, run, timeout,
			run.packageManager.RequireCommand(dependency.Name, dependency.Latest, dev, true)); requireErr != nil {
			if errors.Is(requireErr, entities.ErrCommandTimeout) {
				return fmt.Errorf("%w: %w", entities.ErrUpdateExecution, requireErr)
			}
			run.log.Warnf("Could not move the requirement of %s to %s: %v", dependency.Name, dependency.Latest, requireErr)
		}
	}
	return nil
}

// detectChange compares the installed reference before and after the update.
// Git-sourced packages are compared by commit since their version string can
// stay the same. It returns the lockfile and the range used for the changelog.
func (it *RunCommand) detectChange(
	run *runState,
	dependency entities.OutdatedDependency,
) (*entities.Lockfile, string, string, error) {
	lockfileAfter, err := entities.ReadLockfile(it.workspacePath(run, run.packageManager.LockFile()))
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", entities.ErrUpdateExecution, err)
	}
	after, err := lockfileAfter.Package(dependency.Name)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", entities.ErrNotUpdated, err)
	}

	from, to := dependency.Version, after.Version
	if before, beforeErr := run.lockfileBefore.Package(dependency.Name); beforeErr == nil {
		from, to = before.InstalledReference(), after.InstalledReference()
	}

	if from == to {
		return nil, "", "", fmt.Errorf("%w: the version installed is still the same after trying to update",
			entities.ErrNotUpdated)
	}
	return lockfileAfter, from, to, nil
}

// commit stages only the manifest and the lockfile.
func (it *RunCommand) commit(
	ctx context.Context,
	run *runState,
	dependency entities.OutdatedDependency,
) error {
	timeout := run.settings.Timeouts.Default
	manifest, lockfile := run.packageManager.ManifestFile(), run.packageManager.LockFile()

	if _, err := it.runChecked(ctx, run, timeout, gitDiscardExcept(manifest, lockfile)); err != nil {
		run.log.Warnf("Could not discard changes outside %s and %s: %v", manifest, lockfile, err)
	}
	// the discard may have removed the auth configuration
	it.authenticatePackageManager(ctx, run)

	files := []string{manifest}
	if _, err := os.Stat(it.workspacePath(run, lockfile)); err == nil {
		files = append(files, lockfile)
	}
	if _, err := it.runChecked(ctx, run, timeout, gitAdd(files...)); err != nil {
		return err
	}
	if _, err := it.runChecked(ctx, run, timeout,
		gitCommit(entities.CommitMessage(dependency), run.settings.Identity)); err != nil {
		return fmt.Errorf("error committing the %s files, they are probably not changed: %w", manifest, err)
	}
	return nil
}

// retrieveChangelog never fails the update. Errors are logged and dropped.
func (it *RunCommand) retrieveChangelog(
	ctx context.Context,
	run *runState,
	name string,
	lockfileAfter *entities.Lockfile,
	versionFrom, versionTo string,
) *entities.ChangeLogData {
	run.log.Infof("Trying to retrieve changelog for %s", name)

	lockfile := run.lockfileBefore
	if lockfile == nil {
		lockfile = lockfileAfter
	}
	timeout := entities.Seconds(run.settings.Timeouts.Network)
	mirrorCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	changelog, err := it.changelogRetriever.Retrieve(
		mirrorCtx, run.settings.Workspace.MirrorDir, name, lockfile, versionFrom, versionTo)
	if err != nil && errors.Is(mirrorCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, entities.ErrCommandTimeout) {
		err = fmt.Errorf("%w: changelog of %s after %s: %w", entities.ErrCommandTimeout, name, timeout, err)
	}
	if err != nil {
		run.log.Warnf("Could not retrieve changelog: %v", err)
		return nil
	}
	run.log.Info("Changelog retrieved")
	return changelog
}
