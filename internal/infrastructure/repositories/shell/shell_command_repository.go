package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rios0rios0/depbot/internal/domain/entities"
	"github.com/rios0rios0/depbot/internal/domain/repositories"
)

// CommandRepository runs commands as local subprocesses.
type CommandRepository struct{}

// NewCommandRepository creates a CommandRepository.
func NewCommandRepository() repositories.CommandRepository {
	return &CommandRepository{}
}

// Execute runs command in dir and waits up to timeout for it. The process is
// killed at the deadline and entities.ErrCommandTimeout is returned.
func (it *CommandRepository) Execute(
	ctx context.Context,
	dir string,
	command entities.Command,
	timeout time.Duration,
) (entities.CommandResult, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, command.Name, command.Args...) //nolint:gosec // commands are built internally
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), command.Env...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := entities.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		return result, fmt.Errorf("%w: %q after %s", entities.ErrCommandTimeout, command.String(), timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("failed to run %q: %w", command.String(), err)
	}
	return result, nil
}
