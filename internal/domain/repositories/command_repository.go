package repositories

import (
	"context"
	"time"

	"github.com/rios0rios0/depbot/internal/domain/entities"
)

// CommandRepository runs subprocesses. A non-zero exit is not an error: it is
// reported in the result. Errors are reserved for commands that could not be
// started or that hit the timeout (entities.ErrCommandTimeout).
type CommandRepository interface {
	Execute(
		ctx context.Context,
		dir string,
		command entities.Command,
		timeout time.Duration,
	) (entities.CommandResult, error)
}
