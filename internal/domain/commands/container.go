package commands

import (
	"github.com/jonboulle/clockwork"
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(clockwork.NewRealClock); err != nil {
		return err
	}

	// Register command constructors
	if err := container.Provide(NewChangelogRetriever); err != nil {
		return err
	}
	if err := container.Provide(NewRunCommand); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *RunCommand) Run {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
