package internal

import (
	"github.com/rios0rios0/depbot/internal/domain/entities"
)

// AppInternal holds everything the binary mounts on its root command.
type AppInternal struct {
	controllers []entities.Controller
}

// NewAppInternal creates the AppInternal from the registered controllers.
func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: *controllers}
}

// GetControllers returns the controllers to be bound as subcommands.
func (it *AppInternal) GetControllers() []entities.Controller {
	return it.controllers
}
