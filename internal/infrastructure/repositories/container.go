package repositories

import (
	"github.com/rios0rios0/depbot/internal/domain/entities"
	composerRepo "github.com/rios0rios0/depbot/internal/infrastructure/repositories/composer"
	ghRepo "github.com/rios0rios0/depbot/internal/infrastructure/repositories/github"
	glRepo "github.com/rios0rios0/depbot/internal/infrastructure/repositories/gitlab"
	mirrorRepo "github.com/rios0rios0/depbot/internal/infrastructure/repositories/gitmirror"
	promRepo "github.com/rios0rios0/depbot/internal/infrastructure/repositories/prometheus"
	shellRepo "github.com/rios0rios0/depbot/internal/infrastructure/repositories/shell"
	"go.uber.org/dig"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register provider registry with all forge factories
	if err := container.Provide(func() *ProviderRegistry {
		reg := NewProviderRegistry()
		reg.Register(entities.ProviderTypeGitHub, ghRepo.NewGitHubProviderRepository)
		reg.Register(entities.ProviderTypeGitLab, glRepo.NewGitLabProviderRepository)
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(shellRepo.NewCommandRepository); err != nil {
		return err
	}
	if err := container.Provide(composerRepo.NewPackageManagerRepository); err != nil {
		return err
	}
	if err := container.Provide(mirrorRepo.NewChangelogRepository); err != nil {
		return err
	}
	if err := container.Provide(promRepo.NewMetricsRepository); err != nil {
		return err
	}

	return nil
}
