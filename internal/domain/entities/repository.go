package entities

import (
	gitforgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
)

// Repository is re-exported from gitforge. Providers return it to describe forks.
type Repository = gitforgeEntities.Repository
