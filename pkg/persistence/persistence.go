// Package persistence provides the data storage abstraction for workflows,
// users and projects.
package persistence

import (
	"context"

	"github.com/flowbridge/flowbridge/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	UserRepository() UserRepository
	ProjectRepository() ProjectRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow documents.
type WorkflowRepository interface {
	List(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)

	// SearchByName returns workflows whose name contains the query as a
	// case-insensitive substring. Callers needing an exact match must
	// filter the candidates themselves.
	SearchByName(ctx context.Context, query string) ([]*models.Workflow, error)

	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// UserRepository stores application identities.
type UserRepository interface {
	List(ctx context.Context) ([]*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// ProjectRepository stores ownership containers for workflows.
type ProjectRepository interface {
	GetPersonalByOwner(ctx context.Context, ownerID string) (*models.Project, error)
	Save(ctx context.Context, project *models.Project) error
}
