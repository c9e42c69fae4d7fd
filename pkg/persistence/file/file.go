// Package file provides file-based persistence for workflows, users and projects.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/flowbridge/flowbridge/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	userRepo     *UserRepository
	projectRepo  *ProjectRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		userRepo:     NewUserRepository(cleanRoot),
		projectRepo:  NewProjectRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) UserRepository() persistence.UserRepository {
	return fp.userRepo
}

func (fp *Persistence) ProjectRepository() persistence.ProjectRepository {
	return fp.projectRepo
}
