package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/persistence"
)

// UserRepository handles user-related file operations.
type UserRepository struct {
	root string
}

// NewUserRepository creates a new user repository.
func NewUserRepository(root string) *UserRepository {
	return &UserRepository{root: root}
}

func (ur *UserRepository) dir() string {
	return path.Join(ur.root, "users")
}

// List returns all stored users.
func (ur *UserRepository) List(_ context.Context) ([]*models.User, error) {
	if _, err := os.Stat(ur.dir()); os.IsNotExist(err) {
		return make([]*models.User, 0), nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(ur.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list user files: %w", err)
	}

	users := make([]*models.User, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		data, err := os.ReadFile(path.Join(ur.dir(), file))
		if err != nil {
			return nil, fmt.Errorf("failed to read user file %s: %w", file, err)
		}

		var user models.User
		if err := json.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("failed to parse user file %s: %w", file, err)
		}

		users = append(users, &user)
	}

	return users, nil
}

// GetByEmail returns the user with the given email, or nil when none exists.
// Email comparison is case-insensitive.
func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := ur.List(ctx)
	if err != nil {
		return nil, &persistence.UserError{Op: "GetByEmail", Email: email, Err: err}
	}

	for _, user := range users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}

	return nil, nil
}

// ListByRole returns all users carrying the given role.
func (ur *UserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error) {
	users, err := ur.List(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]*models.User, 0)

	for _, user := range users {
		if user.Role == role {
			matches = append(matches, user)
		}
	}

	return matches, nil
}

// Save writes the user to its JSON file.
func (ur *UserRepository) Save(_ context.Context, user *models.User) error {
	if user.ID == "" {
		return &persistence.UserError{Op: "Save", Email: user.Email, Err: errors.New("user ID is required")}
	}

	if err := os.MkdirAll(ur.dir(), 0o755); err != nil {
		return &persistence.UserError{Op: "Save", Email: user.Email, Err: err}
	}

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return &persistence.UserError{Op: "Save", Email: user.Email, Err: err}
	}

	filePath := path.Join(ur.dir(), user.ID+".json")
	if err := os.WriteFile(filePath, data, workflowFileMode); err != nil {
		return &persistence.UserError{Op: "Save", Email: user.Email, Err: err}
	}

	return nil
}

// ProjectRepository handles project-related file operations.
type ProjectRepository struct {
	root string
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(root string) *ProjectRepository {
	return &ProjectRepository{root: root}
}

func (pr *ProjectRepository) dir() string {
	return path.Join(pr.root, "projects")
}

// GetPersonalByOwner returns the personal project owned by the given user,
// or nil when none exists.
func (pr *ProjectRepository) GetPersonalByOwner(_ context.Context, ownerID string) (*models.Project, error) {
	if _, err := os.Stat(pr.dir()); os.IsNotExist(err) {
		return nil, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(pr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}

	for _, file := range jsonFiles {
		data, err := os.ReadFile(path.Join(pr.dir(), file))
		if err != nil {
			return nil, fmt.Errorf("failed to read project file %s: %w", file, err)
		}

		var project models.Project
		if err := json.Unmarshal(data, &project); err != nil {
			return nil, fmt.Errorf("failed to parse project file %s: %w", file, err)
		}

		if project.Type == models.ProjectTypePersonal && project.OwnerID == ownerID {
			return &project, nil
		}
	}

	return nil, nil
}

// Save writes the project to its JSON file.
func (pr *ProjectRepository) Save(_ context.Context, project *models.Project) error {
	if project.ID == "" {
		return errors.New("project ID is required")
	}

	if err := os.MkdirAll(pr.dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create projects directory: %w", err)
	}

	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize project %s: %w", project.ID, err)
	}

	filePath := path.Join(pr.dir(), project.ID+".json")
	if err := os.WriteFile(filePath, data, workflowFileMode); err != nil {
		return fmt.Errorf("failed to write project %s: %w", project.ID, err)
	}

	return nil
}
