// Package redis provides Redis-backed persistence for workflows, users and projects.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const (
	workflowPrefix = "flowbridge:workflow:"
	userPrefix     = "flowbridge:user:"
	projectPrefix  = "flowbridge:project:"

	scanBatchSize = 100
)

// Persistence implements the persistence.Persistence interface on Redis.
type Persistence struct {
	client       *redis.Client
	workflowRepo *WorkflowRepository
	userRepo     *UserRepository
	projectRepo  *ProjectRepository
}

// NewPersistence creates a Redis persistence layer from a redis:// URL.
func NewPersistence(ctx context.Context, redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Persistence{
		client:       client,
		workflowRepo: &WorkflowRepository{client: client},
		userRepo:     &UserRepository{client: client},
		projectRepo:  &ProjectRepository{client: client},
	}, nil
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) UserRepository() persistence.UserRepository {
	return p.userRepo
}

func (p *Persistence) ProjectRepository() persistence.ProjectRepository {
	return p.projectRepo
}

// scanValues iterates all keys under prefix and decodes each value into T.
func scanValues[T any](ctx context.Context, client *redis.Client, prefix string) ([]*T, error) {
	values := make([]*T, 0)

	var cursor uint64

	for {
		keys, next, err := client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys with prefix %s: %w", prefix, err)
		}

		for _, key := range keys {
			data, err := client.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}

				return nil, fmt.Errorf("failed to get key %s: %w", key, err)
			}

			value := new(T)
			if err := json.Unmarshal(data, value); err != nil {
				return nil, fmt.Errorf("failed to decode key %s: %w", key, err)
			}

			values = append(values, value)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return values, nil
}

// WorkflowRepository stores workflow documents as JSON values keyed by ID.
type WorkflowRepository struct {
	client *redis.Client
}

func (wr *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	return scanValues[models.Workflow](ctx, wr.client, workflowPrefix)
}

func (wr *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	data, err := wr.client.Get(ctx, workflowPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) SearchByName(ctx context.Context, query string) ([]*models.Workflow, error) {
	workflows, err := wr.List(ctx)
	if err != nil {
		return nil, persistence.NewSearchError("SearchByName", query, err)
	}

	needle := strings.ToLower(query)
	matches := make([]*models.Workflow, 0)

	for _, workflow := range workflows {
		if strings.Contains(strings.ToLower(workflow.Name), needle) {
			matches = append(matches, workflow)
		}
	}

	return matches, nil
}

func (wr *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		return persistence.NewWorkflowError("Save", "", errors.New("workflow ID is required"))
	}

	data, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	if err := wr.client.Set(ctx, workflowPrefix+workflow.ID, data, 0).Err(); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (wr *WorkflowRepository) Delete(ctx context.Context, id string) error {
	deleted, err := wr.client.Del(ctx, workflowPrefix+id).Result()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if deleted == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

// UserRepository stores users as JSON values keyed by ID.
type UserRepository struct {
	client *redis.Client
}

func (ur *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	return scanValues[models.User](ctx, ur.client, userPrefix)
}

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

func (ur *UserRepository) Save(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return &persistence.UserError{Op: "Save", Email: user.Email, Err: errors.New("user ID is required")}
	}

	data, err := json.Marshal(user)
	if err != nil {
		return &persistence.UserError{Op: "Save", Email: user.Email, Err: err}
	}

	if err := ur.client.Set(ctx, userPrefix+user.ID, data, 0).Err(); err != nil {
		return &persistence.UserError{Op: "Save", Email: user.Email, Err: err}
	}

	return nil
}

// ProjectRepository stores projects as JSON values keyed by ID.
type ProjectRepository struct {
	client *redis.Client
}

func (pr *ProjectRepository) GetPersonalByOwner(ctx context.Context, ownerID string) (*models.Project, error) {
	projects, err := scanValues[models.Project](ctx, pr.client, projectPrefix)
	if err != nil {
		return nil, err
	}

	for _, project := range projects {
		if project.Type == models.ProjectTypePersonal && project.OwnerID == ownerID {
			return project, nil
		}
	}

	return nil, nil
}

func (pr *ProjectRepository) Save(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		return errors.New("project ID is required")
	}

	data, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to serialize project %s: %w", project.ID, err)
	}

	if err := pr.client.Set(ctx, projectPrefix+project.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write project %s: %w", project.ID, err)
	}

	return nil
}
