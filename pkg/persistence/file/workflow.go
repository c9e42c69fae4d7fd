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

const workflowFileMode = 0o644

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	root string
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) dir() string {
	return path.Join(wr.root, "workflows")
}

// List returns all stored workflows.
func (wr *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	if _, err := os.Stat(wr.dir()); os.IsNotExist(err) {
		return make([]*models.Workflow, 0), nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(wr.dir()), "*.json")
	if err != nil {
		return nil, persistence.NewWorkflowError("List", "", err)
	}

	workflows := make([]*models.Workflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflowID := strings.TrimSuffix(file, ".json")

		workflow, err := wr.GetByID(ctx, workflowID)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
		}

		if workflow != nil {
			workflows = append(workflows, workflow)
		}
	}

	return workflows, nil
}

// GetByID returns the workflow with the given ID, or nil when no such file exists.
func (wr *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	filePath := path.Join(wr.dir(), id+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
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

// SearchByName returns workflows whose name contains the query as a
// case-insensitive substring.
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

// Save writes the workflow to its JSON file, creating the directory on first use.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		return persistence.NewWorkflowError("Save", "", errors.New("workflow ID is required"))
	}

	if err := os.MkdirAll(wr.dir(), 0o755); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	filePath := path.Join(wr.dir(), workflow.ID+".json")
	if err := os.WriteFile(filePath, data, workflowFileMode); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// Delete removes the workflow file.
func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	filePath := path.Join(wr.dir(), id+".json")

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
		}

		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}
