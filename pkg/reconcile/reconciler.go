// Package reconcile converges the workflow store to externally authored
// workflow documents: find-or-create by name, diff, update only on change.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/persistence"
	"github.com/google/uuid"
)

// ErrNameRequired is returned when a document arrives without a name to
// reconcile against.
var ErrNameRequired = errors.New("workflow name is required")

// Reconciler applies incoming workflow documents against the store. It never
// deletes and never produces more than one workflow per name per call.
type Reconciler struct {
	workflows persistence.WorkflowRepository
	logger    *slog.Logger
}

// NewReconciler creates a reconciler over the given workflow repository.
func NewReconciler(workflows persistence.WorkflowRepository, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		workflows: workflows,
		logger:    logger,
	}
}

// FindByName resolves a stored workflow by exact, case-sensitive name. The
// store search is a substring query, so candidates are filtered client-side.
// A search failure is returned as an error, distinct from the (nil, nil)
// not-found result; callers must not fall through to creation on failure.
func (r *Reconciler) FindByName(ctx context.Context, name string) (*models.Workflow, error) {
	candidates, err := r.workflows.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search for workflow %q failed: %w", name, err)
	}

	for _, candidate := range candidates {
		if candidate.Name == name {
			return candidate, nil
		}
	}

	return nil, nil
}

// Sync converges the store to the incoming document. Outcomes: created when
// no stored workflow matches the name, updated when one matches and differs,
// unchanged otherwise. The matched workflow keeps its identity; only nodes,
// connections, settings and pin data are replaced.
//
// The find-then-act sequence is not locked: two concurrent syncs for the same
// new name can both observe "not found". Stores with a uniqueness constraint
// on name (postgresql) surface that race as ErrWorkflowAlreadyExists.
func (r *Reconciler) Sync(ctx context.Context, doc *models.Workflow) (*models.SyncResult, error) {
	if doc == nil || doc.Name == "" {
		return nil, ErrNameRequired
	}

	existing, err := r.FindByName(ctx, doc.Name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return r.create(ctx, doc)
	}

	if !HasChanges(existing, doc) {
		r.logger.DebugContext(ctx, "Workflow unchanged", "workflow_id", existing.ID, "name", existing.Name)

		return &models.SyncResult{Action: models.ActionUnchanged, Workflow: existing}, nil
	}

	return r.update(ctx, existing, doc)
}

func (r *Reconciler) create(ctx context.Context, doc *models.Workflow) (*models.SyncResult, error) {
	now := time.Now().UTC()

	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        doc.Name,
		Active:      doc.Active,
		Nodes:       doc.Nodes,
		Connections: doc.Connections,
		Settings:    doc.Settings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if workflow.Connections == nil {
		workflow.Connections = make(map[string]models.NodeConnections)
	}

	if err := r.workflows.Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow %q: %w", doc.Name, err)
	}

	r.logger.InfoContext(ctx, "Workflow created", "workflow_id", workflow.ID, "name", workflow.Name)

	return &models.SyncResult{Action: models.ActionCreated, Workflow: workflow}, nil
}

func (r *Reconciler) update(ctx context.Context, existing, doc *models.Workflow) (*models.SyncResult, error) {
	existing.Nodes = doc.Nodes
	existing.Connections = doc.Connections
	existing.Settings = doc.Settings

	if doc.PinData != nil {
		existing.PinData = doc.PinData
	}

	existing.UpdatedAt = time.Now().UTC()

	if err := r.workflows.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update workflow %q: %w", existing.Name, err)
	}

	r.logger.InfoContext(ctx, "Workflow updated", "workflow_id", existing.ID, "name", existing.Name)

	return &models.SyncResult{Action: models.ActionUpdated, Workflow: existing}, nil
}
