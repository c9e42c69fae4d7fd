package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/persistence"
	"github.com/lib/pq"
)

// WorkflowRepository handles workflow persistence in PostgreSQL.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `id, name, active, nodes, connections, settings, pin_data, created_at, updated_at`

func scanWorkflow(row interface{ Scan(...any) error }) (*models.Workflow, error) {
	var (
		workflow        models.Workflow
		nodesData       []byte
		connectionsData []byte
		settingsData    []byte
		pinData         []byte
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Active,
		&nodesData,
		&connectionsData,
		&settingsData,
		&pinData,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(nodesData, &workflow.Nodes); err != nil {
		return nil, persistence.NewWorkflowError("scan", workflow.ID, err)
	}

	if err := json.Unmarshal(connectionsData, &workflow.Connections); err != nil {
		return nil, persistence.NewWorkflowError("scan", workflow.ID, err)
	}

	if settingsData != nil {
		if err := json.Unmarshal(settingsData, &workflow.Settings); err != nil {
			return nil, persistence.NewWorkflowError("scan", workflow.ID, err)
		}
	}

	if pinData != nil {
		if err := json.Unmarshal(pinData, &workflow.PinData); err != nil {
			return nil, persistence.NewWorkflowError("scan", workflow.ID, err)
		}
	}

	return &workflow, nil
}

// List returns all stored workflows ordered by creation time.
func (wr *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := wr.db.QueryContext(ctx, `SELECT `+workflowColumns+` FROM workflows ORDER BY created_at`)
	if err != nil {
		return nil, persistence.NewWorkflowError("List", "", err)
	}
	defer rows.Close()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewWorkflowError("List", "", err)
	}

	return workflows, nil
}

// GetByID returns the workflow with the given ID, or nil when none exists.
func (wr *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := wr.db.QueryRowContext(ctx, `SELECT `+workflowColumns+` FROM workflows WHERE id = $1`, id)

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return workflow, nil
}

// SearchByName returns workflows whose name contains the query as a
// case-insensitive substring.
func (wr *WorkflowRepository) SearchByName(ctx context.Context, query string) ([]*models.Workflow, error) {
	rows, err := wr.db.QueryContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE name ILIKE '%' || $1 || '%' ORDER BY created_at`,
		query,
	)
	if err != nil {
		return nil, persistence.NewSearchError("SearchByName", query, err)
	}
	defer rows.Close()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewSearchError("SearchByName", query, err)
	}

	return workflows, nil
}

// Save upserts the workflow by ID. The unique index on name surfaces
// concurrent create races as ErrWorkflowAlreadyExists instead of duplicates.
func (wr *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		return persistence.NewWorkflowError("Save", "", errors.New("workflow ID is required"))
	}

	nodesData, err := json.Marshal(workflow.Nodes)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	connectionsData, err := json.Marshal(workflow.Connections)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	var settingsData, pinData []byte

	if workflow.Settings != nil {
		settingsData, err = json.Marshal(workflow.Settings)
		if err != nil {
			return persistence.NewWorkflowError("Save", workflow.ID, err)
		}
	}

	if workflow.PinData != nil {
		pinData, err = json.Marshal(workflow.PinData)
		if err != nil {
			return persistence.NewWorkflowError("Save", workflow.ID, err)
		}
	}

	_, err = wr.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, active, nodes, connections, settings, pin_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			active = EXCLUDED.active,
			nodes = EXCLUDED.nodes,
			connections = EXCLUDED.connections,
			settings = EXCLUDED.settings,
			pin_data = EXCLUDED.pin_data,
			updated_at = EXCLUDED.updated_at
	`,
		workflow.ID,
		workflow.Name,
		workflow.Active,
		nodesData,
		connectionsData,
		settingsData,
		pinData,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return persistence.NewWorkflowError("Save", workflow.ID, persistence.ErrWorkflowAlreadyExists)
		}

		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// Delete removes the workflow row.
func (wr *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := wr.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}
