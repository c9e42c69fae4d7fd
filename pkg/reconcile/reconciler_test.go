package reconcile_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/persistence/file"
	"github.com/flowbridge/flowbridge/pkg/reconcile"
)

func setupReconciler(t *testing.T) *reconcile.Reconciler {
	t.Helper()

	store := file.NewPersistence(t.TempDir())

	return reconcile.NewReconciler(store.WorkflowRepository(), slog.Default())
}

func document(name string) *models.Workflow {
	return &models.Workflow{
		Name: name,
		Nodes: []*models.Node{
			{
				Name:        "Start",
				Type:        "n8n-nodes-base.start",
				TypeVersion: 1,
				Position:    [2]float64{250, 300},
			},
		},
		Connections: map[string]models.NodeConnections{},
	}
}

func TestSync_CreatesWhenNameUnknown(t *testing.T) {
	t.Parallel()

	reconciler := setupReconciler(t)

	result, err := reconciler.Sync(t.Context(), document("My Workflow"))
	require.NoError(t, err)

	assert.Equal(t, models.ActionCreated, result.Action)
	assert.NotEmpty(t, result.Workflow.ID)
	assert.Equal(t, "My Workflow", result.Workflow.Name)
	assert.False(t, result.Workflow.CreatedAt.IsZero())
}

func TestSync_UnchangedOnIdenticalResync(t *testing.T) {
	t.Parallel()

	reconciler := setupReconciler(t)

	created, err := reconciler.Sync(t.Context(), document("My Workflow"))
	require.NoError(t, err)
	require.Equal(t, models.ActionCreated, created.Action)

	resynced, err := reconciler.Sync(t.Context(), document("My Workflow"))
	require.NoError(t, err)

	assert.Equal(t, models.ActionUnchanged, resynced.Action)
	assert.Equal(t, created.Workflow.ID, resynced.Workflow.ID)
}

func TestSync_UpdatesPreservingIdentity(t *testing.T) {
	t.Parallel()

	reconciler := setupReconciler(t)

	created, err := reconciler.Sync(t.Context(), document("My Workflow"))
	require.NoError(t, err)

	changed := document("My Workflow")
	changed.Nodes[0].Parameters = map[string]any{"mode": "manual"}

	result, err := reconciler.Sync(t.Context(), changed)
	require.NoError(t, err)

	assert.Equal(t, models.ActionUpdated, result.Action)
	assert.Equal(t, created.Workflow.ID, result.Workflow.ID)
	assert.Equal(t, created.Workflow.CreatedAt, result.Workflow.CreatedAt)
	assert.Equal(t, map[string]any{"mode": "manual"}, result.Workflow.Nodes[0].Parameters)
}

func TestSync_RequiresName(t *testing.T) {
	t.Parallel()

	reconciler := setupReconciler(t)

	_, err := reconciler.Sync(t.Context(), &models.Workflow{})
	assert.ErrorIs(t, err, reconcile.ErrNameRequired)

	_, err = reconciler.Sync(t.Context(), nil)
	assert.ErrorIs(t, err, reconcile.ErrNameRequired)
}

// Pin data is an editor artifact: creation never stores it, and an update
// replaces it only when the incoming document carries some.
func TestSync_PinDataHandling(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	reconciler := reconcile.NewReconciler(store.WorkflowRepository(), slog.Default())

	withPin := document("My Workflow")
	withPin.PinData = map[string]any{"Start": []any{map[string]any{"json": map[string]any{}}}}

	created, err := reconciler.Sync(t.Context(), withPin)
	require.NoError(t, err)
	assert.Nil(t, created.Workflow.PinData)

	// Seed stored pin data behind the reconciler's back.
	created.Workflow.PinData = map[string]any{"Start": []any{}}
	require.NoError(t, store.WorkflowRepository().Save(t.Context(), created.Workflow))

	changed := document("My Workflow")
	changed.Nodes[0].Disabled = true

	result, err := reconciler.Sync(t.Context(), changed)
	require.NoError(t, err)

	assert.Equal(t, models.ActionUpdated, result.Action)
	assert.NotNil(t, result.Workflow.PinData)

	// Pin data rides along only when the document differs elsewhere too.
	replaced := document("My Workflow")
	replaced.Nodes[0].Disabled = true
	replaced.Nodes[0].Parameters = map[string]any{"mode": "manual"}
	replaced.PinData = map[string]any{"Other": []any{}}

	result, err = reconciler.Sync(t.Context(), replaced)
	require.NoError(t, err)

	assert.Contains(t, result.Workflow.PinData, "Other")
}

func TestFindByName_ExactMatchAmongSubstringCandidates(t *testing.T) {
	t.Parallel()

	reconciler := setupReconciler(t)

	_, err := reconciler.Sync(t.Context(), document("Orders"))
	require.NoError(t, err)

	created, err := reconciler.Sync(t.Context(), document("Orders Daily"))
	require.NoError(t, err)

	found, err := reconciler.FindByName(t.Context(), "Orders Daily")
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, created.Workflow.ID, found.ID)
	assert.Equal(t, "Orders Daily", found.Name)
}

func TestFindByName_CaseSensitive(t *testing.T) {
	t.Parallel()

	reconciler := setupReconciler(t)

	_, err := reconciler.Sync(t.Context(), document("Orders"))
	require.NoError(t, err)

	found, err := reconciler.FindByName(t.Context(), "orders")
	require.NoError(t, err)

	assert.Nil(t, found)
}

func TestFindByName_NotFoundIsNilNil(t *testing.T) {
	t.Parallel()

	reconciler := setupReconciler(t)

	found, err := reconciler.FindByName(t.Context(), "missing")

	require.NoError(t, err)
	assert.Nil(t, found)
}

type failingWorkflowRepository struct {
	err error
}

func (f *failingWorkflowRepository) List(context.Context) ([]*models.Workflow, error) {
	return nil, f.err
}

func (f *failingWorkflowRepository) GetByID(context.Context, string) (*models.Workflow, error) {
	return nil, f.err
}

func (f *failingWorkflowRepository) SearchByName(context.Context, string) ([]*models.Workflow, error) {
	return nil, f.err
}

func (f *failingWorkflowRepository) Save(context.Context, *models.Workflow) error {
	return f.err
}

func (f *failingWorkflowRepository) Delete(context.Context, string) error {
	return f.err
}

// A search failure must abort the sync; falling through to creation would
// duplicate the workflow once the store recovers.
func TestSync_SearchFailureAborts(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("store unavailable")
	reconciler := reconcile.NewReconciler(&failingWorkflowRepository{err: storeErr}, slog.Default())

	result, err := reconciler.Sync(t.Context(), document("My Workflow"))

	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, result)
}
