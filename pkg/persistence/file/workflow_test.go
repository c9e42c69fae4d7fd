package file_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/persistence"
	"github.com/flowbridge/flowbridge/pkg/persistence/file"
)

func setupRepo(t *testing.T) persistence.WorkflowRepository {
	t.Helper()

	return file.NewPersistence(t.TempDir()).WorkflowRepository()
}

func storedWorkflow(name string) *models.Workflow {
	return &models.Workflow{
		ID:   uuid.New().String(),
		Name: name,
		Nodes: []*models.Node{
			{Name: "Start", Type: "n8n-nodes-base.start", TypeVersion: 1},
		},
		Connections: map[string]models.NodeConnections{},
	}
}

func TestWorkflowRepository_SaveAndGetByID(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	workflow := storedWorkflow("My Workflow")

	require.NoError(t, repo.Save(t.Context(), workflow))

	loaded, err := repo.GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, workflow.ID, loaded.ID)
	assert.Equal(t, workflow.Name, loaded.Name)
	assert.Len(t, loaded.Nodes, 1)
}

func TestWorkflowRepository_GetByIDMissingIsNilNil(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)

	loaded, err := repo.GetByID(t.Context(), "missing")

	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestWorkflowRepository_SaveRequiresID(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)

	err := repo.Save(t.Context(), &models.Workflow{Name: "No ID"})

	assert.Error(t, err)
}

func TestWorkflowRepository_ListEmptyDirectory(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)

	workflows, err := repo.List(t.Context())

	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestWorkflowRepository_List(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)

	require.NoError(t, repo.Save(t.Context(), storedWorkflow("First")))
	require.NoError(t, repo.Save(t.Context(), storedWorkflow("Second")))

	workflows, err := repo.List(t.Context())

	require.NoError(t, err)
	assert.Len(t, workflows, 2)
}

func TestWorkflowRepository_SearchByNameSubstringCaseInsensitive(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)

	require.NoError(t, repo.Save(t.Context(), storedWorkflow("Orders Daily")))
	require.NoError(t, repo.Save(t.Context(), storedWorkflow("Invoices")))

	matches, err := repo.SearchByName(t.Context(), "orders")
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "Orders Daily", matches[0].Name)
}

func TestWorkflowRepository_SearchByNameNoMatches(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)

	require.NoError(t, repo.Save(t.Context(), storedWorkflow("Orders")))

	matches, err := repo.SearchByName(t.Context(), "payments")

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestWorkflowRepository_Delete(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	workflow := storedWorkflow("Doomed")

	require.NoError(t, repo.Save(t.Context(), workflow))
	require.NoError(t, repo.Delete(t.Context(), workflow.ID))

	loaded, err := repo.GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestWorkflowRepository_DeleteMissing(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)

	err := repo.Delete(t.Context(), "missing")

	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}
