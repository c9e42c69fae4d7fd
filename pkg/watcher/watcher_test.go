package watcher_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/persistence/file"
	"github.com/flowbridge/flowbridge/pkg/reconcile"
	"github.com/flowbridge/flowbridge/pkg/watcher"
)

func setupWatcher(t *testing.T) (*watcher.Watcher, *reconcile.Reconciler, string) {
	t.Helper()

	dir := t.TempDir()
	store := file.NewPersistence(t.TempDir())
	reconciler := reconcile.NewReconciler(store.WorkflowRepository(), slog.Default())

	return watcher.New(dir, reconciler, nil, slog.Default(), 10*time.Millisecond, ""), reconciler, dir
}

func writeDocument(t *testing.T, dir, filename, content string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestSyncFile_CreatesWorkflow(t *testing.T) {
	t.Parallel()

	w, _, dir := setupWatcher(t)
	path := writeDocument(t, dir, "orders.json", workflowJSON("Orders"))

	result, err := w.SyncFile(t.Context(), path)
	require.NoError(t, err)

	assert.Equal(t, models.ActionCreated, result.Action)
	assert.Equal(t, "Orders", result.Workflow.Name)
}

func TestSyncFile_RejectsInvalidDocument(t *testing.T) {
	t.Parallel()

	w, _, dir := setupWatcher(t)
	path := writeDocument(t, dir, "broken.json", `{"nodes": [], "connections": {}}`)

	_, err := w.SyncFile(t.Context(), path)

	assert.ErrorContains(t, err, "invalid workflow file")
}

func TestSyncFile_MissingFile(t *testing.T) {
	t.Parallel()

	w, _, dir := setupWatcher(t)

	_, err := w.SyncFile(t.Context(), filepath.Join(dir, "absent.json"))

	assert.ErrorContains(t, err, "failed to read workflow file")
}

func TestSyncAll_CountsOutcomesAndSkipsBadFiles(t *testing.T) {
	t.Parallel()

	w, reconciler, dir := setupWatcher(t)

	writeDocument(t, dir, "orders.json", workflowJSON("Orders"))
	writeDocument(t, dir, "invoices.json", workflowJSON("Invoices"))
	writeDocument(t, dir, "broken.json", "not json")

	// Pre-sync one document so the pass reports it unchanged.
	_, err := reconciler.Sync(t.Context(), &models.Workflow{
		Name: "Invoices",
		Nodes: []*models.Node{
			{Name: "Start", Type: "n8n-nodes-base.start", TypeVersion: 1, Position: [2]float64{250, 300}},
		},
		Connections: map[string]models.NodeConnections{},
	})
	require.NoError(t, err)

	stats, err := w.SyncAll(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Unchanged)
	assert.Equal(t, 1, stats.Errors)
	assert.False(t, stats.EndTime.Before(stats.StartTime))
}

func TestSyncAll_EmptyDirectory(t *testing.T) {
	t.Parallel()

	w, _, _ := setupWatcher(t)

	stats, err := w.SyncAll(t.Context())
	require.NoError(t, err)

	assert.Zero(t, stats.Total)
}

func TestStart_SyncsOnFileWrite(t *testing.T) {
	t.Parallel()

	w, reconciler, dir := setupWatcher(t)

	require.NoError(t, w.Start(t.Context()))
	defer w.Stop()

	writeDocument(t, dir, "orders.json", workflowJSON("Orders"))

	assert.Eventually(t, func() bool {
		found, err := reconciler.FindByName(t.Context(), "Orders")

		return err == nil && found != nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStart_IgnoresNonJSONFiles(t *testing.T) {
	t.Parallel()

	w, reconciler, dir := setupWatcher(t)

	require.NoError(t, w.Start(t.Context()))
	defer w.Stop()

	writeDocument(t, dir, "notes.txt", workflowJSON("Notes"))

	time.Sleep(200 * time.Millisecond)

	found, err := reconciler.FindByName(t.Context(), "Notes")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestStart_InvalidResyncSchedule(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := file.NewPersistence(t.TempDir())
	reconciler := reconcile.NewReconciler(store.WorkflowRepository(), slog.Default())

	w := watcher.New(dir, reconciler, nil, slog.Default(), 0, "not a schedule")

	err := w.Start(t.Context())

	assert.ErrorContains(t, err, "invalid resync schedule")
}

func TestStart_MissingDirectory(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	reconciler := reconcile.NewReconciler(store.WorkflowRepository(), slog.Default())

	w := watcher.New(filepath.Join(t.TempDir(), "absent"), reconciler, nil, slog.Default(), 0, "")

	err := w.Start(t.Context())

	assert.ErrorContains(t, err, "failed to watch")
}

func workflowJSON(name string) string {
	return `{
	"name": "` + name + `",
	"nodes": [
		{
			"name": "Start",
			"type": "n8n-nodes-base.start",
			"typeVersion": 1,
			"position": [250, 300]
		}
	],
	"connections": {}
}`
}
