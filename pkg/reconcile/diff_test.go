package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowbridge/flowbridge/pkg/models"
)

func node(name string) *models.Node {
	return &models.Node{
		Name:        name,
		Type:        "n8n-nodes-base.set",
		TypeVersion: 2,
		Position:    [2]float64{100, 200},
		Parameters: map[string]any{
			"values": map[string]any{"key": "value"},
		},
	}
}

func workflowWith(nodes ...*models.Node) *models.Workflow {
	return &models.Workflow{
		Name:        "Test Workflow",
		Nodes:       nodes,
		Connections: map[string]models.NodeConnections{},
	}
}

func TestHasChanges_IdenticalWorkflows(t *testing.T) {
	t.Parallel()

	existing := workflowWith(node("a"), node("b"))
	incoming := workflowWith(node("a"), node("b"))

	assert.False(t, HasChanges(existing, incoming))
}

func TestHasChanges_DifferentNodeCounts(t *testing.T) {
	t.Parallel()

	existing := workflowWith(node("a"), node("b"))
	incoming := workflowWith(node("a"), node("b"), node("c"))

	assert.True(t, HasChanges(existing, incoming))
}

// Reordered but set-equal nodes are reported as changed: the comparison is
// positional by design.
func TestHasChanges_ReorderedNodes(t *testing.T) {
	t.Parallel()

	existing := workflowWith(node("a"), node("b"))
	incoming := workflowWith(node("b"), node("a"))

	assert.True(t, HasChanges(existing, incoming))
}

func TestHasChanges_ProjectedFieldDiffers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*models.Node)
	}{
		{"type", func(n *models.Node) { n.Type = "n8n-nodes-base.noOp" }},
		{"typeVersion", func(n *models.Node) { n.TypeVersion = 3 }},
		{"position", func(n *models.Node) { n.Position = [2]float64{0, 0} }},
		{"parameters", func(n *models.Node) { n.Parameters = map[string]any{"other": true} }},
		{"credentials", func(n *models.Node) { n.Credentials = map[string]any{"api": "cred-1"} }},
		{"disabled", func(n *models.Node) { n.Disabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			existing := workflowWith(node("a"))
			incoming := workflowWith(node("a"))
			tt.mutate(incoming.Nodes[0])

			assert.True(t, HasChanges(existing, incoming))
		})
	}
}

// The node ID is not part of the diff identity; documents authored outside
// the store usually carry none.
func TestHasChanges_IgnoresNodeID(t *testing.T) {
	t.Parallel()

	existing := workflowWith(node("a"))
	existing.Nodes[0].ID = "stored-id"

	incoming := workflowWith(node("a"))

	assert.False(t, HasChanges(existing, incoming))
}

func TestHasChanges_ConnectionsDiffer(t *testing.T) {
	t.Parallel()

	existing := workflowWith(node("a"), node("b"))
	existing.Connections = map[string]models.NodeConnections{
		"a": {Main: [][]models.ConnectionTarget{{{Node: "b", Type: "main", Index: 0}}}},
	}

	incoming := workflowWith(node("a"), node("b"))
	incoming.Connections = map[string]models.NodeConnections{
		"a": {Main: [][]models.ConnectionTarget{{{Node: "b", Type: "main", Index: 1}}}},
	}

	assert.True(t, HasChanges(existing, incoming))
}

func TestHasChanges_EqualConnections(t *testing.T) {
	t.Parallel()

	connections := func() map[string]models.NodeConnections {
		return map[string]models.NodeConnections{
			"a": {Main: [][]models.ConnectionTarget{{{Node: "b", Type: "main", Index: 0}}}},
		}
	}

	existing := workflowWith(node("a"), node("b"))
	existing.Connections = connections()

	incoming := workflowWith(node("a"), node("b"))
	incoming.Connections = connections()

	assert.False(t, HasChanges(existing, incoming))
}

// Unserializable node parameters must fail open to "changed" so a sync is
// never silently skipped.
func TestHasChanges_FailsOpenOnSerializationError(t *testing.T) {
	t.Parallel()

	existing := workflowWith(node("a"))
	incoming := workflowWith(node("a"))
	incoming.Nodes[0].Parameters = map[string]any{"bad": func() {}}

	assert.True(t, HasChanges(existing, incoming))
}
