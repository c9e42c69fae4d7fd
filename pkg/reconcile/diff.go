package reconcile

import (
	"bytes"
	"encoding/json"

	"github.com/flowbridge/flowbridge/pkg/models"
)

// nodeProjection is the diff identity of a node: the full field tuple, not
// just the name.
type nodeProjection struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion"`
	Position    [2]float64     `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	Credentials map[string]any `json:"credentials"`
	Disabled    bool           `json:"disabled"`
}

func projectNode(node *models.Node) nodeProjection {
	return nodeProjection{
		Name:        node.Name,
		Type:        node.Type,
		TypeVersion: node.TypeVersion,
		Position:    node.Position,
		Parameters:  node.Parameters,
		Credentials: node.Credentials,
		Disabled:    node.Disabled,
	}
}

// HasChanges reports whether incoming differs from existing. The node
// comparison is positional: nodes are compared pairwise in array order, so a
// pure reordering counts as a change. Any serialization failure also counts
// as a change, so a sync is never skipped because the comparison itself broke.
func HasChanges(existing, incoming *models.Workflow) bool {
	if len(existing.Nodes) != len(incoming.Nodes) {
		return true
	}

	for i := range existing.Nodes {
		existingNode, err := json.Marshal(projectNode(existing.Nodes[i]))
		if err != nil {
			return true
		}

		incomingNode, err := json.Marshal(projectNode(incoming.Nodes[i]))
		if err != nil {
			return true
		}

		if !bytes.Equal(existingNode, incomingNode) {
			return true
		}
	}

	existingConnections, err := json.Marshal(existing.Connections)
	if err != nil {
		return true
	}

	incomingConnections, err := json.Marshal(incoming.Connections)
	if err != nil {
		return true
	}

	return !bytes.Equal(existingConnections, incomingConnections)
}
