package bridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbridge/flowbridge/pkg/bridge"
	"github.com/flowbridge/flowbridge/pkg/models"
)

func sampleWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:   "wf-1",
		Name: "Sample",
		Nodes: []*models.Node{
			{
				Name:        "Start",
				Type:        "n8n-nodes-base.start",
				TypeVersion: 1,
				Position:    [2]float64{250, 300},
			},
		},
		Connections: map[string]models.NodeConnections{},
		PinData:     map[string]any{"Start": []any{map[string]any{"json": map[string]any{}}}},
	}
}

func TestSerialize_FullDocument(t *testing.T) {
	t.Parallel()

	doc := sampleWorkflow()
	result := bridge.Serialize(doc)

	require.NotNil(t, result)
	assert.NotSame(t, doc, result)
	assert.Equal(t, doc.ID, result.ID)
	assert.Equal(t, doc.Name, result.Name)
	assert.Len(t, result.Nodes, 1)
	assert.NotNil(t, result.PinData)
}

func TestSerialize_DropsUnserializablePinData(t *testing.T) {
	t.Parallel()

	doc := sampleWorkflow()
	doc.PinData = map[string]any{"Start": func() {}}

	result := bridge.Serialize(doc)

	require.NotNil(t, result)
	assert.Equal(t, doc.Name, result.Name)
	assert.Len(t, result.Nodes, 1)
	assert.Nil(t, result.PinData)
}

func TestSerialize_SkeletonWhenNothingSerializes(t *testing.T) {
	t.Parallel()

	doc := sampleWorkflow()
	doc.PinData = map[string]any{"Start": func() {}}
	doc.Settings = map[string]any{"callback": func() {}}

	result := bridge.Serialize(doc)

	require.NotNil(t, result)
	assert.Equal(t, doc.Name, result.Name)
	assert.Empty(t, result.Nodes)
	assert.Empty(t, result.Connections)
	assert.Nil(t, result.PinData)
	assert.Nil(t, result.Settings)
}

func TestSerialize_NilDocument(t *testing.T) {
	t.Parallel()

	result := bridge.Serialize(nil)

	require.NotNil(t, result)
	assert.Empty(t, result.Name)
	assert.Empty(t, result.Nodes)
	assert.Empty(t, result.Connections)
}

// Serialization must not alias the source document; mutating the result must
// leave the original untouched.
func TestSerialize_DeepCopy(t *testing.T) {
	t.Parallel()

	doc := sampleWorkflow()
	result := bridge.Serialize(doc)

	result.Nodes[0].Name = "Renamed"

	assert.Equal(t, "Start", doc.Nodes[0].Name)
}
