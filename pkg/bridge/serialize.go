package bridge

import (
	"encoding/json"

	"github.com/flowbridge/flowbridge/pkg/models"
)

// Serialize deep-copies doc through its JSON form so the result carries only
// transferable values. Degradation is tiered: the full document first, the
// document minus pin data if pin data alone fails to serialize, and finally a
// minimal skeleton. It never fails; the caller always gets some transferable
// document.
func Serialize(doc *models.Workflow) *models.Workflow {
	if doc == nil {
		return Skeleton("")
	}

	if clone, err := roundTrip(doc); err == nil {
		return clone
	}

	stripped := *doc
	stripped.PinData = nil

	if clone, err := roundTrip(&stripped); err == nil {
		return clone
	}

	return Skeleton(doc.Name)
}

// Skeleton returns the minimal transferable form of a workflow document.
func Skeleton(name string) *models.Workflow {
	return &models.Workflow{
		Name:        name,
		Nodes:       []*models.Node{},
		Connections: map[string]models.NodeConnections{},
	}
}

func roundTrip(doc *models.Workflow) (*models.Workflow, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var clone models.Workflow
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}

	return &clone, nil
}
