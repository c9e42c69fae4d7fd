package models

// Node represents a node instance in a workflow document. Two nodes are the
// same for diffing purposes only when every projected field matches, not just
// the name.
type Node struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"        validate:"required,min=1"`
	Type        string         `json:"type"        validate:"required"`
	TypeVersion float64        `json:"typeVersion"`
	Position    [2]float64     `json:"position"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Credentials map[string]any `json:"credentials,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
}
