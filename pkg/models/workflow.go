// Package models defines the core domain models for workflow synchronization.
package models

import "time"

// Workflow is the persisted form of an externally authored workflow document:
// a named graph of typed nodes and directed connections.
type Workflow struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"        validate:"required,min=1"`
	Active      bool                       `json:"active"`
	Nodes       []*Node                    `json:"nodes"`
	Connections map[string]NodeConnections `json:"connections"`
	Settings    map[string]any             `json:"settings,omitempty"`
	PinData     map[string]any             `json:"pinData,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// NodeConnections groups the outgoing connections of a single source node.
// The outer slice is indexed by output port, the inner slice lists the
// targets wired to that port.
type NodeConnections struct {
	Main [][]ConnectionTarget `json:"main"`
}

// ConnectionTarget identifies one input port on a destination node.
type ConnectionTarget struct {
	Node  string `json:"node"  validate:"required"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}
