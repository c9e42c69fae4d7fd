// Package bridge mirrors workflow state between the application and an
// embedding host over a message channel.
package bridge

import "github.com/flowbridge/flowbridge/pkg/models"

// Topics used on the message channel.
const (
	UpdatesTopic = "flowbridge.host.updates" // outbound app -> host
	SyncTopic    = "flowbridge.host.sync"    // inbound host -> app
	RepliesTopic = "flowbridge.host.replies" // outbound sync acknowledgements
)

// MessageType tags envelopes on the channel.
type MessageType string

const (
	MessageTypeWorkflowUpdate MessageType = "workflowUpdate"
	MessageTypeWorkflowSync   MessageType = "workflowSync"
)

// UpdateEnvelope is the outbound message carrying current workflow state to
// the host.
type UpdateEnvelope struct {
	Type            MessageType      `json:"type"`
	Workflow        *models.Workflow `json:"workflow"`
	ShouldSave      bool             `json:"shouldSave"`
	ExecutionData   map[string]any   `json:"executionData,omitempty"`
	ExecutionTiming map[string]any   `json:"executionTiming,omitempty"`
}

// SyncEnvelope is the inbound message carrying a host-authored workflow
// document to reconcile.
type SyncEnvelope struct {
	Type     MessageType      `json:"type"`
	Workflow *models.Workflow `json:"workflow"`
}

// Command tags reply messages answering a sync request.
type Command string

const (
	CommandSyncComplete Command = "workflowSyncComplete"
	CommandError        Command = "error"
)

// Reply acknowledges an inbound sync, successful or not.
type Reply struct {
	Command      Command           `json:"command"`
	WorkflowID   string            `json:"workflowId,omitempty"`
	WorkflowName string            `json:"workflowName,omitempty"`
	Action       models.SyncAction `json:"action,omitempty"`
	Message      string            `json:"message,omitempty"`
	Error        string            `json:"error,omitempty"`
}
