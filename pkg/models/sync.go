package models

import "time"

// SyncAction is the action taken by a reconciliation pass for one document.
type SyncAction string

const (
	// ActionCreated indicates no stored workflow matched and one was created.
	ActionCreated SyncAction = "created"

	// ActionUpdated indicates a stored workflow matched and differed.
	ActionUpdated SyncAction = "updated"

	// ActionUnchanged indicates a stored workflow matched and was identical.
	ActionUnchanged SyncAction = "unchanged"
)

// SyncResult is the externally meaningful output of one reconciliation call.
type SyncResult struct {
	Action   SyncAction `json:"action"`
	Workflow *Workflow  `json:"workflow"`
}

// SyncStats aggregates the outcome of a multi-document sync run.
type SyncStats struct {
	Total     int           `json:"total"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Unchanged int           `json:"unchanged"`
	Errors    int           `json:"errors"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// Record folds one result or failure into the running stats.
func (s *SyncStats) Record(result *SyncResult, err error) {
	s.Total++

	if err != nil {
		s.Errors++

		return
	}

	switch result.Action {
	case ActionCreated:
		s.Created++
	case ActionUpdated:
		s.Updated++
	case ActionUnchanged:
		s.Unchanged++
	}
}
