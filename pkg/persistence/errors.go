// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowAlreadyExists indicates a workflow with the same identifier already exists.
	ErrWorkflowAlreadyExists = errors.New("workflow already exists")

	// ErrUserNotFound indicates a user was not found by the given identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrProjectNotFound indicates a project was not found by the given identifier.
	ErrProjectNotFound = errors.New("project not found")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save", "SearchByName")
	WorkflowID string // Workflow ID if applicable
	Query      string // Search query if applicable
	Err        error  // Underlying error
}

func (e *WorkflowError) Error() string {
	target := e.WorkflowID
	if e.Query != "" {
		target = fmt.Sprintf("query %q", e.Query)
	}

	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, target, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// NewSearchError creates a new workflow error for search operations.
func NewSearchError(op, query string, err error) *WorkflowError {
	return &WorkflowError{
		Op:    op,
		Query: query,
		Err:   err,
	}
}

// UserError wraps user-related errors with additional context.
type UserError struct {
	Op    string // Operation being performed
	Email string // User email if applicable
	Err   error  // Underlying error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s operation failed for user %s: %v", e.Op, e.Email, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func (e *UserError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsUserNotFound checks if an error indicates a user was not found.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsProjectNotFound checks if an error indicates a project was not found.
func IsProjectNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound)
}
