package sync

import (
	"fmt"
	"strings"
)

// Action represents the outcome for a single script.
type Action string

const (
	// ActionCreated indicates a new record was created.
	ActionCreated Action = "created"

	// ActionUpdated indicates an existing record was updated.
	ActionUpdated Action = "updated"

	// ActionSkipped indicates the item was skipped (missing files, declined
	// overwrite, or no local match).
	ActionSkipped Action = "skipped"

	// ActionDeleted indicates a remote record was deleted.
	ActionDeleted Action = "deleted"

	// ActionFailed indicates an error occurred processing the item.
	ActionFailed Action = "failed"
)

// ItemResult records the outcome of processing one script.
type ItemResult struct {
	// Name is the script name (local name when known, else remote).
	Name string

	// ID is the server-assigned id, 0 when not registered.
	ID int

	// Action is the outcome.
	Action Action

	// Message provides additional context about the action.
	Message string

	// Error holds the failure when Action is ActionFailed.
	Error error
}

// Success returns true unless the item failed.
func (ir ItemResult) Success() bool {
	return ir.Action != ActionFailed
}

// Result contains the per-item outcome log of one workflow run.
type Result struct {
	// Operation names the workflow ("pull", "push", "delete").
	Operation string

	// Items holds one entry per processed script, in processing order.
	Items []ItemResult
}

// Add appends an item outcome.
func (r *Result) Add(item ItemResult) {
	r.Items = append(r.Items, item)
}

// Created returns items that were created.
func (r *Result) Created() []ItemResult {
	return r.filterByAction(ActionCreated)
}

// Updated returns items that were updated.
func (r *Result) Updated() []ItemResult {
	return r.filterByAction(ActionUpdated)
}

// Skipped returns items that were skipped.
func (r *Result) Skipped() []ItemResult {
	return r.filterByAction(ActionSkipped)
}

// Deleted returns items that were deleted.
func (r *Result) Deleted() []ItemResult {
	return r.filterByAction(ActionDeleted)
}

// Failed returns items that failed.
func (r *Result) Failed() []ItemResult {
	return r.filterByAction(ActionFailed)
}

// filterByAction returns items with the given action.
func (r *Result) filterByAction(action Action) []ItemResult {
	var filtered []ItemResult
	for _, item := range r.Items {
		if item.Action == action {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Success returns true if no item failed.
func (r *Result) Success() bool {
	return len(r.Failed()) == 0
}

// TotalProcessed returns the number of items processed.
func (r *Result) TotalProcessed() int {
	return len(r.Items)
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s complete: %d item(s)\n", r.Operation, len(r.Items)))
	sb.WriteString(fmt.Sprintf("  Created: %d\n", len(r.Created())))
	sb.WriteString(fmt.Sprintf("  Updated: %d\n", len(r.Updated())))
	sb.WriteString(fmt.Sprintf("  Deleted: %d\n", len(r.Deleted())))
	sb.WriteString(fmt.Sprintf("  Skipped: %d\n", len(r.Skipped())))
	sb.WriteString(fmt.Sprintf("  Failed:  %d\n", len(r.Failed())))

	if !r.Success() {
		sb.WriteString("\nErrors:\n")
		for _, f := range r.Failed() {
			sb.WriteString(fmt.Sprintf("  - %s: %v\n", f.Name, f.Error))
		}
	}

	return sb.String()
}
