package model

import (
	"fmt"
	"strings"
)

// Priority represents when a script executes relative to other management
// actions on the device.
type Priority string

const (
	// PriorityBefore runs the script before other actions.
	PriorityBefore Priority = "BEFORE"

	// PriorityAfter runs the script after other actions (default).
	PriorityAfter Priority = "AFTER"

	// PriorityAfterReboot runs the script after the next reboot.
	PriorityAfterReboot Priority = "AFTER_REBOOT"
)

// IsValid returns true if the priority is recognized.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityBefore, PriorityAfter, PriorityAfterReboot:
		return true
	default:
		return false
	}
}

// AllPriorities returns all supported script priorities.
func AllPriorities() []Priority {
	return []Priority{PriorityBefore, PriorityAfter, PriorityAfterReboot}
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// Description returns a human-readable description of the priority.
func (p Priority) Description() string {
	switch p {
	case PriorityBefore:
		return "Run before other management actions"
	case PriorityAfter:
		return "Run after other management actions"
	case PriorityAfterReboot:
		return "Run after the next reboot"
	default:
		return "Unknown priority"
	}
}

// ParsePriority converts a string to a Priority.
// Returns PriorityAfter (default) if the string is empty.
// Returns an error if the priority is not recognized.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityAfter, nil
	}

	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	p := Priority(normalized)
	if p.IsValid() {
		return p, nil
	}

	return "", fmt.Errorf("unknown priority %q (valid: BEFORE, AFTER, AFTER_REBOOT)", s)
}
