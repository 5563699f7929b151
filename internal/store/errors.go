package store

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports that no local record matched a lookup. It is
// recoverable at the per-item granularity: callers log it and skip the item.
type NotFoundError struct {
	// Kind is what was looked up ("script", "metadata").
	Kind string
	// Key is the id or path that failed to match.
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// AmbiguityError reports that a lookup matched more than one record. This is
// a data corruption signal: it carries the full duplicate set so the
// operator can fix the store out of band, and is never auto-resolved.
type AmbiguityError struct {
	// Kind is what was looked up ("script id").
	Kind string
	// Key is the value that matched more than once.
	Key string
	// Matches lists the conflicting records (metadata paths).
	Matches []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("multiple records for %s %s: %s", e.Kind, e.Key, strings.Join(e.Matches, ", "))
}

// Rename stages, in the fixed order they are attempted.
const (
	RenameStageScript   = "script"
	RenameStageMetadata = "metadata"
)

// RenameError reports a failed file rename during conflict resolution. The
// stage distinguishes a failure of the first rename (nothing moved) from a
// failure of the second (script file already renamed, metadata file not),
// so an operator can manually reconcile a half-renamed pair.
type RenameError struct {
	Stage string
	From  string
	To    string
	Err   error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %s file %s -> %s: %v", e.Stage, e.From, e.To, e.Err)
}

func (e *RenameError) Unwrap() error {
	return e.Err
}
