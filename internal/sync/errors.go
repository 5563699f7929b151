package sync

import (
	"fmt"
	"strings"

	"scriptsync/internal/model"
)

// UsageError reports conflicting or invalid selection options. It is raised
// before any remote call is made.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// CategoryNotFoundError reports that no remote category matched the
// requested name. It is surfaced to the caller and never retried.
type CategoryNotFoundError struct {
	Name string
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category %q not found", e.Name)
}

// AmbiguousCategoryError reports duplicate remote categories for one name.
// The duplicate set is carried so the operator can disambiguate out of
// band; the engine never guesses.
type AmbiguousCategoryError struct {
	Name    string
	Matches []model.Category
}

func (e *AmbiguousCategoryError) Error() string {
	ids := make([]string, len(e.Matches))
	for i, c := range e.Matches {
		ids[i] = fmt.Sprintf("%d", c.ID)
	}
	return fmt.Sprintf("multiple categories named %q (ids %s)", e.Name, strings.Join(ids, ", "))
}
