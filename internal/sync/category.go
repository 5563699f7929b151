package sync

import (
	"context"
	"log/slog"

	"scriptsync/internal/logging"
	"scriptsync/internal/model"
)

// CategoryLister is the slice of the transport the resolver consumes.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// CategoryResolver maps a category name to the server's numeric id.
//
// Resolution runs immediately before any create or update call: category
// membership can change between the time metadata was saved and the push,
// so a persisted category id is never trusted, only the persisted name.
type CategoryResolver struct {
	lister CategoryLister
}

// NewCategoryResolver creates a resolver over the given lister.
func NewCategoryResolver(lister CategoryLister) *CategoryResolver {
	return &CategoryResolver{lister: lister}
}

// Resolve returns the id for a category name. "NONE" resolves to the -1
// sentinel without a remote lookup. Zero matches or more than one match
// fail; the resolver never silently picks one.
func (r *CategoryResolver) Resolve(ctx context.Context, name string) (int, error) {
	if name == model.NoCategoryName {
		return model.NoCategoryID, nil
	}

	categories, err := r.lister.ListCategories(ctx)
	if err != nil {
		return 0, err
	}

	var matches []model.Category
	for _, c := range categories {
		if c.Name == name {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return 0, &CategoryNotFoundError{Name: name}
	case 1:
		logging.Debug("resolved category",
			logging.Category(name),
			slog.Int("category_id", matches[0].ID),
		)
		return matches[0].ID, nil
	default:
		return 0, &AmbiguousCategoryError{Name: name, Matches: matches}
	}
}
