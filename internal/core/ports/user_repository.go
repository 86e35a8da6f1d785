package ports

import (
	"context"

	"github.com/infield/user-service/internal/core/domain"
)

// UserSearch carries the name filters for a directory search. LastName is
// empty when the query had a single token.
type UserSearch struct {
	FirstName string
	LastName  string
}

// UserRepository defines persistence operations for user documents.
type UserRepository interface {
	// FindByID returns domain.ErrNotFound when no user has the given id.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Search matches names case-insensitively as literal substrings and returns
	// only id, firstName and lastName, in store order.
	Search(ctx context.Context, filter UserSearch) ([]domain.UserName, error)
	// Save persists the whole document, inserting it when it does not exist yet.
	Save(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	// AddRating folds score into the agronomist's average rating in a single
	// atomic update. It returns domain.ErrNotFound when no agronomist has id.
	AddRating(ctx context.Context, id string, score int) error
}
