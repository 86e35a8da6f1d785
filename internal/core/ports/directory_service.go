package ports

import (
	"context"

	"github.com/infield/user-service/internal/core/domain"
)

// DirectoryService is the read-only view over all users.
type DirectoryService interface {
	GetUser(ctx context.Context, id string) (domain.UserView, error)
	SearchUsers(ctx context.Context, name string) ([]domain.UserName, error)
}
