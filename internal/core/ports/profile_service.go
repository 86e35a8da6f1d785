package ports

import (
	"context"

	"github.com/infield/user-service/internal/core/domain"
)

// ProfileService holds the operations a user performs on their own account.
// Every method receives the user resolved by authentication.
type ProfileService interface {
	GetSelf(current *domain.User) domain.UserView
	EditSelf(ctx context.Context, current *domain.User, edits map[string]any) (domain.UserView, error)
	AddSkills(ctx context.Context, current *domain.User, specialties, regions []string) (domain.UserView, error)
	RemoveSpecialty(ctx context.Context, current *domain.User, specialty string) (domain.UserView, error)
	RemoveRegion(ctx context.Context, current *domain.User, region string) (domain.UserView, error)
	DeleteSelf(ctx context.Context, current *domain.User) error
	AvailableSpecialties(current *domain.User) ([]string, error)
	AvailableRegions(current *domain.User) ([]string, error)
	RequestPhoneVerification(ctx context.Context, current *domain.User) error
	ConfirmPhone(ctx context.Context, current *domain.User, code string) (domain.UserView, error)
}
