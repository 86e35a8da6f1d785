package ports

import (
	"context"

	"github.com/infield/user-service/internal/core/domain"
)

// RatingService lets farmers rate the agronomists they work with.
type RatingService interface {
	RateAgronomist(ctx context.Context, rater *domain.User, agronomistID string, score int) error
}
