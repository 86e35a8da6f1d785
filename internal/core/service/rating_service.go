package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/infield/user-service/internal/core/domain"
	"github.com/infield/user-service/internal/core/ports"
)

// RatingService implements ports.RatingService.
type RatingService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewRatingService(repo ports.UserRepository, logger zerolog.Logger) *RatingService {
	return &RatingService{repo: repo, logger: logger}
}

// RateAgronomist folds score into the agronomist's average rating. Only
// farmers can rate, and only agronomists can be rated.
func (s *RatingService) RateAgronomist(ctx context.Context, rater *domain.User, agronomistID string, score int) error {
	if rater.AccountType != domain.AccountFarmer {
		return fmt.Errorf("%w: only farmers can rate agronomists", domain.ErrNotAllowed)
	}
	if score < domain.MinRating || score > domain.MaxRating {
		return fmt.Errorf("%w: score must be between %d and %d", domain.ErrInvalidArgument, domain.MinRating, domain.MaxRating)
	}

	target, err := s.repo.FindByID(ctx, agronomistID)
	if err != nil {
		return fmt.Errorf("rate user: %w", err)
	}
	if !target.IsAgronomist() {
		return fmt.Errorf("%w: user is not an agronomist", domain.ErrInvalidArgument)
	}

	if err := s.repo.AddRating(ctx, target.ID, score); err != nil {
		s.logger.Error().Err(err).Str("user_id", target.ID).Msg("failed to record rating")
		return fmt.Errorf("rate user: %w", err)
	}

	s.logger.Info().
		Str("user_id", target.ID).
		Str("rater_id", rater.ID).
		Int("score", score).
		Msg("agronomist rated")
	return nil
}
