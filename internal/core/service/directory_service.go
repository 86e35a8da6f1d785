package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/infield/user-service/internal/core/domain"
	"github.com/infield/user-service/internal/core/ports"
)

// DirectoryService implements read-only lookups over all users.
type DirectoryService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewDirectoryService(repo ports.UserRepository, logger zerolog.Logger) *DirectoryService {
	return &DirectoryService{repo: repo, logger: logger}
}

// GetUser returns the client view of the user with the given id.
func (s *DirectoryService) GetUser(ctx context.Context, id string) (domain.UserView, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("get user: %w", err)
	}
	return user.ClientView(), nil
}

// SearchUsers matches the first word of name against first names and, when
// there is more than one word, the last word against last names.
func (s *DirectoryService) SearchUsers(ctx context.Context, name string) ([]domain.UserName, error) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no search string provided", domain.ErrNoData)
	}

	filter := ports.UserSearch{FirstName: tokens[0]}
	if len(tokens) > 1 {
		filter.LastName = tokens[len(tokens)-1]
	}

	users, err := s.repo.Search(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Str("query", name).Msg("user search failed")
		return nil, fmt.Errorf("search users: %w", err)
	}

	s.logger.Debug().Str("query", name).Int("results", len(users)).Msg("user search")
	return users, nil
}
