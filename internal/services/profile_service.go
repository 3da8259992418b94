package services

import (
	"context"
	"fmt"

	"github.com/octostats/octostats/internal/github"
	"github.com/octostats/octostats/internal/models"
)

// ProfileService covers the per-user operations that are not aggregations:
// follow, unfollow, profile lookup.
type ProfileService struct {
	api github.API
}

func NewProfileService(api github.API) *ProfileService {
	return &ProfileService{
		api: api,
	}
}

// Follow follows the given user on behalf of the authenticated one.
func (s *ProfileService) Follow(ctx context.Context, cred models.Credential, login string) error {
	if login == "" {
		return validationErrorf("username to follow was not provided")
	}
	if err := s.api.FollowUser(ctx, cred, login); err != nil {
		return fmt.Errorf("failed to follow %s: %w", login, err)
	}
	return nil
}

// Unfollow unfollows the given user on behalf of the authenticated one.
func (s *ProfileService) Unfollow(ctx context.Context, cred models.Credential, login string) error {
	if login == "" {
		return validationErrorf("username to unfollow was not provided")
	}
	if err := s.api.UnfollowUser(ctx, cred, login); err != nil {
		return fmt.Errorf("failed to unfollow %s: %w", login, err)
	}
	return nil
}

// Get fetches a user's profile.
func (s *ProfileService) Get(ctx context.Context, cred models.Credential, login string) (*models.UserProfile, error) {
	if login == "" {
		return nil, validationErrorf("username was not provided")
	}
	profile, err := s.api.GetUser(ctx, cred, login)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", login, err)
	}
	return profile, nil
}
