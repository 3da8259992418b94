package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/octostats/octostats/internal/github"
	"github.com/octostats/octostats/internal/models"
)

// SearchService ranks searched users by their commit activity within a date
// window.
type SearchService struct {
	api github.API

	now func() time.Time
}

func NewSearchService(api github.API) *SearchService {
	return &SearchService{
		api: api,
		now: time.Now,
	}
}

// SearchParams are the criteria of a ranked user search. Language, Type and
// Pages are required; Since defaults to January 1 of the current year.
type SearchParams struct {
	Language string
	Type     string
	Location string
	Sort     string
	Since    string
	Pages    int
}

// SearchAndRank searches users by criteria, enriches every hit with its
// commit count since the date window and its profile email, and returns the
// list ordered by commit count descending. Enrichment is fail-fast: one
// failing lookup aborts the whole ranking.
func (s *SearchService) SearchAndRank(ctx context.Context, cred models.Credential, params SearchParams) ([]models.RankedUser, error) {
	if params.Language == "" {
		return nil, validationErrorf("language was not provided")
	}
	if params.Type == "" {
		return nil, validationErrorf("type was not provided")
	}
	if params.Pages < 1 {
		return nil, validationErrorf("pages must be at least 1")
	}

	since := params.Since
	if since == "" {
		since = fmt.Sprintf("%d-01-01", s.now().Year())
	} else if err := validateDate(since); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("language:%s type:%s", params.Language, params.Type)
	if params.Location != "" {
		query += " location:" + params.Location
	}

	logins, err := s.api.SearchUsers(ctx, cred, query, params.Sort, params.Pages)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	ranked := make([]models.RankedUser, 0, len(logins))
	for _, login := range logins {
		commits, err := s.api.CountCommitsSince(ctx, cred, login, since)
		if err != nil {
			return nil, fmt.Errorf("failed to count commits for %s: %w", login, err)
		}

		profile, err := s.api.GetUser(ctx, cred, login)
		if err != nil {
			return nil, fmt.Errorf("failed to get profile for %s: %w", login, err)
		}

		ranked = append(ranked, models.RankedUser{
			Login: login,
			Email: profile.Email,
			Commits: models.RankedUserCommit{
				TotalCommitsSinceDate: commits,
			},
		})
	}

	// Descending by commit count, login breaks ties so the order is
	// deterministic.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Commits.TotalCommitsSinceDate != ranked[j].Commits.TotalCommitsSinceDate {
			return ranked[i].Commits.TotalCommitsSinceDate > ranked[j].Commits.TotalCommitsSinceDate
		}
		return ranked[i].Login < ranked[j].Login
	})

	return ranked, nil
}
