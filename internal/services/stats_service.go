package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/octostats/octostats/internal/github"
	"github.com/octostats/octostats/internal/models"
	"github.com/octostats/octostats/pkg/logger"
)

// StatsService reduces the authenticated user's upstream data into derived
// statistics. All entities live only for the duration of one call; nothing
// is cached across requests.
type StatsService struct {
	api github.API

	// now is the reference clock for year bucketing, overridable in
	// tests.
	now func() time.Time
}

func NewStatsService(api github.API) *StatsService {
	return &StatsService{
		api: api,
		now: time.Now,
	}
}

// ListRepositories projects the user's repositories into name/owner/private
// summaries.
func (s *StatsService) ListRepositories(ctx context.Context, cred models.Credential) ([]models.Repository, error) {
	repos, err := s.api.ListRepositories(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	return repos, nil
}

// CountStars sums the star counts across all of the user's repositories.
func (s *StatsService) CountStars(ctx context.Context, cred models.Credential) (*models.StarsResult, error) {
	repos, err := s.api.ListRepositories(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	stars := 0
	for _, repo := range repos {
		stars += repo.Stars
	}

	return &models.StarsResult{Stars: stars}, nil
}

// CountCommits counts the authenticated user's commits with two search
// queries, one unbounded and one bounded to January 1 of the current year.
// The search endpoint covers private-repo activity without a per-repository
// walk.
func (s *StatsService) CountCommits(ctx context.Context, cred models.Credential) (*models.CommitsResult, error) {
	total, err := s.api.CountCommits(ctx, cred, cred.Login)
	if err != nil {
		return nil, fmt.Errorf("failed to count commits: %w", err)
	}

	yearStart := fmt.Sprintf("%d-01-01", s.now().Year())
	inYear, err := s.api.CountCommitsSince(ctx, cred, cred.Login, yearStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count commits in current year: %w", err)
	}

	return &models.CommitsResult{
		CommitsInCurrentYear: inYear,
		TotalCommits:         total,
	}, nil
}

// CountCommitsForUser counts an arbitrary user's commits since the given
// date (YYYY-MM-DD). Both parameters are validated before any network call.
func (s *StatsService) CountCommitsForUser(ctx context.Context, cred models.Credential, login, since string) (*models.CommitsSinceResult, error) {
	if login == "" {
		return nil, validationErrorf("username was not provided")
	}
	if err := validateDate(since); err != nil {
		return nil, err
	}

	total, err := s.api.CountCommitsSince(ctx, cred, login, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count commits for %s: %w", login, err)
	}

	return &models.CommitsSinceResult{TotalCommitsSinceDate: total}, nil
}

// CountPulls walks every repository's pull requests and counts the ones the
// authenticated user opened, bucketed by the current calendar year.
func (s *StatsService) CountPulls(ctx context.Context, cred models.Credential) (*models.PullsResult, error) {
	repos, err := s.api.ListRepositories(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	currentYear := s.now().Year()
	result := &models.PullsResult{}

	for _, repo := range repos {
		pulls, err := s.api.ListRepositoryPulls(ctx, cred, repo.Owner, repo.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to list pulls for %s/%s: %w", repo.Owner, repo.Name, err)
		}

		for _, pull := range pulls {
			if pull.AuthorLogin != cred.Login {
				continue
			}
			result.TotalPulls++
			if pull.CreatedAt.Year() == currentYear {
				result.PullsInCurrentYear++
			}
		}
	}

	return result, nil
}

// UsedLanguages merges the byte-count maps of all repositories and converts
// each language's share into a percentage rounded to two decimals. The
// percentages are rounded independently, so they need not sum to exactly
// 100.
func (s *StatsService) UsedLanguages(ctx context.Context, cred models.Credential) (map[string]float64, error) {
	repos, err := s.api.ListRepositories(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	bytesPerLanguage := make(map[string]int)
	totalBytes := 0

	for _, repo := range repos {
		languages, err := s.api.GetRepositoryLanguages(ctx, cred, repo.Owner, repo.Name)
		if err != nil {
			var statusErr *github.StatusError
			if errors.As(err, &statusErr) {
				logger.Warnf("Skipping languages of %s/%s: %v", repo.Owner, repo.Name, err)
				continue
			}
			return nil, fmt.Errorf("failed to get languages for %s/%s: %w", repo.Owner, repo.Name, err)
		}

		for language, count := range languages {
			bytesPerLanguage[language] += count
			totalBytes += count
		}
	}

	percentages := make(map[string]float64, len(bytesPerLanguage))
	if totalBytes == 0 {
		return percentages, nil
	}
	for language, count := range bytesPerLanguage {
		percentages[language] = round2(float64(count) * 100 / float64(totalBytes))
	}

	return percentages, nil
}

// CommitsByRepository counts the authenticated user's commits per
// repository via the commit walk. Commits without a linked author are
// skipped.
func (s *StatsService) CommitsByRepository(ctx context.Context, cred models.Credential) (map[string]int, error) {
	repos, err := s.api.ListRepositories(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	counts := make(map[string]int, len(repos))
	for _, repo := range repos {
		commits, err := s.api.ListRepositoryCommits(ctx, cred, repo.Owner, repo.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits for %s/%s: %w", repo.Owner, repo.Name, err)
		}

		count := 0
		for _, commit := range commits {
			if commit.AuthorLogin == cred.Login {
				count++
			}
		}
		counts[repo.Owner+"/"+repo.Name] = count
	}

	return counts, nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// validateDate requires a real calendar date in YYYY-MM-DD form; a day out
// of range for its month (e.g. April 31) is rejected.
func validateDate(date string) error {
	if date == "" {
		return validationErrorf("date was not provided")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return validationErrorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return nil
}
