package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"

	"github.com/octostats/octostats/internal/models"
	"github.com/octostats/octostats/pkg/logger"
)

// retryBuffer is added on top of the reset-header wait so the retry lands
// after the window actually rolls over.
const retryBuffer = time.Second

// CountCommits returns the total number of commits authored by login, with
// no date bound.
func (c *Client) CountCommits(ctx context.Context, cred models.Credential, login string) (int, error) {
	return c.searchCommitTotal(ctx, cred, fmt.Sprintf("author:%s", login))
}

// CountCommitsSince returns the total number of commits authored by login
// committed after since (YYYY-MM-DD).
func (c *Client) CountCommitsSince(ctx context.Context, cred models.Credential, login, since string) (int, error) {
	return c.searchCommitTotal(ctx, cred, fmt.Sprintf("author:%s committer-date:>%s", login, since))
}

// searchCommitTotal runs a commit search and returns only its total count.
// The commit search endpoint has its own secondary rate limit; a throttled
// call waits until the reset advertised by the response and retries, up to
// maxRetries attempts, then fails with ErrRateLimitExceeded.
func (c *Client) searchCommitTotal(ctx context.Context, cred models.Credential, query string) (int, error) {
	gh := c.newGitHubClient(ctx, cred)

	opt := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, err
		}

		result, resp, err := gh.Search.Commits(ctx, query, opt)
		if err == nil {
			logger.WithFields(logrus.Fields{
				"query":     query,
				"remaining": resp.Rate.Remaining,
			}).Debug("commit search done")
			return result.GetTotal(), nil
		}

		wait, throttled := throttleDelay(err)
		if !throttled {
			return 0, fmt.Errorf("github: commit search: %w", err)
		}
		if attempt >= c.maxRetries {
			return 0, ErrRateLimitExceeded
		}
		if err := c.sleep(ctx, wait); err != nil {
			return 0, err
		}
	}
}

// SearchUsers runs a paged user search and returns the logins of up to
// pages*100 hits. A page failing with a status error halts the walk and the
// hits collected so far are returned; rate-limit exhaustion propagates.
func (c *Client) SearchUsers(ctx context.Context, cred models.Credential, query, sort string, pages int) ([]string, error) {
	gh := c.newGitHubClient(ctx, cred)

	opt := &github.SearchOptions{
		Sort:        sort,
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var logins []string
	for page := 1; page <= pages; page++ {
		opt.Page = page

		result, err := c.searchUsersPage(ctx, gh, query, opt)
		if err != nil {
			if errors.Is(err, ErrRateLimitExceeded) || ctx.Err() != nil {
				return logins, err
			}
			logger.WithError(err).Warn("user search walk halted, returning partial result")
			return logins, nil
		}

		for _, user := range result.Users {
			logins = append(logins, user.GetLogin())
		}

		if len(result.Users) == 0 {
			break
		}
	}

	return logins, nil
}

func (c *Client) searchUsersPage(ctx context.Context, gh *github.Client, query string, opt *github.SearchOptions) (*github.UsersSearchResult, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		result, resp, err := gh.Search.Users(ctx, query, opt)
		if err == nil {
			logger.WithFields(logrus.Fields{
				"query":     query,
				"page":      opt.Page,
				"remaining": resp.Rate.Remaining,
			}).Debug("user search page done")
			return result, nil
		}

		wait, throttled := throttleDelay(err)
		if !throttled {
			return nil, fmt.Errorf("github: user search: %w", err)
		}
		if attempt >= c.maxRetries {
			return nil, ErrRateLimitExceeded
		}
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// throttleDelay reports whether err is a throttling response and how long to
// wait before retrying, derived from the rate-limit reset the upstream sent.
func throttleDelay(err error) (time.Duration, bool) {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return time.Until(rateErr.Rate.Reset.Time) + retryBuffer, true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		if abuseErr.RetryAfter != nil {
			return *abuseErr.RetryAfter + retryBuffer, true
		}
		return time.Minute, true
	}

	return 0, false
}

// sleep waits for the given duration, clamped to [retryBuffer, maxWait],
// honoring cancellation.
func (c *Client) sleep(ctx context.Context, wait time.Duration) error {
	if wait < retryBuffer {
		wait = retryBuffer
	}
	if wait > c.maxWait {
		wait = c.maxWait
	}

	logger.Infof("GitHub search throttled, sleeping %s before retry", wait.Round(time.Millisecond))

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
