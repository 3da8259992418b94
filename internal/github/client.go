package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/octostats/octostats/internal/models"
	"github.com/octostats/octostats/pkg/logger"
)

const perPage = 100

// API is the upstream surface the aggregation services consume. Every call
// is authenticated with the credential of the user the request runs for.
type API interface {
	CheckCredentials(ctx context.Context, cred models.Credential) (string, error)
	FollowUser(ctx context.Context, cred models.Credential, login string) error
	UnfollowUser(ctx context.Context, cred models.Credential, login string) error
	GetUser(ctx context.Context, cred models.Credential, login string) (*models.UserProfile, error)
	ListRepositories(ctx context.Context, cred models.Credential) ([]models.Repository, error)
	ListRepositoryCommits(ctx context.Context, cred models.Credential, owner, repo string) ([]models.Commit, error)
	ListRepositoryPulls(ctx context.Context, cred models.Credential, owner, repo string) ([]models.PullRequest, error)
	GetRepositoryLanguages(ctx context.Context, cred models.Credential, owner, repo string) (map[string]int, error)
	CountCommits(ctx context.Context, cred models.Credential, login string) (int, error)
	CountCommitsSince(ctx context.Context, cred models.Credential, login, since string) (int, error)
	SearchUsers(ctx context.Context, cred models.Credential, query, sort string, pages int) ([]string, error)
}

// Client implements API on top of the GitHub REST API.
type Client struct {
	baseURL    *url.URL
	limiter    *rate.Limiter
	maxRetries int
	maxWait    time.Duration
}

type Option func(*Client)

// WithBaseURL points the client at a different API root, used in tests.
func WithBaseURL(rawURL string) Option {
	return func(c *Client) {
		u, err := url.Parse(rawURL)
		if err != nil {
			logger.WithError(err).Fatalf("invalid GitHub base URL %q", rawURL)
		}
		c.baseURL = u
	}
}

// WithRetryPolicy overrides the bounded retry applied to throttled search
// calls.
func WithRetryPolicy(maxRetries int, maxWait time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.maxWait = maxWait
	}
}

func NewClient(requestsPerMinute int, opts ...Option) *Client {
	c := &Client{
		limiter:    rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
		maxRetries: 3,
		maxWait:    2 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newGitHubClient builds a go-github client authenticated as the given user.
func (c *Client) newGitHubClient(ctx context.Context, cred models.Credential) *github.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cred.PAT},
	)
	tc := oauth2.NewClient(ctx, ts)
	gh := github.NewClient(tc)
	if c.baseURL != nil {
		gh.BaseURL = c.baseURL
	}
	return gh
}

// CheckCredentials verifies the credential against the authenticated-user
// endpoint and returns the login it resolves to.
func (c *Client) CheckCredentials(ctx context.Context, cred models.Credential) (string, error) {
	gh := c.newGitHubClient(ctx, cred)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	user, resp, err := gh.Users.Get(ctx, "")
	if err != nil {
		return "", c.statusError("check credentials", resp, err)
	}

	return user.GetLogin(), nil
}

// FollowUser follows the given user, expecting 204.
func (c *Client) FollowUser(ctx context.Context, cred models.Credential, login string) error {
	gh := c.newGitHubClient(ctx, cred)

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := gh.Users.Follow(ctx, login)
	if err != nil {
		return c.statusError("follow user", resp, err)
	}
	if resp.StatusCode != http.StatusNoContent {
		return &StatusError{Operation: "follow user", Status: resp.StatusCode}
	}
	return nil
}

// UnfollowUser unfollows the given user, expecting 204.
func (c *Client) UnfollowUser(ctx context.Context, cred models.Credential, login string) error {
	gh := c.newGitHubClient(ctx, cred)

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := gh.Users.Unfollow(ctx, login)
	if err != nil {
		return c.statusError("unfollow user", resp, err)
	}
	if resp.StatusCode != http.StatusNoContent {
		return &StatusError{Operation: "unfollow user", Status: resp.StatusCode}
	}
	return nil
}

// GetUser fetches a user profile, expecting 200.
func (c *Client) GetUser(ctx context.Context, cred models.Credential, login string) (*models.UserProfile, error) {
	gh := c.newGitHubClient(ctx, cred)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	user, resp, err := gh.Users.Get(ctx, login)
	if err != nil {
		return nil, c.statusError("get user", resp, err)
	}

	return &models.UserProfile{
		Login:    user.GetLogin(),
		Name:     user.GetName(),
		Email:    user.GetEmail(),
		Location: user.GetLocation(),
		Company:  user.GetCompany(),
		Bio:      user.GetBio(),
	}, nil
}

// ListRepositories walks every page of the authenticated user's
// repositories. The walk is best-effort: a failing page halts it and the
// pages collected so far are returned without an error.
func (c *Client) ListRepositories(ctx context.Context, cred models.Credential) ([]models.Repository, error) {
	gh := c.newGitHubClient(ctx, cred)

	opt := &github.RepositoryListOptions{
		Type:        "all",
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}

	var all []models.Repository
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return all, err
		}

		repos, resp, err := gh.Repositories.List(ctx, "", opt)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			logger.WithError(err).Warn("repository walk halted, returning partial result")
			return all, nil
		}

		for _, repo := range repos {
			all = append(all, models.Repository{
				Name:    repo.GetName(),
				Owner:   repo.GetOwner().GetLogin(),
				Private: repo.GetPrivate(),
				Stars:   repo.GetStargazersCount(),
			})
		}

		if len(repos) == 0 || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return all, nil
}

// ListRepositoryCommits walks every page of a repository's commits with the
// same best-effort policy as ListRepositories.
func (c *Client) ListRepositoryCommits(ctx context.Context, cred models.Credential, owner, repo string) ([]models.Commit, error) {
	gh := c.newGitHubClient(ctx, cred)

	opt := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}

	var all []models.Commit
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return all, err
		}

		commits, resp, err := gh.Repositories.ListCommits(ctx, owner, repo, opt)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			logger.WithFields(logrus.Fields{"owner": owner, "repo": repo}).WithError(err).Warn("commit walk halted, returning partial result")
			return all, nil
		}

		for _, commit := range commits {
			all = append(all, models.Commit{
				// Author is nil when the commit email is not linked
				// to any account.
				AuthorLogin: commit.GetAuthor().GetLogin(),
				CommittedAt: commit.GetCommit().GetCommitter().GetDate().Time,
			})
		}

		if len(commits) == 0 || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return all, nil
}

// ListRepositoryPulls walks every page of a repository's pull requests in
// all states with the same best-effort policy as ListRepositories.
func (c *Client) ListRepositoryPulls(ctx context.Context, cred models.Credential, owner, repo string) ([]models.PullRequest, error) {
	gh := c.newGitHubClient(ctx, cred)

	opt := &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}

	var all []models.PullRequest
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return all, err
		}

		pulls, resp, err := gh.PullRequests.List(ctx, owner, repo, opt)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			logger.WithFields(logrus.Fields{"owner": owner, "repo": repo}).WithError(err).Warn("pull request walk halted, returning partial result")
			return all, nil
		}

		for _, pull := range pulls {
			all = append(all, models.PullRequest{
				AuthorLogin: pull.GetUser().GetLogin(),
				CreatedAt:   pull.GetCreatedAt().Time,
			})
		}

		if len(pulls) == 0 || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return all, nil
}

// GetRepositoryLanguages fetches the byte-count-per-language map of a
// repository. Single call, not paginated.
func (c *Client) GetRepositoryLanguages(ctx context.Context, cred models.Credential, owner, repo string) (map[string]int, error) {
	gh := c.newGitHubClient(ctx, cred)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	languages, resp, err := gh.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, c.statusError("list languages", resp, err)
	}

	return languages, nil
}

// statusError converts an upstream failure into a StatusError when a
// response status is available, otherwise wraps the transport error.
func (c *Client) statusError(operation string, resp *github.Response, err error) error {
	if resp != nil {
		return &StatusError{Operation: operation, Status: resp.StatusCode}
	}
	return fmt.Errorf("github: %s: %w", operation, err)
}
