package models

import "time"

// Credential authenticates upstream calls on behalf of a user. It is bound
// to the request context by the auth middleware and never persisted in
// plaintext.
type Credential struct {
	Login string
	PAT   string
}

// Repository is the projection of an upstream repository record served to
// clients.
type Repository struct {
	Name    string `json:"name"`
	Owner   string `json:"owner"`
	Private bool   `json:"private"`
	Stars   int    `json:"-"`
}

// Commit carries just the fields the aggregation needs. AuthorLogin is empty
// when the upstream has no linked account for the commit email.
type Commit struct {
	AuthorLogin string
	CommittedAt time.Time
}

// PullRequest carries just the fields the aggregation needs.
type PullRequest struct {
	AuthorLogin string
	CreatedAt   time.Time
}

// UserProfile is an upstream user profile.
type UserProfile struct {
	Login    string `json:"login"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Company  string `json:"company"`
	Bio      string `json:"bio"`
}

// StarsResult is the response of the stars aggregation.
type StarsResult struct {
	Stars int `json:"stars"`
}

// CommitsResult is the response of the authenticated-user commit count.
type CommitsResult struct {
	CommitsInCurrentYear int `json:"commits_in_current_year"`
	TotalCommits         int `json:"total_commits"`
}

// CommitsSinceResult is the response of the arbitrary-user commit count.
type CommitsSinceResult struct {
	TotalCommitsSinceDate int `json:"total_commits_since_date"`
}

// PullsResult is the response of the pulls aggregation.
type PullsResult struct {
	PullsInCurrentYear int `json:"pulls_in_current_year"`
	TotalPulls         int `json:"total_pulls"`
}

// RankedUser is a search hit enriched with its commit count and email,
// ordered descending by commit count.
type RankedUser struct {
	Login   string           `json:"login"`
	Email   string           `json:"email"`
	Commits RankedUserCommit `json:"commits"`
}

type RankedUserCommit struct {
	TotalCommitsSinceDate int `json:"total_commits_since_date"`
}
