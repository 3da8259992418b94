package services

import (
	"context"
	"fmt"

	"github.com/octostats/octostats/internal/models"
)

// fakeAPI scripts upstream responses per method and records every call so
// tests can assert that validation failures never reach the network.
type fakeAPI struct {
	calls []string

	login    string
	loginErr error

	followErr   error
	unfollowErr error

	repos    []models.Repository
	reposErr error

	commitsByRepo map[string][]models.Commit
	pullsByRepo   map[string][]models.PullRequest

	languagesByRepo map[string]map[string]int
	languagesErr    map[string]error

	commitTotals    map[string]int
	commitSince     map[string]int
	commitSinceErr  map[string]error
	lastSinceByUser map[string]string

	profiles    map[string]*models.UserProfile
	profilesErr map[string]error

	searchLogins []string
	searchErr    error
	lastQuery    string
	lastSort     string
	lastPages    int
}

func (f *fakeAPI) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeAPI) CheckCredentials(ctx context.Context, cred models.Credential) (string, error) {
	f.record("CheckCredentials(%s)", cred.Login)
	return f.login, f.loginErr
}

func (f *fakeAPI) FollowUser(ctx context.Context, cred models.Credential, login string) error {
	f.record("FollowUser(%s)", login)
	return f.followErr
}

func (f *fakeAPI) UnfollowUser(ctx context.Context, cred models.Credential, login string) error {
	f.record("UnfollowUser(%s)", login)
	return f.unfollowErr
}

func (f *fakeAPI) GetUser(ctx context.Context, cred models.Credential, login string) (*models.UserProfile, error) {
	f.record("GetUser(%s)", login)
	if err := f.profilesErr[login]; err != nil {
		return nil, err
	}
	profile, ok := f.profiles[login]
	if !ok {
		return nil, fmt.Errorf("no profile scripted for %s", login)
	}
	return profile, nil
}

func (f *fakeAPI) ListRepositories(ctx context.Context, cred models.Credential) ([]models.Repository, error) {
	f.record("ListRepositories")
	return f.repos, f.reposErr
}

func (f *fakeAPI) ListRepositoryCommits(ctx context.Context, cred models.Credential, owner, repo string) ([]models.Commit, error) {
	f.record("ListRepositoryCommits(%s/%s)", owner, repo)
	return f.commitsByRepo[owner+"/"+repo], nil
}

func (f *fakeAPI) ListRepositoryPulls(ctx context.Context, cred models.Credential, owner, repo string) ([]models.PullRequest, error) {
	f.record("ListRepositoryPulls(%s/%s)", owner, repo)
	return f.pullsByRepo[owner+"/"+repo], nil
}

func (f *fakeAPI) GetRepositoryLanguages(ctx context.Context, cred models.Credential, owner, repo string) (map[string]int, error) {
	f.record("GetRepositoryLanguages(%s/%s)", owner, repo)
	if err := f.languagesErr[owner+"/"+repo]; err != nil {
		return nil, err
	}
	return f.languagesByRepo[owner+"/"+repo], nil
}

func (f *fakeAPI) CountCommits(ctx context.Context, cred models.Credential, login string) (int, error) {
	f.record("CountCommits(%s)", login)
	return f.commitTotals[login], nil
}

func (f *fakeAPI) CountCommitsSince(ctx context.Context, cred models.Credential, login, since string) (int, error) {
	f.record("CountCommitsSince(%s,%s)", login, since)
	if f.lastSinceByUser == nil {
		f.lastSinceByUser = make(map[string]string)
	}
	f.lastSinceByUser[login] = since
	if err := f.commitSinceErr[login]; err != nil {
		return 0, err
	}
	return f.commitSince[login], nil
}

func (f *fakeAPI) SearchUsers(ctx context.Context, cred models.Credential, query, sort string, pages int) ([]string, error) {
	f.record("SearchUsers(%s)", query)
	f.lastQuery = query
	f.lastSort = sort
	f.lastPages = pages
	return f.searchLogins, f.searchErr
}
