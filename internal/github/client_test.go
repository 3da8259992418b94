package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/octostats/octostats/internal/models"
)

var testCred = models.Credential{Login: "AAAAAAAA", PAT: "ghp_86f4ad856f6d85f4d4fds56fasdf"}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(6000,
		WithBaseURL(srv.URL+"/"),
		WithRetryPolicy(2, 5*time.Second),
	)
	return client, srv
}

func TestListRepositoriesWalksAllPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/user/repos?page=2>; rel="next", <http://%s/user/repos?page=2>; rel="last"`, r.Host, r.Host))
			fmt.Fprint(w, `[
				{"name": "repo1", "owner": {"login": "AAAAAAAA"}, "private": false, "stargazers_count": 2},
				{"name": "repo2", "owner": {"login": "AAAAAAAA"}, "private": false, "stargazers_count": 3}
			]`)
		case "2":
			fmt.Fprint(w, `[
				{"name": "repo3", "owner": {"login": "BBBBBBB"}, "private": true, "stargazers_count": 4}
			]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client, _ := newTestClient(t, mux)

	repos, err := client.ListRepositories(context.Background(), testCred)
	assert.NoError(t, err)
	assert.Equal(t, []models.Repository{
		{Name: "repo1", Owner: "AAAAAAAA", Private: false, Stars: 2},
		{Name: "repo2", Owner: "AAAAAAAA", Private: false, Stars: 3},
		{Name: "repo3", Owner: "BBBBBBB", Private: true, Stars: 4},
	}, repos)
}

func TestListRepositoriesTruncatesOnFailingPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/user/repos?page=2>; rel="next", <http://%s/user/repos?page=2>; rel="last"`, r.Host, r.Host))
			fmt.Fprint(w, `[{"name": "repo1", "owner": {"login": "AAAAAAAA"}, "private": false, "stargazers_count": 2}]`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	client, _ := newTestClient(t, mux)

	// Page 2 fails, the walk halts and page 1 is still returned.
	repos, err := client.ListRepositories(context.Background(), testCred)
	assert.NoError(t, err)
	assert.Len(t, repos, 1)
	assert.Equal(t, "repo1", repos[0].Name)
}

func TestListRepositoryPullsProjectsAuthorAndDate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/AAAAAAAA/repo1/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[
			{"user": {"login": "AAAAAAAA"}, "created_at": "2022-05-22T18:45:42Z"},
			{"user": {"login": "B"}, "created_at": "2021-05-22T18:45:42Z"}
		]`)
	})

	client, _ := newTestClient(t, mux)

	pulls, err := client.ListRepositoryPulls(context.Background(), testCred, "AAAAAAAA", "repo1")
	assert.NoError(t, err)
	assert.Len(t, pulls, 2)
	assert.Equal(t, "AAAAAAAA", pulls[0].AuthorLogin)
	assert.Equal(t, 2022, pulls[0].CreatedAt.Year())
	assert.Equal(t, "B", pulls[1].AuthorLogin)
}

func TestListRepositoryCommitsKeepsUnattributedCommits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/AAAAAAAA/repo1/commits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"author": {"login": "AAAAAAAA"}, "commit": {"committer": {"date": "2022-05-22T18:45:42Z"}}},
			{"author": null, "commit": {"committer": {"date": "2022-01-02T08:00:00Z"}}}
		]`)
	})

	client, _ := newTestClient(t, mux)

	commits, err := client.ListRepositoryCommits(context.Background(), testCred, "AAAAAAAA", "repo1")
	assert.NoError(t, err)
	assert.Len(t, commits, 2)
	assert.Equal(t, "AAAAAAAA", commits[0].AuthorLogin)
	// Unlinked email: author is absent, the commit is kept with an
	// empty login so callers can skip it.
	assert.Empty(t, commits[1].AuthorLogin)
}

func TestGetRepositoryLanguages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/AAAAAAAA/repo1/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Java": 6854656, "Python": 22326}`)
	})

	client, _ := newTestClient(t, mux)

	languages, err := client.GetRepositoryLanguages(context.Background(), testCred, "AAAAAAAA", "repo1")
	assert.NoError(t, err)
	assert.Equal(t, map[string]int{"Java": 6854656, "Python": 22326}, languages)
}

func TestFollowUserExpects204(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/following/BBBBBBB", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	client, _ := newTestClient(t, mux)

	err := client.FollowUser(context.Background(), testCred, "BBBBBBB")
	assert.NoError(t, err)
}

func TestFollowUserUnexpectedStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/following/BBBBBBB", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	client, _ := newTestClient(t, mux)

	err := client.FollowUser(context.Background(), testCred, "BBBBBBB")
	var statusErr *StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
}

func TestCheckCredentialsReturnsLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login": "krakrakra"}`)
	})

	client, _ := newTestClient(t, mux)

	login, err := client.CheckCredentials(context.Background(), testCred)
	assert.NoError(t, err)
	assert.Equal(t, "krakrakra", login)
}

func TestGetUserProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/user1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login": "user1", "email": "user1@example.com", "location": "Brazil"}`)
	})

	client, _ := newTestClient(t, mux)

	profile, err := client.GetUser(context.Background(), testCred, "user1")
	assert.NoError(t, err)
	assert.Equal(t, "user1", profile.Login)
	assert.Equal(t, "user1@example.com", profile.Email)
	assert.Equal(t, "Brazil", profile.Location)
}
