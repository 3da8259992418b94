package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/octostats/octostats/internal/models"
)

func newSearchService(api *fakeAPI) *SearchService {
	service := NewSearchService(api)
	service.now = fixedNow
	return service
}

func profileFor(login string) *models.UserProfile {
	return &models.UserProfile{Login: login, Email: login + "@example.com"}
}

func TestSearchAndRankOrdersByCommitCount(t *testing.T) {
	api := &fakeAPI{
		searchLogins: []string{"user1", "user2", "user3", "user4", "user5"},
		commitSince: map[string]int{
			"user1": 23,
			"user2": 785,
			"user3": 453,
			"user4": 230,
			"user5": 852,
		},
		profiles: map[string]*models.UserProfile{
			"user1": profileFor("user1"),
			"user2": profileFor("user2"),
			"user3": profileFor("user3"),
			"user4": profileFor("user4"),
			"user5": profileFor("user5"),
		},
	}
	service := newSearchService(api)

	ranked, err := service.SearchAndRank(context.Background(), currentUser, SearchParams{
		Language: "javascript",
		Type:     "users",
		Location: "Brazil",
		Sort:     "followers",
		Since:    "2022-01-01",
		Pages:    1,
	})
	assert.NoError(t, err)

	logins := make([]string, 0, len(ranked))
	for _, user := range ranked {
		logins = append(logins, user.Login)
	}
	assert.Equal(t, []string{"user5", "user2", "user3", "user4", "user1"}, logins)

	assert.Equal(t, 852, ranked[0].Commits.TotalCommitsSinceDate)
	assert.Equal(t, "user5@example.com", ranked[0].Email)
	assert.Equal(t, 23, ranked[4].Commits.TotalCommitsSinceDate)

	assert.Equal(t, "language:javascript type:users location:Brazil", api.lastQuery)
	assert.Equal(t, "followers", api.lastSort)
	assert.Equal(t, 1, api.lastPages)
}

func TestSearchAndRankWithoutLocationOrSort(t *testing.T) {
	api := &fakeAPI{
		searchLogins: []string{"user1"},
		commitSince:  map[string]int{"user1": 10},
		profiles:     map[string]*models.UserProfile{"user1": profileFor("user1")},
	}
	service := newSearchService(api)

	ranked, err := service.SearchAndRank(context.Background(), currentUser, SearchParams{
		Language: "go",
		Type:     "users",
		Pages:    2,
	})
	assert.NoError(t, err)
	assert.Len(t, ranked, 1)
	assert.Equal(t, "language:go type:users", api.lastQuery)
	assert.Equal(t, "", api.lastSort)

	// Since defaults to January 1 of the current year.
	assert.Equal(t, "2022-01-01", api.lastSinceByUser["user1"])
}

func TestSearchAndRankBreaksTiesByLogin(t *testing.T) {
	api := &fakeAPI{
		searchLogins: []string{"zeta", "alpha", "mid"},
		commitSince:  map[string]int{"zeta": 100, "alpha": 100, "mid": 200},
		profiles: map[string]*models.UserProfile{
			"zeta":  profileFor("zeta"),
			"alpha": profileFor("alpha"),
			"mid":   profileFor("mid"),
		},
	}
	service := newSearchService(api)

	ranked, err := service.SearchAndRank(context.Background(), currentUser, SearchParams{
		Language: "go",
		Type:     "users",
		Pages:    1,
	})
	assert.NoError(t, err)
	assert.Equal(t, "mid", ranked[0].Login)
	assert.Equal(t, "alpha", ranked[1].Login)
	assert.Equal(t, "zeta", ranked[2].Login)
}

func TestSearchAndRankValidation(t *testing.T) {
	testCases := []struct {
		name   string
		params SearchParams
	}{
		{name: "missing language", params: SearchParams{Type: "users", Pages: 1}},
		{name: "missing type", params: SearchParams{Language: "go", Pages: 1}},
		{name: "missing pages", params: SearchParams{Language: "go", Type: "users"}},
		{name: "invalid since", params: SearchParams{Language: "go", Type: "users", Pages: 1, Since: "2022-04-31"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{}
			service := newSearchService(api)

			_, err := service.SearchAndRank(context.Background(), currentUser, tc.params)

			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.Empty(t, api.calls)
		})
	}
}

func TestSearchAndRankAbortsOnFailedEnrichment(t *testing.T) {
	api := &fakeAPI{
		searchLogins:   []string{"user1", "user2"},
		commitSince:    map[string]int{"user1": 10},
		commitSinceErr: map[string]error{"user2": errors.New("boom")},
		profiles:       map[string]*models.UserProfile{"user1": profileFor("user1")},
	}
	service := newSearchService(api)

	_, err := service.SearchAndRank(context.Background(), currentUser, SearchParams{
		Language: "go",
		Type:     "users",
		Pages:    1,
	})
	// One failing lookup aborts the whole ranking.
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "user2")
}
