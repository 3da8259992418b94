package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	"github.com/octostats/octostats/internal/models"
)

func TestStatsWorkbook(t *testing.T) {
	f, err := StatsWorkbook(Stats{
		Login:   "krakrakra",
		Stars:   9,
		Commits: models.CommitsResult{CommitsInCurrentYear: 300, TotalCommits: 708},
		Pulls:   models.PullsResult{PullsInCurrentYear: 6, TotalPulls: 10},
		Languages: map[string]float64{
			"Java":       32.93,
			"Python":     20.96,
			"Typescript": 46.11,
		},
		CommitsByRepository: map[string]int{
			"krakrakra/repo1": 120,
			"krakrakra/repo2": 180,
		},
	})
	assert.NoError(t, err)
	defer f.Close()

	buf, err := f.WriteToBuffer()
	assert.NoError(t, err)

	reopened, err := excelize.OpenReader(buf)
	assert.NoError(t, err)
	defer reopened.Close()

	assert.ElementsMatch(t, []string{"Summary", "Languages", "Repositories"}, reopened.GetSheetList())

	login, err := reopened.GetCellValue("Summary", "B2")
	assert.NoError(t, err)
	assert.Equal(t, "krakrakra", login)

	stars, err := reopened.GetCellValue("Summary", "B3")
	assert.NoError(t, err)
	assert.Equal(t, "9", stars)

	commits, err := reopened.GetCellValue("Summary", "B4")
	assert.NoError(t, err)
	assert.Equal(t, "300", commits)

	// Languages are written in alphabetical order.
	firstLanguage, err := reopened.GetCellValue("Languages", "A2")
	assert.NoError(t, err)
	assert.Equal(t, "Java", firstLanguage)

	javaShare, err := reopened.GetCellValue("Languages", "B2")
	assert.NoError(t, err)
	assert.Equal(t, "32.93", javaShare)

	repo, err := reopened.GetCellValue("Repositories", "A2")
	assert.NoError(t, err)
	assert.Equal(t, "krakrakra/repo1", repo)

	repoCommits, err := reopened.GetCellValue("Repositories", "B2")
	assert.NoError(t, err)
	assert.Equal(t, "120", repoCommits)
}

func TestStatsWorkbookEmpty(t *testing.T) {
	f, err := StatsWorkbook(Stats{Login: "krakrakra"})
	assert.NoError(t, err)
	defer f.Close()

	buf, err := f.WriteToBuffer()
	assert.NoError(t, err)
	assert.NotZero(t, buf.Len())
}
