package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/octostats/octostats/internal/models"
)

// Stats collects the aggregated figures for a single account.
type Stats struct {
	Login               string
	Stars               int
	Commits             models.CommitsResult
	Pulls               models.PullsResult
	Languages           map[string]float64
	CommitsByRepository map[string]int
}

// StatsWorkbook renders the aggregated stats as an xlsx workbook with a
// summary sheet, a language breakdown sheet and a per repository commit
// sheet. The caller owns the returned file and must close it.
func StatsWorkbook(stats Stats) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeSummarySheet(f, stats); err != nil {
		return nil, err
	}
	if err := writeLanguagesSheet(f, stats.Languages); err != nil {
		return nil, err
	}
	if err := writeRepositoriesSheet(f, stats.CommitsByRepository); err != nil {
		return nil, err
	}

	return f, nil
}

func writeSummarySheet(f *excelize.File, stats Stats) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"User", stats.Login},
		{"Stars", stats.Stars},
		{"Commits (current year)", stats.Commits.CommitsInCurrentYear},
		{"Commits (total)", stats.Commits.TotalCommits},
		{"Pull requests (current year)", stats.Pulls.PullsInCurrentYear},
		{"Pull requests (total)", stats.Pulls.TotalPulls},
	}
	return writeRows(f, sheet, rows)
}

func writeLanguagesSheet(f *excelize.File, languages map[string]float64) error {
	const sheet = "Languages"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create languages sheet: %w", err)
	}

	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := [][]interface{}{{"Language", "Percentage"}}
	for _, name := range names {
		rows = append(rows, []interface{}{name, languages[name]})
	}
	return writeRows(f, sheet, rows)
}

func writeRepositoriesSheet(f *excelize.File, commits map[string]int) error {
	const sheet = "Repositories"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create repositories sheet: %w", err)
	}

	names := make([]string, 0, len(commits))
	for name := range commits {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := [][]interface{}{{"Repository", "Commits"}}
	for _, name := range names {
		rows = append(rows, []interface{}{name, commits[name]})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
