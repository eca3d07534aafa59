package services

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alimgiray/yearscope/internal/models"
)

// ExportService renders an analysis report as an Excel workbook.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// ReportToExcel builds a workbook with summary, top repository, language and
// organization sheets from a finished report.
func (s *ExportService) ReportToExcel(report *models.AnalysisReport) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Summary")

	if err := s.writeSummary(f, report); err != nil {
		return nil, err
	}
	if err := s.writeTopRepos(f, report); err != nil {
		return nil, err
	}
	if err := s.writeLanguages(f, report); err != nil {
		return nil, err
	}
	if err := s.writeOrganizations(f, report); err != nil {
		return nil, err
	}

	return f, nil
}

func (s *ExportService) writeSummary(f *excelize.File, report *models.AnalysisReport) error {
	rows := [][]interface{}{
		{"Username", report.Username},
		{"Year", report.Year},
		{"Persona", report.Persona.ID},
		{"Total Commits", report.Stats.TotalCommits},
		{"Total Contributions", report.Stats.TotalContributions},
		{"Total Pull Requests", report.Stats.TotalPRs},
		{"Total Issues", report.Stats.TotalIssues},
		{"Total Reviews", report.Stats.TotalReviews},
		{"Total Merges", report.Stats.TotalMerges},
		{"Own Project Commits", report.Stats.OwnProjectCommits},
		{"Others' Project Commits", report.Stats.OthersProjectCommits},
		{"Additions", report.Stats.TotalAdditions},
		{"Deletions", report.Stats.TotalDeletions},
		{"Net Changes", report.Stats.NetChanges},
		{"Active Days", report.Stats.ActiveDays},
		{"Longest Streak", report.Stats.LongestStreak},
		{"Stars Received", report.Stats.StarsReceived},
		{"Forks Received", report.Stats.ForksReceived},
		{"Repos Created", report.Stats.ReposCreated},
		{"Most Active Month", report.Stats.MostActiveMonth},
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow("Summary", cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportService) writeTopRepos(f *excelize.File, report *models.AnalysisReport) error {
	if _, err := f.NewSheet("Top Repositories"); err != nil {
		return err
	}

	rows := [][]interface{}{{"Category", "Repository", "Value"}}
	if top := report.TopRepos.MostCommits; top != nil {
		rows = append(rows, []interface{}{"Most Commits", top.Name, top.Count})
	}
	if top := report.TopRepos.MostPRs; top != nil {
		rows = append(rows, []interface{}{"Most Pull Requests", top.Name, top.Count})
	}
	if top := report.TopRepos.MostChanges; top != nil {
		rows = append(rows, []interface{}{"Most Changes", top.Name, top.Changes})
	}
	if top := report.TopRepos.LongestContribution; top != nil {
		rows = append(rows, []interface{}{"Longest Contribution", top.Name, top.Days})
	}
	if top := report.TopRepos.MostStarred; top != nil {
		rows = append(rows, []interface{}{"Most Starred", top.Name, top.Stars})
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow("Top Repositories", cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportService) writeLanguages(f *excelize.File, report *models.AnalysisReport) error {
	if _, err := f.NewSheet("Languages"); err != nil {
		return err
	}

	rows := [][]interface{}{{"Language", "Percentage"}}
	for _, language := range report.Languages {
		rows = append(rows, []interface{}{language.Name, language.Percentage})
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow("Languages", cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportService) writeOrganizations(f *excelize.File, report *models.AnalysisReport) error {
	if _, err := f.NewSheet("Organizations"); err != nil {
		return err
	}

	rows := [][]interface{}{{"Organization", "Commits", "Pull Requests", "Repositories"}}
	for _, org := range report.OrgContributions {
		rows = append(rows, []interface{}{org.Name, org.Commits, org.PRs, strings.Join(org.RepoNames, ", ")})
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow("Organizations", cell, &row); err != nil {
			return err
		}
	}
	return nil
}
