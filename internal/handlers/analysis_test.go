package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimgiray/yearscope/internal/models"
	"github.com/alimgiray/yearscope/internal/repositories"
	"github.com/alimgiray/yearscope/internal/services"
)

// stubFetcher is a canned GithubFetcher for handler tests.
type stubFetcher struct {
	user    *models.UserInfo
	userErr error
	summary *models.ContributionSummary
}

func (s *stubFetcher) GetUser(ctx context.Context, username string) (*models.UserInfo, error) {
	if s.userErr != nil {
		return nil, s.userErr
	}
	return s.user, nil
}

func (s *stubFetcher) GetContributionSummary(ctx context.Context, username string, year int) (*models.ContributionSummary, error) {
	return s.summary, nil
}

func (s *stubFetcher) ListUserRepositories(ctx context.Context, username string) ([]models.RepositoryInfo, error) {
	return nil, nil
}

func (s *stubFetcher) ListRepositoryCommits(ctx context.Context, owner, name string, year int) ([]models.CommitDetail, error) {
	return nil, nil
}

func (s *stubFetcher) ListRepositoryLanguages(ctx context.Context, owner, name string) (map[string]int, error) {
	return nil, nil
}

func (s *stubFetcher) LatestEventTime(ctx context.Context, username string) (string, error) {
	return "", nil
}

func (s *stubFetcher) HasToken() bool {
	return false
}

func newTestRouter(t *testing.T, fetcher services.GithubFetcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE analyses (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			year INTEGER NOT NULL,
			data_version TEXT,
			report TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(username, year)
		)
	`)
	require.NoError(t, err)

	analysisService := services.NewAnalysisService(
		fetcher,
		services.NewAnalyzerService(),
		repositories.NewAnalysisRepository(db),
		time.Hour,
	)
	handler := NewAnalysisHandler(analysisService, services.NewExportService())

	router := gin.New()
	router.POST("/api/analyze", handler.Analyze)
	router.GET("/api/export/:username/:year", handler.Export)
	return router
}

func performAnalyze(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeRejectsMissingUsername(t *testing.T) {
	router := newTestRouter(t, &stubFetcher{})

	w := performAnalyze(router, `{"year": 2025}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeRejectsInvalidYear(t *testing.T) {
	router := newTestRouter(t, &stubFetcher{})

	w := performAnalyze(router, `{"username": "octocat", "year": 1999}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeUnknownUser(t *testing.T) {
	router := newTestRouter(t, &stubFetcher{userErr: services.ErrUserNotFound})

	w := performAnalyze(router, `{"username": "ghost-user", "year": 2025}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeNoActivity(t *testing.T) {
	router := newTestRouter(t, &stubFetcher{
		user:    &models.UserInfo{Name: "octocat"},
		summary: &models.ContributionSummary{},
	})

	w := performAnalyze(router, `{"username": "octocat", "year": 2025}`)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "error")
	assert.Equal(t, "octocat", body["username"])
}

func TestAnalyzeSuccess(t *testing.T) {
	router := newTestRouter(t, &stubFetcher{
		user: &models.UserInfo{Name: "The Octocat"},
		summary: &models.ContributionSummary{
			TotalCommits:       7,
			TotalContributions: 7,
			Calendar:           []models.ContributionDay{{Date: "2025-06-01", Count: 7}},
			CommitsByRepo: []models.RepoContribution{
				{Name: "hello-world", Owner: "octocat", Count: 7},
			},
		},
	})

	w := performAnalyze(router, `{"username": "octocat", "year": 2025}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "octocat", report.Username)
	assert.Equal(t, 7, report.Stats.TotalCommits)
	assert.Equal(t, "consistent_coder", report.Persona.ID)
	assert.False(t, report.Degraded)
}

func TestExportReturnsWorkbook(t *testing.T) {
	router := newTestRouter(t, &stubFetcher{
		user: &models.UserInfo{Name: "The Octocat"},
		summary: &models.ContributionSummary{
			TotalCommits:       7,
			TotalContributions: 7,
			Calendar:           []models.ContributionDay{{Date: "2025-06-01", Count: 7}},
			CommitsByRepo: []models.RepoContribution{
				{Name: "hello-world", Owner: "octocat", Count: 7},
			},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/octocat/2025", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, w.Body.Len())
}

func TestExportRejectsBadYear(t *testing.T) {
	router := newTestRouter(t, &stubFetcher{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/octocat/later", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
