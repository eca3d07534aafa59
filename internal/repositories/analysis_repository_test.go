package repositories

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alimgiray/yearscope/internal/models"
)

func newTestRepo(t *testing.T) *AnalysisRepository {
	t.Helper()

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

	return NewAnalysisRepository(db)
}

func TestUpsertAndGetFresh(t *testing.T) {
	repo := newTestRepo(t)

	entry := models.NewCachedAnalysis("Octocat", 2025, "v1", `{"username":"octocat"}`, time.Hour)
	require.NoError(t, repo.Upsert(entry))

	// Lookups are case-insensitive on username.
	found, err := repo.GetFresh("octocat", 2025)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, entry.ID, found.ID)
	assert.Equal(t, "v1", found.DataVersion)
	assert.Equal(t, `{"username":"octocat"}`, found.Report)
}

func TestGetFreshMissing(t *testing.T) {
	repo := newTestRepo(t)

	found, err := repo.GetFresh("nobody", 2025)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGetFreshIgnoresExpired(t *testing.T) {
	repo := newTestRepo(t)

	entry := models.NewCachedAnalysis("octocat", 2025, "v1", "{}", -time.Hour)
	require.NoError(t, repo.Upsert(entry))

	found, err := repo.GetFresh("octocat", 2025)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUpsertReplacesExisting(t *testing.T) {
	repo := newTestRepo(t)

	first := models.NewCachedAnalysis("octocat", 2025, "v1", "{}", time.Hour)
	require.NoError(t, repo.Upsert(first))

	second := models.NewCachedAnalysis("octocat", 2025, "v2", `{"fresh":true}`, time.Hour)
	require.NoError(t, repo.Upsert(second))

	found, err := repo.GetFresh("octocat", 2025)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "v2", found.DataVersion)
	assert.Equal(t, `{"fresh":true}`, found.Report)
}

func TestTouchExtendsExpiry(t *testing.T) {
	repo := newTestRepo(t)

	entry := models.NewCachedAnalysis("octocat", 2025, "v1", "{}", time.Minute)
	require.NoError(t, repo.Upsert(entry))

	newExpiry := time.Now().UTC().Add(48 * time.Hour)
	require.NoError(t, repo.Touch(entry.ID, newExpiry))

	found, err := repo.GetFresh("octocat", 2025)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.WithinDuration(t, newExpiry, found.ExpiresAt, time.Second)
}

func TestDeleteExpired(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Upsert(models.NewCachedAnalysis("stale", 2025, "", "{}", -time.Hour)))
	require.NoError(t, repo.Upsert(models.NewCachedAnalysis("fresh", 2025, "", "{}", time.Hour)))

	deleted, err := repo.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	found, err := repo.GetFresh("fresh", 2025)
	require.NoError(t, err)
	assert.NotNil(t, found)
}
