package repositories

import (
	"database/sql"
	"strings"
	"time"

	"github.com/alimgiray/yearscope/internal/models"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Upsert stores a cached analysis, replacing any previous entry for the same
// username and year.
func (r *AnalysisRepository) Upsert(analysis *models.CachedAnalysis) error {
	query := `
		INSERT INTO analyses (id, username, year, data_version, report, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username, year) DO UPDATE SET
			data_version = excluded.data_version,
			report = excluded.report,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		analysis.ID, strings.ToLower(analysis.Username), analysis.Year, analysis.DataVersion,
		analysis.Report, analysis.ExpiresAt, analysis.CreatedAt, analysis.UpdatedAt,
	)

	return err
}

// GetFresh retrieves the cached analysis for a username and year, or nil
// when there is none or it has expired.
func (r *AnalysisRepository) GetFresh(username string, year int) (*models.CachedAnalysis, error) {
	query := `
		SELECT id, username, year, data_version, report, expires_at, created_at, updated_at
		FROM analyses
		WHERE username = ? AND year = ? AND expires_at > ?
	`

	analysis := &models.CachedAnalysis{}
	err := r.db.QueryRow(query, strings.ToLower(username), year, time.Now().UTC()).Scan(
		&analysis.ID, &analysis.Username, &analysis.Year, &analysis.DataVersion,
		&analysis.Report, &analysis.ExpiresAt, &analysis.CreatedAt, &analysis.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return analysis, nil
}

// Touch extends the expiry of a cached analysis. Serving a cached report
// restarts its TTL.
func (r *AnalysisRepository) Touch(id string, expiresAt time.Time) error {
	query := `UPDATE analyses SET expires_at = ?, updated_at = ? WHERE id = ?`

	_, err := r.db.Exec(query, expiresAt, time.Now().UTC(), id)
	return err
}

// DeleteExpired removes entries whose TTL has passed.
func (r *AnalysisRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM analyses WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
