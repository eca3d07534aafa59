package models

import (
	"time"

	"github.com/google/uuid"
)

// CachedAnalysis is a stored analysis result for one (username, year) pair.
// DataVersion holds the user's latest public activity timestamp at the time
// the report was computed; a mismatch invalidates the entry before its TTL.
type CachedAnalysis struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Year        int       `json:"year"`
	DataVersion string    `json:"data_version"`
	Report      string    `json:"report"` // AnalysisReport as JSON
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCachedAnalysis creates a new CachedAnalysis with a generated UUID.
func NewCachedAnalysis(username string, year int, dataVersion, report string, ttl time.Duration) *CachedAnalysis {
	now := time.Now().UTC()
	return &CachedAnalysis{
		ID:          uuid.New().String(),
		Username:    username,
		Year:        year,
		DataVersion: dataVersion,
		Report:      report,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
