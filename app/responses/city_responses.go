package responses

import (
	"time"

	"github.com/geo-reconciler/app/models"
	"github.com/geo-reconciler/internal/reconcile"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ResolveCityResponse is the single-label resolution result.
type ResolveCityResponse struct {
	Query            string             `json:"query"`
	Match            *models.Match      `json:"match"`
	Candidates       []models.Candidate `json:"candidates"`
	Threshold        float64            `json:"threshold"`
	DirectoryVersion string             `json:"directory_version"`
	CacheHit         bool               `json:"cache_hit"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
}

// ReconcileResponse is a completed synchronous reconciliation.
type ReconcileResponse struct {
	SessionID        string                  `json:"session_id"`
	Records          []models.ResolvedRecord `json:"records"`
	Stats            reconcile.Stats         `json:"stats"`
	TotalDuplicates  int                     `json:"total_duplicates"`
	Threshold        float64                 `json:"threshold"`
	ProcessingTimeMs int64                   `json:"processing_time_ms"`
}

// MergeResponse is a completed merge of two collections.
type MergeResponse struct {
	Records          []models.ResolvedRecord `json:"records"`
	Stats            reconcile.MergeStats    `json:"stats"`
	Threshold        float64                 `json:"threshold"`
	ProcessingTimeMs int64                   `json:"processing_time_ms"`
}

// JobResponse acknowledges an accepted asynchronous batch.
type JobResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// JobStatusResponse reports the progress of an asynchronous batch.
type JobStatusResponse struct {
	JobID     string                  `json:"job_id"`
	Status    string                  `json:"status"`
	Processed int                     `json:"processed"`
	Total     int                     `json:"total"`
	Records   []models.ResolvedRecord `json:"records,omitempty"`
	Stats     reconcile.Stats         `json:"stats"`
	Error     string                  `json:"error,omitempty"`
}

// SessionResponse returns a stored reconciliation session.
type SessionResponse struct {
	ID         string                        `json:"id"`
	Sheet      string                        `json:"sheet"`
	Threshold  float64                       `json:"threshold"`
	Records    []models.ResolvedRecord       `json:"records"`
	Candidates map[string][]models.Candidate `json:"candidates"`
	Stats      reconcile.Stats               `json:"stats"`
	CreatedAt  time.Time                     `json:"created_at"`
	UpdatedAt  time.Time                     `json:"updated_at"`
}

// DirectoryStatusResponse reports on the active directory snapshot.
type DirectoryStatusResponse struct {
	Version         string    `json:"version"`
	TotalEntries    int       `json:"total_entries"`
	DomesticEntries int       `json:"domestic_entries"`
	LoadedAt        time.Time `json:"loaded_at"`
}

// HealthCheckResponse is the health probe payload.
type HealthCheckResponse struct {
	Status           string `json:"status"`
	DirectoryVersion string `json:"directory_version"`
	DirectoryEntries int    `json:"directory_entries"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
}
