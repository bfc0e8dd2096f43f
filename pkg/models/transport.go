package models

import "time"

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Version     string    `json:"version"`
}

// MetricsResponse exposes in-process analysis counters
type MetricsResponse struct {
	TotalAnalyses       int64   `json:"total_analyses"`
	SuccessfulAnalyses  int64   `json:"successful_analyses"`
	FailedAnalyses      int64   `json:"failed_analyses"`
	CropsCreated        int64   `json:"crops_created"`
	CropsFailed         int64   `json:"crops_failed"`
	AvgProcessingTimeMs float64 `json:"avg_processing_time_ms"`
}
