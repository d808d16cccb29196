// Package metrics provides in-memory request statistics for the status
// endpoint. This file contains pure data types with no behavior.
package metrics

import "time"

// GenerationRecord represents a single icon set generation request.
type GenerationRecord struct {
	// ID is the unique identifier for this request
	ID string `json:"id"`

	// Style is the style preset id used for the set
	Style string `json:"style"`

	// Status indicates the outcome: "success" or "error"
	Status string `json:"status"`

	// StartTime is when the request began
	StartTime time.Time `json:"start_time"`

	// Duration is the total wall time of the request
	Duration time.Duration `json:"duration"`

	// IconCount is the number of icons delivered, 0 on failure
	IconCount int `json:"icon_count"`

	// ErrorCategory holds the classified category when Status is "error"
	ErrorCategory string `json:"error_category,omitempty"`
}

// GenerationMetrics represents aggregated generation statistics.
type GenerationMetrics struct {
	// TotalRequests is the total number of generation requests
	TotalRequests int64 `json:"total_requests"`

	// TotalSuccess is the count of complete icon sets delivered
	TotalSuccess int64 `json:"total_success"`

	// TotalErrors is the count of failed requests
	TotalErrors int64 `json:"total_errors"`

	// TotalIcons is the total number of icons delivered
	TotalIcons int64 `json:"total_icons"`

	// ByStyle contains per-style statistics
	ByStyle map[string]*StyleMetrics `json:"by_style"`
}

// StyleMetrics represents statistics for a single style preset.
type StyleMetrics struct {
	// Count is the total number of requests for this style
	Count int64 `json:"count"`

	// SuccessRate is the percentage of successful requests (0-100)
	SuccessRate float64 `json:"success_rate"`

	// AvgDuration is the average request wall time for this style
	AvgDuration time.Duration `json:"avg_duration"`
}

// SystemStatus represents the overall service health and status.
type SystemStatus struct {
	// Health indicates the service state: "running" or "error"
	Health string `json:"health"`

	// Version is the application version string
	Version string `json:"version"`

	// Uptime is the duration since the service started
	Uptime time.Duration `json:"uptime"`

	// LastCheck is the timestamp of the last status read
	LastCheck time.Time `json:"last_check"`
}

// Status constants for GenerationRecord
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Health constants for SystemStatus
const (
	HealthRunning = "running"
	HealthError   = "error"
)
