// Package metrics provides in-memory request statistics for the status
// endpoint. This file contains the thread-safe Store.
package metrics

import (
	"sync"
	"time"
)

// Store is in-memory storage for generation statistics. Recent requests
// are kept in a fixed-capacity circular buffer; aggregates are updated
// on every record.
//
// Thread Safety: all methods are safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	history []GenerationRecord
	cap     int
	head    int
	size    int

	totalRequests int64
	totalSuccess  int64
	totalErrors   int64
	totalIcons    int64
	byStyle       map[string]*styleStats

	startTime time.Time
	version   string
}

// styleStats holds per-style aggregation data.
type styleStats struct {
	count         int64
	successCount  int64
	totalDuration time.Duration
}

// StoreConfig configures the Store behavior.
type StoreConfig struct {
	// HistoryCapacity is the max number of records retained in history
	HistoryCapacity int
	// Version is the application version string
	Version string
}

// DefaultStoreConfig returns a default configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		HistoryCapacity: 100,
		Version:         "0.0.0",
	}
}

// NewStore creates a Store with the specified configuration. The
// startTime is used to calculate uptime.
func NewStore(config StoreConfig, startTime time.Time) *Store {
	capacity := config.HistoryCapacity
	if capacity < 1 {
		capacity = 100
	}

	return &Store{
		history:   make([]GenerationRecord, capacity),
		cap:       capacity,
		byStyle:   make(map[string]*styleStats),
		startTime: startTime,
		version:   config.Version,
	}
}

// Record logs a completed generation request.
func (s *Store) Record(rec GenerationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[s.head] = rec
	s.head = (s.head + 1) % s.cap
	if s.size < s.cap {
		s.size++
	}

	s.totalRequests++
	if rec.Status == StatusSuccess {
		s.totalSuccess++
	} else if rec.Status == StatusError {
		s.totalErrors++
	}
	s.totalIcons += int64(rec.IconCount)

	stats, ok := s.byStyle[rec.Style]
	if !ok {
		stats = &styleStats{}
		s.byStyle[rec.Style] = stats
	}
	stats.count++
	if rec.Status == StatusSuccess {
		stats.successCount++
	}
	stats.totalDuration += rec.Duration
}

// Metrics returns aggregated generation statistics.
func (s *Store) Metrics() GenerationMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := GenerationMetrics{
		TotalRequests: s.totalRequests,
		TotalSuccess:  s.totalSuccess,
		TotalErrors:   s.totalErrors,
		TotalIcons:    s.totalIcons,
		ByStyle:       make(map[string]*StyleMetrics),
	}

	for style, stats := range s.byStyle {
		var successRate float64
		if stats.count > 0 {
			successRate = float64(stats.successCount) / float64(stats.count) * 100
		}

		var avgDuration time.Duration
		if stats.count > 0 {
			avgDuration = stats.totalDuration / time.Duration(stats.count)
		}

		m.ByStyle[style] = &StyleMetrics{
			Count:       stats.count,
			SuccessRate: successRate,
			AvgDuration: avgDuration,
		}
	}

	return m
}

// Recent returns the N most recent generation records, newest last.
// If limit exceeds available records, all available are returned.
func (s *Store) Recent(limit int) []GenerationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || s.size == 0 {
		return []GenerationRecord{}
	}
	if limit > s.size {
		limit = s.size
	}

	result := make([]GenerationRecord, limit)
	for i := 0; i < limit; i++ {
		idx := (s.head - limit + i + s.cap) % s.cap
		result[i] = s.history[idx]
	}

	return result
}

// SystemStatus returns the overall service health. The service degrades
// to HealthError when the last several requests all failed.
func (s *Store) SystemStatus() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	health := HealthRunning
	if s.totalRequests >= 5 && s.consecutiveErrorsLocked() >= 5 {
		health = HealthError
	}

	return SystemStatus{
		Health:    health,
		Version:   s.version,
		Uptime:    time.Since(s.startTime),
		LastCheck: time.Now(),
	}
}

// consecutiveErrorsLocked counts the unbroken run of failures ending at
// the newest record. Caller must hold at least a read lock.
func (s *Store) consecutiveErrorsLocked() int {
	run := 0
	for i := 0; i < s.size; i++ {
		idx := (s.head - 1 - i + s.cap) % s.cap
		if s.history[idx].Status != StatusError {
			break
		}
		run++
	}
	return run
}
