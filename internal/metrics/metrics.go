// Package metrics keeps in-process counters for the two request paths.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ListRequests     int64
	DetailRequests   int64
	ArticlesReturned int64
	UpstreamFailures int64
	ExtractFailures  int64

	// Timings
	LastFetchTime    time.Duration
	TotalFetchTime   time.Duration
	FetchCount       int64
	AverageFetchTime time.Duration

	// Status
	LastRequestTime time.Time
	LastErrorTime   time.Time
	LastError       string
	IsHealthy       bool
}

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) IncrementListRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListRequests++
	m.LastRequestTime = time.Now()
}

func (m *Metrics) IncrementDetailRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DetailRequests++
	m.LastRequestTime = time.Now()
}

func (m *Metrics) AddArticlesReturned(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesReturned += int64(n)
}

func (m *Metrics) IncrementUpstreamFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpstreamFailures++
}

func (m *Metrics) IncrementExtractFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractFailures++
}

func (m *Metrics) RecordFetchTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastFetchTime = duration
	m.TotalFetchTime += duration
	m.FetchCount++
	m.AverageFetchTime = m.TotalFetchTime / time.Duration(m.FetchCount)
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"list_requests":         m.ListRequests,
		"detail_requests":       m.DetailRequests,
		"articles_returned":     m.ArticlesReturned,
		"upstream_failures":     m.UpstreamFailures,
		"extract_failures":      m.ExtractFailures,
		"last_fetch_time_ms":    m.LastFetchTime.Milliseconds(),
		"average_fetch_time_ms": m.AverageFetchTime.Milliseconds(),
		"last_request_time":     m.LastRequestTime.Format(time.RFC3339),
		"last_error_time":       m.LastErrorTime.Format(time.RFC3339),
		"last_error":            m.LastError,
		"is_healthy":            m.IsHealthy,
	}
}
