package metrics

import (
	"testing"
	"time"
)

func TestCounters(t *testing.T) {
	m := New()
	m.IncrementListRequests()
	m.IncrementListRequests()
	m.IncrementDetailRequests()
	m.AddArticlesReturned(10)
	m.IncrementUpstreamFailures()
	m.IncrementExtractFailures()

	stats := m.GetStats()
	if stats["list_requests"] != int64(2) {
		t.Errorf("list_requests = %v", stats["list_requests"])
	}
	if stats["detail_requests"] != int64(1) {
		t.Errorf("detail_requests = %v", stats["detail_requests"])
	}
	if stats["articles_returned"] != int64(10) {
		t.Errorf("articles_returned = %v", stats["articles_returned"])
	}
	if stats["upstream_failures"] != int64(1) || stats["extract_failures"] != int64(1) {
		t.Errorf("failure counters = %v / %v", stats["upstream_failures"], stats["extract_failures"])
	}
}

func TestHealthTransitions(t *testing.T) {
	m := New()
	if !m.Healthy() {
		t.Fatal("fresh metrics should be healthy")
	}

	m.SetError("upstream down")
	if m.Healthy() {
		t.Error("SetError should mark unhealthy")
	}
	if m.GetStats()["last_error"] != "upstream down" {
		t.Errorf("last_error = %v", m.GetStats()["last_error"])
	}

	m.RecordFetchTime(100 * time.Millisecond)
	if !m.Healthy() {
		t.Error("successful fetch should restore health")
	}
}

func TestAverageFetchTime(t *testing.T) {
	m := New()
	m.RecordFetchTime(100 * time.Millisecond)
	m.RecordFetchTime(300 * time.Millisecond)

	if m.AverageFetchTime != 200*time.Millisecond {
		t.Errorf("AverageFetchTime = %v", m.AverageFetchTime)
	}
	if m.LastFetchTime != 300*time.Millisecond {
		t.Errorf("LastFetchTime = %v", m.LastFetchTime)
	}
}
