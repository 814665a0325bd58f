package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ResolveRequests    atomic.Int64
	ResolveErrors      atomic.Int64
	PageFetches        atomic.Int64
	PageFetchErrors    atomic.Int64
	Downloads          atomic.Int64
	DownloadErrors     atomic.Int64
	TranscribeRequests atomic.Int64
	TranscribeErrors   atomic.Int64
}

// IncrTranscribeRequests increments the transcription request counter.
func IncrTranscribeRequests() { metrics.TranscribeRequests.Add(1) }

// IncrTranscribeErrors increments the transcription error counter.
func IncrTranscribeErrors() { metrics.TranscribeErrors.Add(1) }

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"resolve_requests":    metrics.ResolveRequests.Load(),
		"resolve_errors":      metrics.ResolveErrors.Load(),
		"page_fetches":        metrics.PageFetches.Load(),
		"page_fetch_errors":   metrics.PageFetchErrors.Load(),
		"downloads":           metrics.Downloads.Load(),
		"download_errors":     metrics.DownloadErrors.Load(),
		"transcribe_requests": metrics.TranscribeRequests.Load(),
		"transcribe_errors":   metrics.TranscribeErrors.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"resolve_requests", "resolve_errors",
		"page_fetches", "page_fetch_errors",
		"downloads", "download_errors",
		"transcribe_requests", "transcribe_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
