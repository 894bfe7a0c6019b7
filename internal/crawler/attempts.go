package crawler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"regdocs/internal/logger"
)

// AttemptResult records the result of a single download attempt.
type AttemptResult struct {
	Timestamp  time.Time
	URL        string
	Error      string
	Duration   time.Duration
	StatusCode int
	Bytes      int
	Success    bool
}

// AttemptLog collects download attempts from concurrent workers.
type AttemptLog struct {
	mu      sync.Mutex
	results map[string][]AttemptResult
	order   []string
}

// NewAttemptLog creates an empty attempt log.
func NewAttemptLog() *AttemptLog {
	return &AttemptLog{
		results: make(map[string][]AttemptResult),
	}
}

// Record records the result of a fetch attempt.
func (al *AttemptLog) Record(url string, bytes int, err error, statusCode int, duration time.Duration) {
	al.mu.Lock()
	defer al.mu.Unlock()

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	if _, ok := al.results[url]; !ok {
		al.order = append(al.order, url)
	}

	al.results[url] = append(al.results[url], AttemptResult{
		URL:        url,
		Success:    err == nil,
		Error:      errMsg,
		Timestamp:  time.Now(),
		Duration:   duration,
		StatusCode: statusCode,
		Bytes:      bytes,
	})
}

// Results returns the attempts for a URL.
func (al *AttemptLog) Results(url string) []AttemptResult {
	al.mu.Lock()
	defer al.mu.Unlock()

	return append([]AttemptResult(nil), al.results[url]...)
}

// Failures returns the URLs whose every attempt failed, sorted.
func (al *AttemptLog) Failures() []string {
	al.mu.Lock()
	defer al.mu.Unlock()

	var failed []string

	for url, results := range al.results {
		if !anySuccess(results) {
			failed = append(failed, url)
		}
	}

	sort.Strings(failed)

	return failed
}

// Stats returns statistics about fetch attempts.
func (al *AttemptLog) Stats() AttemptStats {
	al.mu.Lock()
	defer al.mu.Unlock()

	stats := AttemptStats{
		TotalURLs: len(al.results),
	}

	for _, results := range al.results {
		stats.TotalAttempts += len(results)

		for _, result := range results {
			if result.Success {
				stats.SuccessfulAttempts++
				stats.TotalBytes += int64(result.Bytes)
			} else {
				stats.FailedAttempts++
			}
		}

		if anySuccess(results) {
			stats.SuccessfulURLs++
		} else {
			stats.FailedURLs++
		}
	}

	return stats
}

func anySuccess(results []AttemptResult) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}

	return false
}

// AttemptStats contains statistics about fetch attempts.
type AttemptStats struct {
	TotalURLs          int
	SuccessfulURLs     int
	FailedURLs         int
	TotalAttempts      int
	SuccessfulAttempts int
	FailedAttempts     int
	TotalBytes         int64
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"URLs: %d total, %d success, %d failed | Attempts: %d total, %d success, %d failed | %d bytes",
		s.TotalURLs,
		s.SuccessfulURLs,
		s.FailedURLs,
		s.TotalAttempts,
		s.SuccessfulAttempts,
		s.FailedAttempts,
		s.TotalBytes,
	)
}

// LogSummary logs every attempt in first-seen order, then the totals.
func (al *AttemptLog) LogSummary(l *logger.Logger) {
	al.mu.Lock()
	order := append([]string(nil), al.order...)
	al.mu.Unlock()

	l.Info("📊 Download Attempt Summary:")

	for i, url := range order {
		for _, result := range al.Results(url) {
			statusStr := "✅ Success"
			if !result.Success {
				statusStr = fmt.Sprintf("❌ Failed: %s", result.Error)
			}

			l.Info(fmt.Sprintf("%d. %s", i+1, url))
			l.Info(fmt.Sprintf("   %s (%.2fs)", statusStr, result.Duration.Seconds()))
		}
	}

	l.Info(fmt.Sprintf("Overall: %s", al.Stats()))
}
