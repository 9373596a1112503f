package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	FeedsFailed        int64
	LinksFound         int64
	ArticlesAttempted  int64
	ArticlesTooShort   int64
	ArticlesFailed     int64
	ArticlesSummarized int64
	ChunksSummarized   int64
	ChunksFailed       int64
	SentimentFailures  int64
	ExtractionFailures int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

// Global is shared by the fetch workers, the sequential pipeline and the
// monitoring handlers.
var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) inc(field *int64, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*field += n
}

func (m *Metrics) IncrementFeedsFetched() { m.inc(&m.FeedsFetched, 1) }
func (m *Metrics) IncrementFeedsFailed() { m.inc(&m.FeedsFailed, 1) }
func (m *Metrics) AddLinksFound(n int) { m.inc(&m.LinksFound, int64(n)) }
func (m *Metrics) IncrementArticlesAttempted() { m.inc(&m.ArticlesAttempted, 1) }
func (m *Metrics) IncrementArticlesTooShort() { m.inc(&m.ArticlesTooShort, 1) }
func (m *Metrics) IncrementArticlesFailed() { m.inc(&m.ArticlesFailed, 1) }
func (m *Metrics) IncrementArticlesSummarized() { m.inc(&m.ArticlesSummarized, 1) }
func (m *Metrics) IncrementChunksSummarized() { m.inc(&m.ChunksSummarized, 1) }
func (m *Metrics) IncrementChunksFailed() { m.inc(&m.ChunksFailed, 1) }
func (m *Metrics) IncrementSentimentFailures() { m.inc(&m.SentimentFailures, 1) }
func (m *Metrics) IncrementExtractionFailures() { m.inc(&m.ExtractionFailures, 1) }

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
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
		"feeds_fetched":           m.FeedsFetched,
		"feeds_failed":            m.FeedsFailed,
		"links_found":             m.LinksFound,
		"articles_attempted":      m.ArticlesAttempted,
		"articles_too_short":      m.ArticlesTooShort,
		"articles_failed":         m.ArticlesFailed,
		"articles_summarized":     m.ArticlesSummarized,
		"chunks_summarized":       m.ChunksSummarized,
		"chunks_failed":           m.ChunksFailed,
		"sentiment_failures":      m.SentimentFailures,
		"extraction_failures":     m.ExtractionFailures,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"run_count":               m.RunCount,
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
