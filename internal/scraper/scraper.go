package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/newsdigest/internal/logger"
	"github.com/deusflow/newsdigest/internal/metrics"
)

// DefaultTimeout bounds a single article request.
const DefaultTimeout = 15 * time.Second

const userAgent = "Mozilla/5.0"

var whitespace = regexp.MustCompile(`\s+`)

// Extractor downloads article pages and returns their paragraph text.
type Extractor struct {
	client  *http.Client
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewExtractor creates an extractor with the given request timeout.
func NewExtractor(timeout time.Duration, log *slog.Logger, m *metrics.Metrics) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if m == nil {
		m = metrics.Global
	}
	return &Extractor{
		client:  &http.Client{Timeout: timeout},
		log:     logger.OrDiscard(log),
		metrics: m,
	}
}

// ExtractText gets the article text at url. Any failure is logged and
// reported as an empty string; callers treat short text as "skip".
func (e *Extractor) ExtractText(ctx context.Context, url string) string {
	text, err := e.extract(ctx, url)
	if err != nil {
		e.metrics.IncrementExtractionFailures()
		e.log.Error("extract article text", slog.String("url", url), slog.Any("err", err))
		return ""
	}
	return text
}

func (e *Extractor) extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	return ParagraphText(doc), nil
}

// ParagraphText joins the text of every <p> in document order with single
// spaces, then collapses whitespace runs and trims the result.
func ParagraphText(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := s.Text(); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return CleanText(strings.Join(paragraphs, " "))
}

// CleanText collapses every whitespace run to one space and trims.
func CleanText(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
