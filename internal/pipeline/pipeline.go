// Package pipeline runs one pass of fetch, extract, summarize and classify
// over the configured sources.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/deusflow/newsdigest/internal/feeds"
	"github.com/deusflow/newsdigest/internal/logger"
	"github.com/deusflow/newsdigest/internal/metrics"
	"github.com/deusflow/newsdigest/internal/nlp"
	"github.com/deusflow/newsdigest/internal/summarize"
)

var errEmptySummary = errors.New("empty summary")

// DefaultMaxArticles is the per-source cap used when Process gets a
// non-positive limit.
const DefaultMaxArticles = 5

// LinkFetcher returns the article links for every source, keyed by name.
type LinkFetcher interface {
	FetchAll(ctx context.Context, sources []feeds.Source) map[string][]string
}

// TextExtractor returns the article text at a URL, or "" on failure.
type TextExtractor interface {
	ExtractText(ctx context.Context, url string) string
}

// ArticleSummarizer turns article text into one summary.
type ArticleSummarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SentimentLabeler labels a summary.
type SentimentLabeler interface {
	Classify(ctx context.Context, summary string) (string, error)
}

// Pipeline wires the stages together. Articles are processed strictly one
// at a time, so the model handles behind Summarizer and Labeler are never
// called concurrently.
type Pipeline struct {
	Sources    []feeds.Source
	Fetcher    LinkFetcher
	Extractor  TextExtractor
	Summarizer ArticleSummarizer
	Labeler    SentimentLabeler
	Log        *slog.Logger
	Metrics    *metrics.Metrics
}

// Process fetches all feeds once, then for each source in registry order
// processes up to maxArticles links in feed order. Failed articles are
// logged and left out of the result.
func (p *Pipeline) Process(ctx context.Context, maxArticles int) []nlp.SummaryResult {
	log := logger.OrDiscard(p.Log)
	m := p.stats()
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}

	start := time.Now()
	defer func() {
		m.RecordRunDuration(time.Since(start))
		m.SetLastRun()
	}()

	links := p.Fetcher.FetchAll(ctx, p.Sources)

	var results []nlp.SummaryResult
	for _, src := range p.Sources {
		urls := links[src.Name]
		if len(urls) > maxArticles {
			urls = urls[:maxArticles]
		}

		for _, url := range urls {
			if err := ctx.Err(); err != nil {
				log.Warn("run canceled", slog.Int("results", len(results)), slog.Any("err", err))
				return results
			}

			m.IncrementArticlesAttempted()
			res, ok, err := p.processArticle(ctx, url)
			if err != nil {
				m.IncrementArticlesFailed()
				log.Error("error processing article",
					slog.String("source", src.Name),
					slog.String("url", url),
					slog.Any("err", err),
				)
				continue
			}
			if !ok {
				m.IncrementArticlesTooShort()
				log.Debug("article too short",
					slog.String("source", src.Name),
					slog.String("url", url),
				)
				continue
			}

			m.IncrementArticlesSummarized()
			results = append(results, res)
		}
	}

	log.Info("pipeline finished",
		slog.Int("sources", len(p.Sources)),
		slog.Int("results", len(results)),
		slog.Duration("took", time.Since(start)),
	)
	return results
}

// processArticle reports ok=false when the article is skipped without an
// error (too short to summarize).
func (p *Pipeline) processArticle(ctx context.Context, url string) (nlp.SummaryResult, bool, error) {
	text := p.Extractor.ExtractText(ctx, url)
	if text == "" || summarize.WordCount(text) < summarize.MinWords {
		return nlp.SummaryResult{}, false, nil
	}

	summary, err := p.Summarizer.Summarize(ctx, text)
	if err != nil {
		return nlp.SummaryResult{}, false, err
	}
	if strings.TrimSpace(summary) == "" {
		return nlp.SummaryResult{}, false, errEmptySummary
	}

	label, err := p.Labeler.Classify(ctx, summary)
	if err != nil {
		p.stats().IncrementSentimentFailures()
		return nlp.SummaryResult{}, false, err
	}

	return nlp.SummaryResult{Summary: summary, SentimentLabel: label}, true, nil
}

func (p *Pipeline) stats() *metrics.Metrics {
	if p.Metrics == nil {
		return metrics.Global
	}
	return p.Metrics
}
