package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/deusflow/newsdigest/internal/config"
	"github.com/deusflow/newsdigest/internal/feeds"
	"github.com/deusflow/newsdigest/internal/gemini"
	"github.com/deusflow/newsdigest/internal/huggingface"
	"github.com/deusflow/newsdigest/internal/logger"
	"github.com/deusflow/newsdigest/internal/metrics"
	"github.com/deusflow/newsdigest/internal/nlp"
	"github.com/deusflow/newsdigest/internal/pipeline"
	"github.com/deusflow/newsdigest/internal/rss"
	"github.com/deusflow/newsdigest/internal/scraper"
	"github.com/deusflow/newsdigest/internal/sentiment"
	"github.com/deusflow/newsdigest/internal/summarize"
)

// NewBackend builds the model backend selected by cfg.ModelBackend.
func NewBackend(ctx context.Context, cfg *config.Config, log *slog.Logger) (nlp.Backend, error) {
	switch cfg.ModelBackend {
	case config.BackendHuggingFace:
		return huggingface.NewClient(huggingface.Config{
			APIKey:         cfg.HuggingFaceAPIKey,
			BaseURL:        cfg.HuggingFaceAPIURL,
			SummaryModel:   cfg.SummaryModel,
			SentimentModel: cfg.SentimentModel,
			Timeout:        cfg.ModelTimeout,
		}, log)
	case config.BackendGemini:
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.ModelBackend)
	}
}

// Run performs one full pass and writes the results to out. Model
// initialization failure is returned; everything after that is logged and
// skipped per source or article.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger, out io.Writer) error {
	log = logger.OrDiscard(log)

	sources, err := feeds.Load(cfg.FeedsConfigPath)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("failed to load sources: %w", err)
	}

	backend, err := NewBackend(ctx, cfg, log)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("failed to initialize %s backend: %w", cfg.ModelBackend, err)
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil {
			log.Warn("failed to close model backend", slog.Any("err", cerr))
		}
	}()

	log.Info("starting run",
		slog.String("backend", cfg.ModelBackend),
		slog.Any("sources", feeds.Names(sources)),
		slog.Int("max_articles_per_source", cfg.MaxArticlesPerSource),
	)

	p := &pipeline.Pipeline{
		Sources:    sources,
		Fetcher:    rss.NewFetcher(cfg.RequestTimeout, log, metrics.Global),
		Extractor:  scraper.NewExtractor(cfg.RequestTimeout, log, metrics.Global),
		Summarizer: summarize.New(backend, log, metrics.Global),
		Labeler:    sentiment.New(backend),
		Log:        log,
		Metrics:    metrics.Global,
	}

	results := p.Process(ctx, cfg.MaxArticlesPerSource)
	if len(results) == 0 {
		log.Warn("no articles summarized")
	}

	return WriteResults(out, cfg.OutputFormat, results)
}

// WriteResults prints results as text blocks or as one JSON array.
func WriteResults(w io.Writer, format string, results []nlp.SummaryResult) error {
	if format == config.FormatJSON {
		if results == nil {
			results = []nlp.SummaryResult{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		return nil
	}

	for _, r := range results {
		if _, err := fmt.Fprintf(w, "\nSummary: %s\nSentiment: %s\n", r.Summary, r.SentimentLabel); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
	}
	return nil
}
