// Package summarize splits article text into fixed windows, summarizes each
// window with a model and joins the pieces into one summary.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deusflow/newsdigest/internal/logger"
	"github.com/deusflow/newsdigest/internal/metrics"
	"github.com/deusflow/newsdigest/internal/nlp"
)

// ErrNoSummary means no chunk of the article could be summarized.
var ErrNoSummary = errors.New("no chunk could be summarized")

// Summarizer produces article summaries from a model capability.
type Summarizer struct {
	model     nlp.Summarizer
	chunkSize int
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// New wraps model. The model handle is shared and never mutated.
func New(model nlp.Summarizer, log *slog.Logger, m *metrics.Metrics) *Summarizer {
	if m == nil {
		m = metrics.Global
	}
	return &Summarizer{
		model:     model,
		chunkSize: ChunkSize,
		log:       logger.OrDiscard(log),
		metrics:   m,
	}
}

// Summarize summarizes text chunk by chunk. A chunk that fails is logged
// and left out; the article fails only when every chunk does.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	chunks := Chunks(text, s.chunkSize)

	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		summary, err := s.summarizeChunk(ctx, chunk)
		if err != nil {
			s.metrics.IncrementChunksFailed()
			s.log.Error("summarization error",
				slog.Int("chunk", i),
				slog.Int("chunks", len(chunks)),
				slog.Any("err", err),
			)
			continue
		}
		s.metrics.IncrementChunksSummarized()
		summaries = append(summaries, summary)
	}

	if len(summaries) == 0 {
		return "", ErrNoSummary
	}
	return strings.Join(summaries, " "), nil
}

func (s *Summarizer) summarizeChunk(ctx context.Context, chunk string) (string, error) {
	maxLength, minLength := LengthBounds(WordCount(chunk))

	candidates, err := s.model.Summarize(ctx, chunk, nlp.SummarizeOptions{
		MaxLength: maxLength,
		MinLength: minLength,
		DoSample:  false,
	})
	if err != nil {
		return "", fmt.Errorf("summarize chunk: %w", err)
	}
	if len(candidates) == 0 {
		return "", nlp.ErrNoCandidates
	}
	return candidates[0].SummaryText, nil
}
