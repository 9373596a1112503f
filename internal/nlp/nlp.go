// Package nlp defines the model capabilities the pipeline depends on.
// Backends (Hugging Face, Gemini) implement them; tests use stubs.
package nlp

import (
	"context"
	"errors"
)

// ErrNoCandidates is returned when a model answers with an empty list.
var ErrNoCandidates = errors.New("model returned no candidates")

// SummarizeOptions bounds one summarization call. Lengths are in model
// tokens for Hugging Face and are passed as word targets to Gemini.
type SummarizeOptions struct {
	MaxLength int
	MinLength int
	DoSample  bool
}

// SummaryCandidate is one summary produced for an input.
type SummaryCandidate struct {
	SummaryText string `json:"summary_text"`
}

// SentimentCandidate is one label produced for an input.
type SentimentCandidate struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SummaryResult is the pipeline output for one article.
type SummaryResult struct {
	Summary        string `json:"summary"`
	SentimentLabel string `json:"sentiment"`
}

// Summarizer turns text into ordered summary candidates.
type Summarizer interface {
	Summarize(ctx context.Context, text string, opts SummarizeOptions) ([]SummaryCandidate, error)
}

// SentimentClassifier turns text into ordered sentiment candidates.
type SentimentClassifier interface {
	ClassifySentiment(ctx context.Context, text string) ([]SentimentCandidate, error)
}

// Backend bundles both capabilities behind one handle that is built once
// per process and shared read-only.
type Backend interface {
	Summarizer
	SentimentClassifier
	Close() error
}
