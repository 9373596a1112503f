package sentiment

import (
	"context"
	"fmt"

	"github.com/deusflow/newsdigest/internal/nlp"
)

// MaxInputRunes caps the summary text sent to the sentiment model.
const MaxInputRunes = 500

// Classifier labels a summary with the first candidate of a sentiment model.
type Classifier struct {
	model nlp.SentimentClassifier
}

// New wraps a sentiment model; the handle is shared read-only.
func New(model nlp.SentimentClassifier) *Classifier {
	return &Classifier{model: model}
}

// Classify returns the sentiment label of summary. Longer summaries are
// truncated, not rejected. Model errors are returned to the caller.
func (c *Classifier) Classify(ctx context.Context, summary string) (string, error) {
	candidates, err := c.model.ClassifySentiment(ctx, Truncate(summary, MaxInputRunes))
	if err != nil {
		return "", fmt.Errorf("classify sentiment: %w", err)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("classify sentiment: %w", nlp.ErrNoCandidates)
	}
	return candidates[0].Label, nil
}

// Truncate keeps the first n characters of s.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
