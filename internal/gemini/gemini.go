package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/newsdigest/internal/logger"
	"github.com/deusflow/newsdigest/internal/nlp"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// generator is the part of *genai.GenerativeModel the backend uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client implements both model capabilities with prompts against one
// Gemini model. Both model handles are configured once with temperature 0
// so decoding is greedy, and are only read afterwards.
type Client struct {
	client     *genai.Client
	summarizer generator
	classifier generator
	log        *slog.Logger
}

var _ nlp.Backend = (*Client)(nil)

// NewClient connects to Gemini with an API key. An empty key is an error.
func NewClient(ctx context.Context, apiKey, modelName string, log *slog.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	summarizer := client.GenerativeModel(modelName)
	summarizer.SetTemperature(0)
	summarizer.SetCandidateCount(1)

	classifier := client.GenerativeModel(modelName)
	classifier.SetTemperature(0)
	classifier.SetCandidateCount(1)
	classifier.SetMaxOutputTokens(5)

	log = logger.OrDiscard(log)
	log.Info("gemini backend ready", slog.String("model", modelName))

	return &Client{
		client:     client,
		summarizer: summarizer,
		classifier: classifier,
		log:        log,
	}, nil
}

// Close releases the underlying genai client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Summarize asks for a summary whose length sits between the word bounds.
func (c *Client) Summarize(ctx context.Context, text string, opts nlp.SummarizeOptions) ([]nlp.SummaryCandidate, error) {
	resp, err := c.summarizer.GenerateContent(ctx, genai.Text(summaryPrompt(text, opts)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	texts := candidateTexts(resp)
	out := make([]nlp.SummaryCandidate, 0, len(texts))
	for _, t := range texts {
		out = append(out, nlp.SummaryCandidate{SummaryText: t})
	}
	return out, nil
}

// ClassifySentiment asks for a single positive/neutral/negative word.
// Gemini reports no class probability, so Score is always 0.
func (c *Client) ClassifySentiment(ctx context.Context, text string) ([]nlp.SentimentCandidate, error) {
	resp, err := c.classifier.GenerateContent(ctx, genai.Text(sentimentPrompt(text)))
	if err != nil {
		return nil, fmt.Errorf("failed to classify sentiment: %w", err)
	}

	texts := candidateTexts(resp)
	out := make([]nlp.SentimentCandidate, 0, len(texts))
	for _, t := range texts {
		out = append(out, nlp.SentimentCandidate{Label: normalizeLabel(t)})
	}
	return out, nil
}

func summaryPrompt(text string, opts nlp.SummarizeOptions) string {
	return fmt.Sprintf(`Summarize the following news text.
Use between %d and %d words. Reply with the summary only, no preamble.

TEXT:
%s`, opts.MinLength, opts.MaxLength, text)
}

func sentimentPrompt(text string) string {
	return `Classify the sentiment of the text as exactly one word:
positive, neutral or negative.

Text:
` + text
}

// candidateTexts flattens every candidate into its text, in order.
// Candidates without content are skipped.
func candidateTexts(resp *genai.GenerateContentResponse) []string {
	if resp == nil {
		return nil
	}

	var out []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func normalizeLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Trim(s, ".!\"'` \n")

	switch {
	case strings.HasPrefix(s, "positive"), s == "1", s == "+1":
		return "positive"
	case strings.HasPrefix(s, "negative"), s == "-1":
		return "negative"
	default:
		return "neutral"
	}
}
