// Package huggingface implements the model capabilities on top of the
// Hugging Face Inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/deusflow/newsdigest/internal/logger"
	"github.com/deusflow/newsdigest/internal/nlp"
)

const (
	DefaultBaseURL        = "https://api-inference.huggingface.co/models"
	DefaultSummaryModel   = "sshleifer/distilbart-cnn-12-6"
	DefaultSentimentModel = "cardiffnlp/twitter-xlm-roberta-base-sentiment"
)

// Config selects the endpoint and models.
type Config struct {
	APIKey         string
	BaseURL        string
	SummaryModel   string
	SentimentModel string
	// Timeout of 0 leaves model calls unbounded.
	Timeout time.Duration
}

// Client talks to the hosted inference endpoints. It holds no per-call
// state and is safe to share.
type Client struct {
	apiKey         string
	baseURL        string
	summaryModel   string
	sentimentModel string
	httpClient     *http.Client
	log            *slog.Logger
}

var _ nlp.Backend = (*Client)(nil)

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    requestOptions `json:"options"`
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient validates cfg and builds a client. Missing credentials are an
// initialization error.
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("huggingface: API key is required")
	}

	c := &Client{
		apiKey:         cfg.APIKey,
		baseURL:        strings.TrimRight(orDefault(cfg.BaseURL, DefaultBaseURL), "/"),
		summaryModel:   orDefault(cfg.SummaryModel, DefaultSummaryModel),
		sentimentModel: orDefault(cfg.SentimentModel, DefaultSentimentModel),
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		log:            logger.OrDiscard(log),
	}

	c.log.Info("huggingface backend ready",
		slog.String("summary_model", c.summaryModel),
		slog.String("sentiment_model", c.sentimentModel),
	)
	return c, nil
}

// Close is a no-op; the HTTP client needs no teardown.
func (c *Client) Close() error { return nil }

// Summarize runs the summarization model with the given length bounds.
func (c *Client) Summarize(ctx context.Context, text string, opts nlp.SummarizeOptions) ([]nlp.SummaryCandidate, error) {
	req := inferenceRequest{
		Inputs: text,
		Parameters: map[string]any{
			"max_length": opts.MaxLength,
			"min_length": opts.MinLength,
			"do_sample":  opts.DoSample,
		},
		Options: requestOptions{WaitForModel: true},
	}

	raw, err := c.post(ctx, c.summaryModel, req)
	if err != nil {
		return nil, err
	}

	var candidates []nlp.SummaryCandidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, fmt.Errorf("huggingface: decode summary: %w", err)
	}
	return candidates, nil
}

// ClassifySentiment runs the sentiment model. Candidates are ordered by
// descending score so the first one is the predicted label.
func (c *Client) ClassifySentiment(ctx context.Context, text string) ([]nlp.SentimentCandidate, error) {
	req := inferenceRequest{
		Inputs:  text,
		Options: requestOptions{WaitForModel: true},
	}

	raw, err := c.post(ctx, c.sentimentModel, req)
	if err != nil {
		return nil, err
	}

	candidates, err := decodeSentiment(raw)
	if err != nil {
		return nil, fmt.Errorf("huggingface: decode sentiment: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}

// decodeSentiment accepts both the nested per-input form [[{...}]] that the
// API returns for a single string and the flat [{...}] form.
func decodeSentiment(raw []byte) ([]nlp.SentimentCandidate, error) {
	var nested [][]nlp.SentimentCandidate
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []nlp.SentimentCandidate
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func (c *Client) post(ctx context.Context, model string, payload inferenceRequest) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("huggingface: encode request: %w", err)
	}

	url := c.baseURL + "/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("huggingface: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface: %s: %w", model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("huggingface: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("huggingface: %s: status %d: %s", model, resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("huggingface: %s: status %d", model, resp.StatusCode)
	}

	c.log.Debug("inference call", slog.String("model", model), slog.Int("input_len", len(payload.Inputs)))
	return raw, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
