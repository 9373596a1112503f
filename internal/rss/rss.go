package rss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/sync/errgroup"

	"github.com/deusflow/newsdigest/internal/feeds"
	"github.com/deusflow/newsdigest/internal/logger"
	"github.com/deusflow/newsdigest/internal/metrics"
)

// DefaultTimeout bounds a single feed request.
const DefaultTimeout = 15 * time.Second

// Browser-like headers; some publishers block the Go default user agent.
const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	acceptHeader = "application/xml,text/xml,*/*;q=0.9"
)

// Fetcher downloads feeds and returns the article links they list.
type Fetcher struct {
	client  *http.Client
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewFetcher creates a fetcher with the given per-request timeout.
// A nil logger discards output; nil metrics falls back to metrics.Global.
func NewFetcher(timeout time.Duration, log *slog.Logger, m *metrics.Metrics) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if m == nil {
		m = metrics.Global
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		log:     logger.OrDiscard(log),
		metrics: m,
	}
}

// FetchAll fetches every source concurrently, one worker per source, and
// waits for all of them. Every source name is present in the result; a
// failed source maps to an empty list.
func (f *Fetcher) FetchAll(ctx context.Context, sources []feeds.Source) map[string][]string {
	results := make(map[string][]string, len(sources))
	if len(sources) == 0 {
		return results
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(len(sources))

	for _, src := range sources {
		g.Go(func() error {
			links := f.FetchSource(ctx, src)
			mu.Lock()
			results[src.Name] = links
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// FetchSource fetches one feed. Errors are logged and turned into an empty
// list so one broken feed never affects the others.
func (f *Fetcher) FetchSource(ctx context.Context, src feeds.Source) []string {
	links, err := f.fetch(ctx, src.FeedURL)
	if err != nil {
		f.metrics.IncrementFeedsFailed()
		f.log.Error("fetch feed",
			slog.String("source", src.Name),
			slog.String("url", src.FeedURL),
			slog.Any("err", err),
		)
		return []string{}
	}

	f.metrics.IncrementFeedsFetched()
	f.metrics.AddLinksFound(len(links))
	f.log.Info("found articles",
		slog.String("source", src.Name),
		slog.Int("count", len(links)),
	)
	return links
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	if kind := feedTypeName(body); kind != "rss" {
		f.log.Debug("document is not RSS, reading item links only",
			slog.String("url", url),
			slog.String("type", kind),
		)
	}
	return ParseLinks(body)
}

// ParseLinks returns the text of the first link child of every item
// element, in document order. Only unqualified item and link elements
// count, so Atom entries and namespaced links such as atom:link are
// ignored. Well-formed XML without that shape yields an empty list;
// malformed XML is an error.
func ParseLinks(body []byte) ([]string, error) {
	p := xpp.NewXMLPullParser(bytes.NewReader(body), false, nil)

	links := []string{}
	var stack []string
	taken := map[int]bool{}

	for {
		event, err := p.Next()
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch event {
		case xpp.EndDocument:
			return links, nil
		case xpp.StartTag:
			depth := len(stack)
			name := p.Name
			if p.Space != "" {
				name = p.Space + ":" + p.Name
			}
			if name == "link" && depth > 0 && stack[depth-1] == "item" && !taken[depth-1] {
				text, err := p.NextText()
				if err != nil {
					return nil, fmt.Errorf("read link: %w", err)
				}
				taken[depth-1] = true
				if text = strings.TrimSpace(text); text != "" {
					links = append(links, text)
				}
				continue
			}
			stack = append(stack, name)
		case xpp.EndTag:
			if len(stack) > 0 {
				delete(taken, len(stack)-1)
				stack = stack[:len(stack)-1]
			}
		}
	}
}

// feedTypeName names the format gofeed detects, for logging.
func feedTypeName(body []byte) string {
	switch gofeed.DetectFeedType(bytes.NewReader(body)) {
	case gofeed.FeedTypeRSS:
		return "rss"
	case gofeed.FeedTypeAtom:
		return "atom"
	case gofeed.FeedTypeJSON:
		return "json"
	default:
		return "unknown"
	}
}
