package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsdigest/internal/feeds"
	"github.com/deusflow/newsdigest/internal/metrics"
	"github.com/deusflow/newsdigest/internal/nlp"
	"github.com/deusflow/newsdigest/internal/pipeline"
	"github.com/deusflow/newsdigest/internal/sentiment"
	"github.com/deusflow/newsdigest/internal/summarize"
)

type stubFetcher struct {
	links map[string][]string
	calls int
}

func (f *stubFetcher) FetchAll(_ context.Context, _ []feeds.Source) map[string][]string {
	f.calls++
	return f.links
}

type stubExtractor struct {
	texts     map[string]string
	requested []string
}

func (e *stubExtractor) ExtractText(_ context.Context, url string) string {
	e.requested = append(e.requested, url)
	return e.texts[url]
}

type stubModel struct {
	summarizeErr error
	sentimentErr error
	echo         bool
	sentInputs   []string
}

func (m *stubModel) Summarize(_ context.Context, text string, _ nlp.SummarizeOptions) ([]nlp.SummaryCandidate, error) {
	if m.summarizeErr != nil {
		return nil, m.summarizeErr
	}
	if m.echo {
		return []nlp.SummaryCandidate{{SummaryText: text}}, nil
	}
	return []nlp.SummaryCandidate{{SummaryText: fmt.Sprintf("summary of %d words", summarize.WordCount(text))}}, nil
}

func (m *stubModel) ClassifySentiment(_ context.Context, text string) ([]nlp.SentimentCandidate, error) {
	m.sentInputs = append(m.sentInputs, text)
	if m.sentimentErr != nil {
		return nil, m.sentimentErr
	}
	return []nlp.SentimentCandidate{{Label: "neutral", Score: 0.7}}, nil
}

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "word"
	}
	return strings.Join(w, " ")
}

func newPipeline(sources []feeds.Source, f *stubFetcher, e *stubExtractor, model *stubModel) *pipeline.Pipeline {
	m := metrics.New()
	return &pipeline.Pipeline{
		Sources:    sources,
		Fetcher:    f,
		Extractor:  e,
		Summarizer: summarize.New(model, nil, m),
		Labeler:    sentiment.New(model),
		Metrics:    m,
	}
}

func TestProcessRespectsPerSourceCap(t *testing.T) {
	sources := []feeds.Source{{Name: "World", FeedURL: "http://feed"}}
	f := &stubFetcher{links: map[string][]string{"World": {"http://a/1", "http://a/2"}}}
	e := &stubExtractor{texts: map[string]string{
		"http://a/1": words(60),
		"http://a/2": words(60),
	}}

	results := newPipeline(sources, f, e, &stubModel{}).Process(context.Background(), 1)

	require.Equal(t, 1, f.calls)
	require.Equal(t, []string{"http://a/1"}, e.requested)
	require.Equal(t, []nlp.SummaryResult{{Summary: "summary of 60 words", SentimentLabel: "neutral"}}, results)
}

func TestProcessWordThreshold(t *testing.T) {
	sources := []feeds.Source{{Name: "World"}}
	f := &stubFetcher{links: map[string][]string{"World": {"http://49", "http://50", "http://empty"}}}
	e := &stubExtractor{texts: map[string]string{
		"http://49": words(49),
		"http://50": words(50),
	}}

	p := newPipeline(sources, f, e, &stubModel{})
	results := p.Process(context.Background(), 5)

	require.Len(t, results, 1)
	require.Equal(t, "summary of 50 words", results[0].Summary)
	require.Equal(t, int64(2), p.Metrics.ArticlesTooShort)
}

func TestProcessFortyNineWordsYieldsNothing(t *testing.T) {
	sources := []feeds.Source{{Name: "World"}}
	f := &stubFetcher{links: map[string][]string{"World": {"http://short"}}}
	e := &stubExtractor{texts: map[string]string{"http://short": words(49)}}

	model := &stubModel{}
	results := newPipeline(sources, f, e, model).Process(context.Background(), 5)

	require.Empty(t, results)
	require.Empty(t, model.sentInputs)
}

func TestProcessSkipsArticleWhenAllChunksFail(t *testing.T) {
	sources := []feeds.Source{{Name: "World"}}
	f := &stubFetcher{links: map[string][]string{"World": {"http://a"}}}
	e := &stubExtractor{texts: map[string]string{"http://a": words(400)}}

	model := &stubModel{summarizeErr: errors.New("offline")}
	p := newPipeline(sources, f, e, model)
	results := p.Process(context.Background(), 5)

	require.Empty(t, results)
	require.Empty(t, model.sentInputs)
	require.Equal(t, int64(1), p.Metrics.ArticlesFailed)
}

func TestProcessSkipsArticleOnSentimentFailure(t *testing.T) {
	sources := []feeds.Source{{Name: "A"}, {Name: "B"}}
	f := &stubFetcher{links: map[string][]string{
		"A": {"http://a"},
		"B": {"http://b"},
	}}
	e := &stubExtractor{texts: map[string]string{
		"http://a": words(80),
		"http://b": words(90),
	}}

	model := &stubModel{sentimentErr: errors.New("classifier down")}
	p := newPipeline(sources, f, e, model)
	results := p.Process(context.Background(), 5)

	require.Empty(t, results)
	require.Len(t, model.sentInputs, 2, "a failing article must not stop the next one")
	require.Equal(t, int64(2), p.Metrics.SentimentFailures)
}

func TestProcessWalksSourcesInRegistryOrder(t *testing.T) {
	sources := []feeds.Source{{Name: "Tech"}, {Name: "Empty"}, {Name: "World"}}
	f := &stubFetcher{links: map[string][]string{
		"World": {"http://w/1", "http://w/2"},
		"Tech":  {"http://t/1"},
		"Empty": {},
	}}
	e := &stubExtractor{texts: map[string]string{
		"http://w/1": words(51),
		"http://w/2": words(52),
		"http://t/1": words(53),
	}}

	results := newPipeline(sources, f, e, &stubModel{}).Process(context.Background(), 0)

	require.Equal(t, []string{"http://t/1", "http://w/1", "http://w/2"}, e.requested)
	require.Len(t, results, 3)
	require.Equal(t, "summary of 53 words", results[0].Summary)
}

func TestProcessSentimentInputIsTruncated(t *testing.T) {
	sources := []feeds.Source{{Name: "World"}}
	f := &stubFetcher{links: map[string][]string{"World": {"http://long"}}}
	e := &stubExtractor{texts: map[string]string{"http://long": strings.Repeat("longword ", 556)}}

	model := &stubModel{echo: true}
	results := newPipeline(sources, f, e, model).Process(context.Background(), 5)

	require.Len(t, results, 1)
	require.Greater(t, len(results[0].Summary), sentiment.MaxInputRunes)
	require.Len(t, model.sentInputs, 1)
	require.Len(t, []rune(model.sentInputs[0]), sentiment.MaxInputRunes)
	require.True(t, strings.HasPrefix(results[0].Summary, model.sentInputs[0]))
}

func TestProcessStopsOnCanceledContext(t *testing.T) {
	sources := []feeds.Source{{Name: "World"}}
	f := &stubFetcher{links: map[string][]string{"World": {"http://a"}}}
	e := &stubExtractor{texts: map[string]string{"http://a": words(60)}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newPipeline(sources, f, e, &stubModel{}).Process(ctx, 5)
	require.Empty(t, results)
	require.Empty(t, e.requested)
}
