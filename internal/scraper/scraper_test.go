package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsdigest/internal/metrics"
)

const articleHTML = `<!doctype html>
<html>
<head><title>Title</title></head>
<body>
  <div class="nav"><a href="/">Home</a></div>
  <article>
    <p>First   paragraph
    spans lines.</p>
    <p></p>
    <p>Second <b>bold</b>	paragraph.</p>
  </article>
  <footer><p>  Footer note </p></footer>
</body>
</html>`

func TestParagraphText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(articleHTML))
	require.NoError(t, err)

	require.Equal(t, "First paragraph spans lines. Second bold paragraph. Footer note", ParagraphText(doc))
}

func TestParagraphTextNoParagraphs(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><div>only div</div></body></html>`))
	require.NoError(t, err)
	require.Equal(t, "", ParagraphText(doc))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "tabs and newlines", input: "a\t\tb\n\nc", want: "a b c"},
		{name: "trim", input: "   padded   ", want: "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestExtractText(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	e := NewExtractor(time.Second, nil, metrics.New())
	text := e.ExtractText(context.Background(), srv.URL)

	require.Equal(t, "First paragraph spans lines. Second bold paragraph. Footer note", text)
	require.Equal(t, "Mozilla/5.0", gotUA)
}

func TestExtractTextFailuresReturnEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	m := metrics.New()
	e := NewExtractor(time.Second, nil, m)

	require.Equal(t, "", e.ExtractText(context.Background(), srv.URL))
	require.Equal(t, "", e.ExtractText(context.Background(), "http://127.0.0.1:1/article"))
	require.Equal(t, "", e.ExtractText(context.Background(), "://bad-url"))
	require.Equal(t, int64(3), m.ExtractionFailures)
}
