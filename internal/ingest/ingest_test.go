package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSource(t *testing.T) {
	assert.Equal(t, SourceURL, DetectSource("https://example.com/a"))
	assert.Equal(t, SourceURL, DetectSource("http://example.com/a"))
	assert.Equal(t, SourceText, DetectSource("notes.md"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b c", excerpt("  a\n b\tc ", 5))
	assert.Equal(t, "a b...", excerpt("a b c d", 2))
}

func TestTitleFromText(t *testing.T) {
	assert.Equal(t, "First line", titleFromText("\nFirst line\nsecond", 80))
	assert.Equal(t, "abc...", titleFromText("abcdef", 3))
	assert.Equal(t, "Untitled", titleFromText("   ", 80))
}

func TestTextIngester(t *testing.T) {
	path := filepath.Join(t.TempDir(), "article.md")
	require.NoError(t, os.WriteFile(path, []byte("Robots are coming\n\nThey want your job."), 0o644))

	a, err := Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Robots are coming", a.Title)
	assert.Equal(t, "article.md", a.Source)
	assert.Equal(t, 7, a.WordCount)
	assert.Equal(t, "Robots are coming They want your job.", a.Excerpt)
}

func TestTextIngesterErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	_, err := Ingest(context.Background(), empty)
	assert.ErrorContains(t, err, "is empty")

	_, err = Ingest(context.Background(), dir)
	assert.ErrorContains(t, err, "is a directory")

	_, err = Ingest(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorContains(t, err, "cannot access")
}

func TestURLIngester(t *testing.T) {
	body := "<p>" + strings.Repeat("Martian colonies are closer than you think. ", 40) + "</p>"
	page := `<html><head><title>Mars news</title></head><body><article><h1>Mars news</h1>` +
		body + body + `</article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	a, err := Ingest(context.Background(), srv.URL+"/mars")
	require.NoError(t, err)
	assert.Equal(t, "Mars news", a.Title)
	assert.Contains(t, a.Excerpt, "Martian colonies")
	assert.True(t, strings.HasSuffix(a.Excerpt, "..."))
	assert.Equal(t, srv.URL+"/mars", a.Source)
}

func TestURLIngesterHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Ingest(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "HTTP 404")
}
