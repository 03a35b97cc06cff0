// Package ingest reads an article that inspires a new discussion.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
)

type SourceType string

const (
	SourceURL  SourceType = "url"
	SourceText SourceType = "text"

	// maxInputSize is the maximum allowed size for input content (25 MB).
	maxInputSize = 25 * 1024 * 1024

	// ExcerptWords bounds how much of an article reaches a prompt.
	ExcerptWords = 300
)

func (s SourceType) String() string {
	return string(s)
}

// Article is the readable part of a source, reduced to what a prompt needs.
type Article struct {
	Title     string
	Excerpt   string
	Source    string
	WordCount int
}

type Ingester interface {
	Ingest(ctx context.Context, source string) (*Article, error)
}

func DetectSource(input string) SourceType {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return SourceURL
	}
	return SourceText
}

func NewIngester(input string) Ingester {
	switch DetectSource(input) {
	case SourceURL:
		return NewURLIngester()
	default:
		return &TextIngester{}
	}
}

// Ingest picks the ingester for source and runs it.
func Ingest(ctx context.Context, source string) (*Article, error) {
	return NewIngester(source).Ingest(ctx, source)
}

func newArticle(title, text, source string) *Article {
	if title == "" {
		title = titleFromText(text, 80)
	}
	return &Article{
		Title:     title,
		Excerpt:   excerpt(text, ExcerptWords),
		Source:    source,
		WordCount: wordCount(text),
	}
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// excerpt keeps the first maxWords words, whitespace normalized.
func excerpt(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

func titleFromText(text string, maxLen int) string {
	line := strings.TrimSpace(text)
	if idx := strings.IndexByte(line, '\n'); idx > 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if len(line) > maxLen {
		line = line[:maxLen] + "..."
	}
	if line == "" {
		return "Untitled"
	}
	return line
}

func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() > maxInputSize {
		return fmt.Errorf("%s is too large (%d MB, max %d MB)", path, info.Size()/(1024*1024), maxInputSize/(1024*1024))
	}
	return nil
}
