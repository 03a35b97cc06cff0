package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TextIngester reads a local plain-text or markdown file.
type TextIngester struct{}

func (t *TextIngester) Ingest(ctx context.Context, source string) (*Article, error) {
	if err := validateFile(source); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("could not read file %s: %w", source, err)
	}

	text := strings.TrimSpace(string(data))
	if len(text) == 0 {
		return nil, fmt.Errorf("file %s is empty", source)
	}

	return newArticle("", text, filepath.Base(source)), nil
}
