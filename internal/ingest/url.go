package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type URLIngester struct {
	client *http.Client
}

func NewURLIngester() *URLIngester {
	return &URLIngester{
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (u *URLIngester) Ingest(ctx context.Context, source string) (*Article, error) {
	parsed, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", source, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", source, err)
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch URL %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not fetch URL %s: HTTP %d", source, resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxInputSize)
	article, err := readability.FromReader(limited, parsed)
	if err != nil {
		return nil, fmt.Errorf("could not extract article from %s: %w", source, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) == 0 {
		return nil, fmt.Errorf("no readable content extracted from %s", source)
	}

	return newArticle(article.Title, text, source), nil
}
