//go:build lambda.norpc

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.opentelemetry.io/otel"

	"github.com/fbmac/flarumbot/internal/observability"
	"github.com/fbmac/flarumbot/internal/pipeline"
)

var log *slog.Logger

// result is what the function returns to the scheduler.
type result struct {
	Kind         string `json:"kind"`
	DiscussionID int    `json:"discussion_id"`
	PostID       int    `json:"post_id,omitempty"`
	Title        string `json:"title"`
}

func init() {
	log = observability.NewLogger(os.Stdout, true)
	slog.SetDefault(log)
}

func main() {
	if _, err := observability.InitTracer(context.Background(), "flarumbot-lambda", "1.0.0"); err != nil {
		log.Warn("Failed to init tracer, continuing without tracing", "error", err)
	}

	lambda.Start(func(ctx context.Context, event events.CloudWatchEvent) (result, error) {
		defer flushSpans()
		return handler(ctx, event)
	})
}

// flushSpans exports buffered spans before the execution environment is
// frozen between invocations.
func flushSpans() {
	f, ok := otel.GetTracerProvider().(interface{ ForceFlush(context.Context) error })
	if !ok {
		return
	}
	if err := f.ForceFlush(context.Background()); err != nil {
		log.Error("Span flush error", "error", err)
	}
}

func handler(ctx context.Context, event events.CloudWatchEvent) (result, error) {
	ctx = observability.WithRunID(ctx, observability.NewRunID())

	var trigger pipeline.Trigger
	if len(event.Detail) > 0 && string(event.Detail) != "null" {
		if err := json.Unmarshal(event.Detail, &trigger); err != nil {
			log.ErrorContext(ctx, "Invalid event detail", "error", err, "event_id", event.ID)
			return result{}, fmt.Errorf("decode event detail: %w", err)
		}
	}
	log.InfoContext(ctx, "Invocation starting", "event_id", event.ID, "source", event.Source,
		"user_id", trigger.UserID, "discussion_id", trigger.DiscussionID, "create", trigger.CreateNew)

	opts := trigger.Options()
	opts.Logger = log
	out, err := pipeline.Run(ctx, opts)
	if err != nil {
		log.ErrorContext(ctx, "Invocation failed", "error", err)
		return result{}, err
	}

	log.InfoContext(ctx, "Invocation complete", "kind", out.Kind, "discussion_id", out.DiscussionID)
	return result{
		Kind:         string(out.Kind),
		DiscussionID: out.DiscussionID,
		PostID:       out.PostID,
		Title:        out.Title,
	}, nil
}
