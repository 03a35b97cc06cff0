package progress

import "time"

// Stage identifies which step of an interaction is active.
type Stage string

const (
	StageDiscover Stage = "discover"
	StageFetch    Stage = "fetch"
	StageGenerate Stage = "generate"
	StagePublish  Stage = "publish"
	StageComplete Stage = "complete"
)

// Event carries progress information from the orchestrator to the renderer.
type Event struct {
	Stage   Stage
	Message string
	Percent float64 // 0.0–1.0
	Elapsed time.Duration
	Error   error
	// DiscussionID is set on StageComplete with the discussion written to.
	DiscussionID int
	// Title is the discussion title, set on StageComplete.
	Title string
}

// Callback is the function signature for progress event handlers.
type Callback func(Event)

// NopCallback is a no-op progress callback for tests and silent mode.
func NopCallback(Event) {}

// NewEvent creates an Event with common fields populated.
func NewEvent(stage Stage, msg string, pct float64, start time.Time) Event {
	return Event{
		Stage:   stage,
		Message: msg,
		Percent: pct,
		Elapsed: time.Since(start),
	}
}
