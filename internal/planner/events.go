package planner

// Stage tags carried by pipeline events. Consumers key display logic on
// these, so they are part of the wire contract.
const (
	StageStarted   = "started"
	StagePlanning  = "planning"
	StagePlanned   = "planned"
	StageFallback  = "fallback"
	StageCompleted = "completed"
	StageError     = "error"
	StageCancelled = "cancelled"

	StageProfileReady    = "profile.ready"
	StagePlanCandidate   = "plan.candidate"
	StageReviewNutrition = "plan.review.nutrition"
	StageReviewPantry    = "plan.review.pantry"
	StagePlanFinal       = "plan.final"
)

// EventSink receives pipeline progress events as they are emitted. The
// workflow calls it from a single goroutine per run, in emission order.
type EventSink interface {
	Emit(stage, message string, payload any)
}

// CollectorSink buffers emitted events in order. Used by the synchronous
// planning endpoint and by tests.
type CollectorSink struct {
	Events []CollectedEvent
}

// CollectedEvent is one buffered pipeline event.
type CollectedEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Payload any    `json:"payload,omitempty"`
}

// Emit appends the event to the buffer.
func (c *CollectorSink) Emit(stage, message string, payload any) {
	c.Events = append(c.Events, CollectedEvent{Stage: stage, Message: message, Payload: payload})
}

type discardSink struct{}

func (discardSink) Emit(string, string, any) {}

// DiscardSink drops all events.
var DiscardSink EventSink = discardSink{}
