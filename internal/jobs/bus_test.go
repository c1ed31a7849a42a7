package jobs

import (
	"testing"

	"ecofood-backend/internal/planner"
)

func busEvent(id int64, stage string) Event {
	return Event{ID: id, JobID: "job-1", Stage: stage, Message: stage}
}

func drain(ch <-chan Event) []Event {
	var events []Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

// A subscriber can arrive after the job row turns terminal but before
// the runner publishes its last event, closing the stream early. The
// next subscription seeds from the database and must recover the event
// the closed stream dropped.
func TestSeedRecoversEventsDroppedAfterClose(t *testing.T) {
	b := newBus()

	ev1 := busEvent(1, planner.StageStarted)
	ev2 := busEvent(2, planner.StageCompleted)

	b.Publish(ev1)
	b.Seed("job-1", []Event{ev1}, true) // early subscriber saw a terminal job
	b.Publish(ev2)                      // dropped: the stream is closed

	// A later subscriber seeds with what the database has by now.
	b.Seed("job-1", []Event{ev1, ev2}, true)
	ch, unsubscribe := b.Subscribe("job-1", 0)
	defer unsubscribe()

	events := drain(ch)
	if len(events) != 2 {
		t.Fatalf("Replay returned %d event(s), want 2: %+v", len(events), events)
	}
	if events[1].Stage != planner.StageCompleted {
		t.Errorf("Last replayed stage = %q, want completed", events[1].Stage)
	}
}

func TestSeedKeepsLongerInMemoryHistory(t *testing.T) {
	b := newBus()

	b.Publish(busEvent(1, planner.StageStarted))
	b.Publish(busEvent(2, planner.StagePlanning))

	// A stale snapshot from a read racing the live publishes must not
	// shrink the history.
	b.Seed("job-1", []Event{busEvent(1, planner.StageStarted)}, false)

	ch, unsubscribe := b.Subscribe("job-1", 0)
	defer unsubscribe()
	b.Close("job-1")

	if events := drain(ch); len(events) != 2 {
		t.Fatalf("Replay returned %d event(s), want 2", len(events))
	}
}

func TestSubscribeAfterIDSkipsReplayedEvents(t *testing.T) {
	b := newBus()

	b.Publish(busEvent(1, planner.StageStarted))
	b.Publish(busEvent(2, planner.StagePlanning))
	b.Publish(busEvent(3, planner.StageCompleted))
	b.Close("job-1")

	ch, unsubscribe := b.Subscribe("job-1", 2)
	defer unsubscribe()

	events := drain(ch)
	if len(events) != 1 || events[0].ID != 3 {
		t.Fatalf("Resumed replay = %+v, want only event 3", events)
	}
}
