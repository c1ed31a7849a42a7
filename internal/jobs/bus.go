package jobs

import (
	"sync"
)

// subscriberBuffer bounds a live subscriber channel. Pipelines emit a
// few dozen events, so overflow only happens with a stuck consumer.
const subscriberBuffer = 256

// bus fans a job's events out to live subscribers and keeps the full
// per-job history for replay. Events for one job are always delivered
// in emission order.
type bus struct {
	mu      sync.Mutex
	streams map[string]*stream
}

type stream struct {
	history []Event
	subs    map[chan Event]struct{}
	closed  bool
}

func newBus() *bus {
	return &bus{streams: map[string]*stream{}}
}

func (b *bus) stream(jobID string) *stream {
	s, ok := b.streams[jobID]
	if !ok {
		s = &stream{subs: map[chan Event]struct{}{}}
		b.streams[jobID] = s
	}
	return s
}

// Publish appends the event to the job's history and forwards it to all
// live subscribers. A subscriber that cannot keep up is dropped rather
// than allowed to block the pipeline.
func (b *bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.stream(ev.JobID)
	if s.closed {
		return
	}
	s.history = append(s.history, ev)
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
			delete(s.subs, ch)
			close(ch)
		}
	}
}

// Subscribe returns a channel that first replays the job's buffered
// events with id greater than afterID, then carries live events. The
// channel is closed when the job's stream closes or unsubscribe is
// called.
func (b *bus) Subscribe(jobID string, afterID int64) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.stream(jobID)

	var replay []Event
	for _, ev := range s.history {
		if ev.ID > afterID {
			replay = append(replay, ev)
		}
	}

	ch := make(chan Event, len(replay)+subscriberBuffer)
	for _, ev := range replay {
		ch <- ev
	}

	if s.closed {
		close(ch)
		return ch, func() {}
	}

	s.subs[ch] = struct{}{}
	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// Close marks the job's stream finished and closes all subscriber
// channels. History stays available for later replay subscriptions.
func (b *bus) Close(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.stream(jobID)
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

// Seed installs persisted history for a job, used when serving replay
// for jobs that finished before the process started. The database is
// the source of truth: a longer persisted history replaces whatever the
// stream accumulated in memory, so events published after a stream was
// marked closed are still recovered on the next subscription.
func (b *bus) Seed(jobID string, history []Event, closed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.stream(jobID)
	if len(history) > len(s.history) {
		s.history = history
	}
	if closed {
		s.closed = true
	}
}
