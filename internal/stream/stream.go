package stream

import (
	"context"
	"sync"
	"time"
)

// TaskEvent describes one mutation of a task, fanned out to live subscribers.
type TaskEvent struct {
	Action         string    `json:"action"`
	TaskID         string    `json:"task_id"`
	Title          string    `json:"title"`
	OrganizationID string    `json:"organization_id"`
	ActorID        string    `json:"actor_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// Stream fan-outs task events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan TaskEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan TaskEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan TaskEvent {
	ch := make(chan TaskEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt TaskEvent) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
