package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"taskgrid.org/internal/ids"
	"taskgrid.org/internal/obs"
)

// Log is an in-memory append-only audit recorder. Instances are injected so
// tests can run against isolated stores; there is no process-wide log.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	lastTS  time.Time
	now     func() time.Time
}

var _ Recorder = (*Log)(nil)

// LogOption configures a Log.
type LogOption func(*Log)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) LogOption {
	return func(l *Log) {
		if fn != nil {
			l.now = fn
		}
	}
}

// NewLog creates an empty recorder.
func NewLog(opts ...LogOption) *Log {
	l := &Log{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append stores the entry with a monotonically non-decreasing timestamp and
// mirrors it as a structured log line.
func (l *Log) Append(ctx context.Context, entry Entry) error {
	l.mu.Lock()
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	ts := l.now().UTC()
	if ts.Before(l.lastTS) {
		ts = l.lastTS
	}
	l.lastTS = ts
	entry.OccurredAt = ts
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	emit(entry)
	return nil
}

// All returns every entry in insertion order.
func (l *Log) All(ctx context.Context) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

// ByActor returns the entries recorded for one actor, insertion order preserved.
func (l *Log) ByActor(ctx context.Context, actorID string) ([]Entry, error) {
	return l.filter(func(e Entry) bool { return e.ActorID == actorID }), nil
}

// ByResource returns the entries touching one resource, insertion order preserved.
func (l *Log) ByResource(ctx context.Context, resourceID string) ([]Entry, error) {
	return l.filter(func(e Entry) bool { return e.ResourceID == resourceID }), nil
}

func (l *Log) filter(keep func(Entry) bool) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Entry
	for _, e := range l.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// emit writes the entry as a structured JSON audit line.
func emit(entry Entry) {
	line := map[string]any{
		"ts":          entry.OccurredAt.Format(time.RFC3339Nano),
		"type":        "audit",
		"action":      entry.Action,
		"actor_id":    entry.ActorID,
		"actor_email": entry.ActorEmail,
		"resource":    entry.Resource,
		"resource_id": entry.ResourceID,
	}
	if entry.Details != "" {
		line["details"] = entry.Details
	}
	data, err := json.Marshal(line)
	if err != nil {
		return
	}
	obs.Logger().Println(string(data))
}
