package session

import (
	"sync"
	"time"

	"github.com/fieldscope/fieldscope/internal/model"
)

// EventLog is the append-only session log. Entries are timestamped at
// insertion and read back newest-first; it is unbounded within a session
// and bounded externally by report slicing.
type EventLog struct {
	mu      sync.Mutex
	entries []model.LogEntry
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Append records one entry, stamping it with the current time.
func (l *EventLog) Append(source model.LogSource, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, model.LogEntry{
		Source:    source,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// Entries returns a newest-first copy of the log.
func (l *EventLog) Entries() []model.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.LogEntry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Len returns the number of entries.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
