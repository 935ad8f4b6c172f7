package apilog

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Checker-Finance/product-explorer/internal/metrics"
	"github.com/Checker-Finance/product-explorer/pkg/model"
)

// MaxEntries is the capacity of the request log.
const MaxEntries = 50

// Log is a capped, most-recent-first record of API calls.
type Log struct {
	mu       sync.RWMutex
	entries  []model.APILog
	capacity int
}

// New creates an empty log holding at most MaxEntries entries.
func New() *Log {
	return NewWithCapacity(MaxEntries)
}

// NewWithCapacity creates an empty log with a custom capacity (minimum 1).
func NewWithCapacity(capacity int) *Log {
	if capacity < 1 {
		capacity = 1
	}
	return &Log{
		entries:  make([]model.APILog, 0, capacity),
		capacity: capacity,
	}
}

// Append assigns the entry a fresh id, puts it at the front and drops
// whatever falls past the capacity. The stored entry is returned.
func (l *Log) Append(entry model.APILog) model.APILog {
	entry.ID = uuid.NewString()

	l.mu.Lock()
	next := make([]model.APILog, 0, l.capacity)
	next = append(next, entry)
	next = append(next, l.entries...)
	evicted := 0
	if len(next) > l.capacity {
		evicted = len(next) - l.capacity
		next = next[:l.capacity]
	}
	l.entries = next
	l.mu.Unlock()

	if evicted > 0 {
		metrics.IncLogEviction(evicted)
	}
	return entry
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []model.APILog {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.APILog, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make([]model.APILog, 0, l.capacity)
}
