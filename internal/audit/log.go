package audit

import (
	"sync"
	"time"
)

// Capacity bounds the in-memory log; the oldest entry is evicted first.
const Capacity = 100

// Outcome of one access decision.
type Outcome string

const (
	OutcomeGranted Outcome = "granted"
	OutcomeDenied  Outcome = "denied"
)

// Entry is an immutable record of one access decision.
type Entry struct {
	Time    time.Time `json:"time"`
	App     string    `json:"app"`
	Path    string    `json:"path"`
	Outcome Outcome   `json:"outcome"`
	Detail  string    `json:"detail"`
}

// Log is a bounded append-only ring of audit entries. It lives only in
// memory; restarts start empty.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	start   int
	size    int
}

func NewLog() *Log {
	return &Log{entries: make([]Entry, Capacity)}
}

// Append records an entry, evicting the oldest when the ring is full.
func (l *Log) Append(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := (l.start + l.size) % Capacity
	l.entries[idx] = e
	if l.size < Capacity {
		l.size++
	} else {
		l.start = (l.start + 1) % Capacity
	}
}

// List returns the entries, most recent first.
func (l *Log) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, l.size)
	for i := 0; i < l.size; i++ {
		out[l.size-1-i] = l.entries[(l.start+i)%Capacity]
	}
	return out
}

// Clear discards all entries.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.start, l.size = 0, 0
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}
