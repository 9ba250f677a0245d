package audit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLog_AppendAndList(t *testing.T) {
	l := NewLog()

	l.Append(Entry{App: "first", Outcome: OutcomeDenied, Detail: "timeout"})
	l.Append(Entry{App: "second", Outcome: OutcomeGranted})

	entries := l.List()
	assert.Len(t, entries, 2)
	// Most recent first
	assert.Equal(t, "second", entries[0].App)
	assert.Equal(t, "first", entries[1].App)
	assert.False(t, entries[0].Time.IsZero())
}

func TestLog_CapacityEvictsOldest(t *testing.T) {
	l := NewLog()

	for i := 0; i < Capacity+1; i++ {
		l.Append(Entry{App: fmt.Sprintf("app-%d", i), Outcome: OutcomeDenied})
	}

	entries := l.List()
	assert.Len(t, entries, Capacity)
	assert.Equal(t, fmt.Sprintf("app-%d", Capacity), entries[0].App)
	// app-0 was evicted
	assert.Equal(t, "app-1", entries[Capacity-1].App)
}

func TestLog_Clear(t *testing.T) {
	l := NewLog()
	l.Append(Entry{App: "x", Outcome: OutcomeGranted, Time: time.Now()})
	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.List())
}

func TestLog_WrapsAfterClear(t *testing.T) {
	l := NewLog()
	for i := 0; i < Capacity; i++ {
		l.Append(Entry{App: "old", Outcome: OutcomeDenied})
	}
	l.Clear()
	l.Append(Entry{App: "new", Outcome: OutcomeGranted})

	entries := l.List()
	assert.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].App)
}
