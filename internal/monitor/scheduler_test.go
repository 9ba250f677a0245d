package monitor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenlock/warden/internal/challenge"
	"github.com/wardenlock/warden/internal/grants"
	"github.com/wardenlock/warden/internal/policy"
	"github.com/wardenlock/warden/internal/procctl"
	"github.com/wardenlock/warden/internal/rules"
)

type fakeScanner struct {
	mu    sync.Mutex
	procs []procctl.Process
	err   error
	calls int
}

func (f *fakeScanner) List() ([]procctl.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]procctl.Process, len(f.procs))
	copy(out, f.procs)
	return out, nil
}

func (f *fakeScanner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingHandler struct {
	mu      sync.Mutex
	handled []procctl.Process
	outcome challenge.Outcome
}

func (r *recordingHandler) Handle(proc procctl.Process, appName string) challenge.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handled = append(r.handled, proc)
	return r.outcome
}

func (r *recordingHandler) handledPaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, len(r.handled))
	for i, p := range r.handled {
		paths[i] = p.Path
	}
	return paths
}

func newTestScheduler(t *testing.T, scanner procctl.Scanner, handler Handler, ruleSet ...rules.Rule) (*Scheduler, *grants.Store) {
	t.Helper()
	registry := rules.NewRegistry()
	for _, r := range ruleSet {
		require.NoError(t, registry.Upsert(r))
	}
	grantStore := grants.NewStore()
	evaluator := policy.NewEvaluator(registry, grantStore)
	s := NewScheduler(scanner, registry, evaluator, handler, grantStore,
		10*time.Millisecond, 10*time.Millisecond)
	return s, grantStore
}

func TestScheduler_ChallengesBlockedProcesses(t *testing.T) {
	scanner := &fakeScanner{procs: []procctl.Process{
		{PID: 1, Path: "/usr/bin/game"},
		{PID: 2, Path: "/usr/bin/editor"},
		{PID: 3, Path: ""},
	}}
	handler := &recordingHandler{outcome: challenge.OutcomeTerminated}

	s, _ := newTestScheduler(t, scanner, handler,
		rules.Rule{Path: "/usr/bin/game", Name: "Game", Enabled: true})

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return len(handler.handledPaths()) >= 1
	}, time.Second, 5*time.Millisecond)

	for _, p := range handler.handledPaths() {
		assert.Equal(t, "/usr/bin/game", p)
	}
}

func TestScheduler_GrantedProcessNotRechallenged(t *testing.T) {
	scanner := &fakeScanner{procs: []procctl.Process{{PID: 1, Path: "/usr/bin/game"}}}
	handler := &recordingHandler{outcome: challenge.OutcomeGranted}

	s, grantStore := newTestScheduler(t, scanner, handler,
		rules.Rule{Path: "/usr/bin/game", Name: "Game", Enabled: true})
	grantStore.Grant("/usr/bin/game", time.Hour)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return s.Status().Ticks >= 3 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, handler.handledPaths())
}

func TestScheduler_CleanupRunsEachTick(t *testing.T) {
	scanner := &fakeScanner{}
	handler := &recordingHandler{}

	s, grantStore := newTestScheduler(t, scanner, handler)
	grantStore.Grant("/usr/bin/game", time.Millisecond)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return s.Status().Ticks >= 2 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, grantStore.Active())
}

func TestScheduler_ScanFailureBacksOffAndRecovers(t *testing.T) {
	scanner := &fakeScanner{err: errors.New("proc unavailable")}
	handler := &recordingHandler{}

	s, _ := newTestScheduler(t, scanner, handler)
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return scanner.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(0), s.Status().Ticks)
	assert.NotEmpty(t, s.Status().LastScanError)

	// Scanner recovers; ticks resume and the error clears.
	scanner.mu.Lock()
	scanner.err = nil
	scanner.mu.Unlock()

	require.Eventually(t, func() bool { return s.Status().Ticks >= 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, s.Status().LastScanError)
}

func TestScheduler_StopIsCooperative(t *testing.T) {
	scanner := &fakeScanner{}
	s, _ := newTestScheduler(t, scanner, &recordingHandler{})

	s.Start()
	require.Eventually(t, func() bool { return s.Status().Ticks >= 1 }, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.Status().Running)

	ticksAfterStop := s.Status().Ticks
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, ticksAfterStop, s.Status().Ticks)

	// Stop twice is safe; Start again resumes.
	s.Stop()
	s.Start()
	require.Eventually(t, func() bool { return s.Status().Ticks > ticksAfterStop }, time.Second, 5*time.Millisecond)
	s.Stop()
}
