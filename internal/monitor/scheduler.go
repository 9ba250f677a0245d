package monitor

import (
	"sync"
	"time"

	"github.com/wardenlock/warden/internal/challenge"
	"github.com/wardenlock/warden/internal/grants"
	"github.com/wardenlock/warden/internal/logger"
	"github.com/wardenlock/warden/internal/metrics"
	"github.com/wardenlock/warden/internal/policy"
	"github.com/wardenlock/warden/internal/procctl"
	"github.com/wardenlock/warden/internal/rules"
)

const (
	// DefaultInterval between monitoring ticks.
	DefaultInterval = 2 * time.Second
	// DefaultBackoff after a failed process snapshot.
	DefaultBackoff = 5 * time.Second
)

// Handler resolves one detected violation. Satisfied by
// challenge.Coordinator.
type Handler interface {
	Handle(proc procctl.Process, appName string) challenge.Outcome
}

// Status is a read-only snapshot of the scheduler for the API surface.
type Status struct {
	Running  bool       `json:"running"`
	Ticks    uint64     `json:"ticks"`
	LastTick *time.Time `json:"last_tick,omitempty"`
	LastScanError string `json:"last_scan_error,omitempty"`
}

// Scheduler drives the periodic enforcement loop: snapshot running processes,
// evaluate each against policy, challenge violations, then sweep expired
// grants. It owns the background worker; challenge sessions execute on the
// same goroutine, so grant writes never cross threads.
type Scheduler struct {
	scanner   procctl.Scanner
	rules     *rules.Registry
	evaluator *policy.Evaluator
	handler   Handler
	grants    *grants.Store

	interval time.Duration
	backoff  time.Duration

	mu       sync.Mutex
	running  bool
	ticks    uint64
	lastTick time.Time
	lastErr  string

	stop chan struct{}
	done chan struct{}
}

func NewScheduler(
	scanner procctl.Scanner,
	registry *rules.Registry,
	evaluator *policy.Evaluator,
	handler Handler,
	grantStore *grants.Store,
	interval, backoff time.Duration,
) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &Scheduler{
		scanner:   scanner,
		rules:     registry,
		evaluator: evaluator,
		handler:   handler,
		grants:    grantStore,
		interval:  interval,
		backoff:   backoff,
	}
}

// Start launches the background worker. Starting a running scheduler is a
// no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
	logger.WithComponent("monitor").Info("monitoring started")
}

// Stop asks the worker to finish its current tick and waits for it. An
// in-flight challenge session resolves or times out naturally first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
	logger.WithComponent("monitor").Info("monitoring stopped")
}

// Status reports the scheduler's current state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{Running: s.running, Ticks: s.ticks, LastScanError: s.lastErr}
	if !s.lastTick.IsZero() {
		t := s.lastTick
		st.LastTick = &t
	}
	return st
}

func (s *Scheduler) run(stop, done chan struct{}) {
	defer close(done)
	log := logger.WithComponent("monitor")

	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := s.tick(); err != nil {
			// The scan primitive itself failed; back off instead of
			// busy-retrying.
			log.WithError(err).Error("process snapshot failed")
			metrics.IncScanFailure()
			s.setErr(err.Error())
			if !s.sleep(stop, s.backoff) {
				return
			}
			continue
		}
		s.setErr("")

		if !s.sleep(stop, s.interval) {
			return
		}
	}
}

// tick runs one enforcement pass.
func (s *Scheduler) tick() error {
	procs, err := s.scanner.List()
	if err != nil {
		return err
	}

	now := time.Now()
	for _, proc := range procs {
		if proc.Path == "" {
			continue
		}
		if s.evaluator.Evaluate(proc.Path, now) != policy.Blocked {
			continue
		}
		rule, ok := s.rules.Get(proc.Path)
		if !ok {
			continue
		}
		metrics.IncViolation()
		outcome := s.handler.Handle(proc, rule.Name)
		metrics.IncChallenge(outcome.String())
	}

	s.grants.Cleanup(time.Now())
	metrics.IncTick()

	s.mu.Lock()
	s.ticks++
	s.lastTick = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) setErr(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// sleep waits for d or until stop closes; it reports whether to keep running.
func (s *Scheduler) sleep(stop chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}
