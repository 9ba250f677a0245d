package challenge

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wardenlock/warden/internal/audit"
	"github.com/wardenlock/warden/internal/auth"
	"github.com/wardenlock/warden/internal/grants"
	"github.com/wardenlock/warden/internal/logger"
	"github.com/wardenlock/warden/internal/procctl"
)

// DefaultDecisionWait bounds how long a suspended process waits for a
// credential decision before the session defaults to denied.
const DefaultDecisionWait = 30 * time.Second

// maxFailures is the per-session limit of wrong passwords. The counter is
// scoped to the session: a fresh process launch starts a new session with a
// fresh count.
const maxFailures = 3

const resumeRetries = 3

// Outcome summarizes a completed session for the scheduler.
type Outcome int

const (
	// OutcomeSkipped: the violation was dropped (suspension failed).
	OutcomeSkipped Outcome = iota
	// OutcomeGranted: the process resumed under a temporary grant.
	OutcomeGranted
	// OutcomeTerminated: the process was killed.
	OutcomeTerminated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGranted:
		return "granted"
	case OutcomeTerminated:
		return "terminated"
	default:
		return "skipped"
	}
}

// Prompter is the hand-off point to the foreground UI collaborator. Publish
// makes a session visible; Retire withdraws it once resolved. Submissions
// travel back over the session's channel, so neither side polls shared state.
type Prompter interface {
	Publish(s *Session)
	Retire(s *Session)
}

// Notifier receives engine events for external delivery. Implementations
// must not block the calling goroutine for long.
type Notifier interface {
	Notify(event, title, message string)
}

// Coordinator runs the challenge state machine for one detected violation:
// Running → Suspended → AwaitingCredential → Resumed or Terminated.
type Coordinator struct {
	verifier *auth.Verifier
	grants   *grants.Store
	log      *audit.Log
	procs    procctl.Controller
	prompter Prompter
	notifier Notifier

	grantTTL     time.Duration
	decisionWait time.Duration
}

func NewCoordinator(
	verifier *auth.Verifier,
	grantStore *grants.Store,
	auditLog *audit.Log,
	procs procctl.Controller,
	prompter Prompter,
	notifier Notifier,
	grantTTL, decisionWait time.Duration,
) *Coordinator {
	if grantTTL <= 0 {
		grantTTL = grants.DefaultTTL
	}
	if decisionWait <= 0 {
		decisionWait = DefaultDecisionWait
	}
	return &Coordinator{
		verifier:     verifier,
		grants:       grantStore,
		log:          auditLog,
		procs:        procs,
		prompter:     prompter,
		notifier:     notifier,
		grantTTL:     grantTTL,
		decisionWait: decisionWait,
	}
}

// Handle runs one challenge session to completion on the caller's goroutine.
// The scheduler's tick blocks here until the session resolves or times out.
func (c *Coordinator) Handle(proc procctl.Process, appName string) Outcome {
	log := logger.WithFields(logrus.Fields{
		"component": "challenge",
		"app":       appName,
		"path":      proc.Path,
		"pid":       proc.PID,
	})

	if err := c.procs.Suspend(proc.PID); err != nil {
		// The process vanished or we lack access. Drop the violation for
		// this tick; a later tick will see it again if it is still running.
		log.WithError(err).Debug("suspend failed, dropping violation")
		return OutcomeSkipped
	}

	session := newSession(appName, proc.Path, proc.PID)
	c.prompter.Publish(session)
	defer func() {
		c.prompter.Retire(session)
		close(session.done)
	}()

	log.WithField("session", session.ID).Info("process suspended, awaiting credential")

	timer := time.NewTimer(c.decisionWait)
	defer timer.Stop()

	failures := 0
	for {
		select {
		case sub := <-session.submissions:
			if sub.deny {
				sub.reply <- Verdict{Result: ResultTerminated}
				c.terminate(proc, appName, "user denied", log)
				return OutcomeTerminated
			}
			if c.verifier.Verify(sub.password) {
				c.grants.Grant(proc.Path, c.grantTTL)
				c.resume(proc, log)
				c.log.Append(audit.Entry{
					App:     appName,
					Path:    proc.Path,
					Outcome: audit.OutcomeGranted,
					Detail:  fmt.Sprintf("temporary access for %s", c.grantTTL),
				})
				c.notify("challenge", "Temporary access granted",
					fmt.Sprintf("%s may run for %s", appName, c.grantTTL))
				sub.reply <- Verdict{Result: ResultGranted}
				log.Info("credential accepted, process resumed")
				return OutcomeGranted
			}

			failures++
			c.log.Append(audit.Entry{
				App:     appName,
				Path:    proc.Path,
				Outcome: audit.OutcomeDenied,
				Detail:  fmt.Sprintf("wrong password (attempt %d of %d)", failures, maxFailures),
			})
			if failures >= maxFailures {
				sub.reply <- Verdict{Result: ResultTerminated}
				c.terminate(proc, appName, "attempt limit", log)
				return OutcomeTerminated
			}
			sub.reply <- Verdict{Result: ResultWrongPassword, AttemptsLeft: maxFailures - failures}
			log.WithField("failures", failures).Info("wrong password")

		case <-timer.C:
			c.terminate(proc, appName, "timeout", log)
			return OutcomeTerminated
		}
	}
}

// resume continues the suspended process. A process that exited already is a
// no-op; a genuine resume failure is retried and surfaced rather than
// leaving the process suspended forever.
func (c *Coordinator) resume(proc procctl.Process, log *logrus.Entry) {
	var err error
	for i := 0; i < resumeRetries; i++ {
		if err = c.procs.Resume(proc.PID); err == nil {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	log.WithError(err).Error("failed to resume suspended process")
	c.notify("monitor", "Resume failed",
		fmt.Sprintf("pid %d (%s) could not be resumed: %v", proc.PID, proc.Path, err))
}

func (c *Coordinator) terminate(proc procctl.Process, appName, reason string, log *logrus.Entry) {
	if err := c.procs.Terminate(proc.PID); err != nil {
		log.WithError(err).Warn("terminate failed")
	}
	c.log.Append(audit.Entry{
		App:     appName,
		Path:    proc.Path,
		Outcome: audit.OutcomeDenied,
		Detail:  reason,
	})
	c.notify("challenge", "Application blocked",
		fmt.Sprintf("%s was terminated (%s)", appName, reason))
	log.WithField("reason", reason).Info("process terminated")
}

func (c *Coordinator) notify(event, title, message string) {
	if c.notifier != nil {
		c.notifier.Notify(event, title, message)
	}
}
