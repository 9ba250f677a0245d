package challenge

import (
	"errors"
	"sync"
)

// ErrNoSession is returned when a submission references a session that is
// not pending (already resolved, timed out, or never existed).
var ErrNoSession = errors.New("no pending challenge session")

// Broker is the rendezvous between the scheduler-side coordinator and the
// foreground UI surface. The coordinator publishes the session it is blocked
// on; the UI fetches it and submits decisions. Only one session is pending
// at a time because challenge sessions run on the scheduler's own thread.
type Broker struct {
	mu      sync.Mutex
	current *Session
}

func NewBroker() *Broker {
	return &Broker{}
}

// Publish makes a session visible to the UI surface.
func (b *Broker) Publish(s *Session) {
	b.mu.Lock()
	b.current = s
	b.mu.Unlock()
}

// Retire withdraws a resolved session.
func (b *Broker) Retire(s *Session) {
	b.mu.Lock()
	if b.current == s {
		b.current = nil
	}
	b.mu.Unlock()
}

// Pending returns the session currently awaiting a decision, if any.
func (b *Broker) Pending() (*Session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.current != nil
}

// Submit forwards one decision into the pending session and waits for the
// coordinator's verdict. deny ends the session with the process terminated;
// otherwise password is checked as a credential.
func (b *Broker) Submit(sessionID, password string, deny bool) (Verdict, error) {
	b.mu.Lock()
	session := b.current
	b.mu.Unlock()

	if session == nil || session.ID != sessionID {
		return Verdict{}, ErrNoSession
	}

	sub := submission{password: password, deny: deny, reply: make(chan Verdict, 1)}
	select {
	case session.submissions <- sub:
	case <-session.done:
		return Verdict{}, ErrNoSession
	}

	select {
	case v := <-sub.reply:
		return v, nil
	case <-session.done:
		// The session resolved while our submission was in flight.
		select {
		case v := <-sub.reply:
			return v, nil
		default:
			return Verdict{}, ErrNoSession
		}
	}
}
