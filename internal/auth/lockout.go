package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// MaxAttempts is the number of consecutive failures before lockout.
	MaxAttempts = 3
	// LockoutDuration is how long authentication stays locked.
	LockoutDuration = 30 * time.Second
)

// ErrInvalidPassword is returned for a wrong password while unlocked.
var ErrInvalidPassword = errors.New("invalid password")

// LockedError rejects a check made during an active lockout. The attempt is
// not consumed; the caller learns how long to wait.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("locked out, retry in %ds", int(e.Remaining.Seconds()+0.999))
}

// Lockout throttles the application-level login. Three consecutive wrong
// passwords lock it for thirty seconds; a correct password or an expired
// lockout resets the counter.
type Lockout struct {
	mu          sync.Mutex
	verifier    *Verifier
	attempts    int
	lockedUntil time.Time
	now         func() time.Time
}

func NewLockout(v *Verifier) *Lockout {
	return &Lockout{verifier: v, now: time.Now}
}

// Attempt runs one credential check through the lockout state machine. It
// returns nil on success, ErrInvalidPassword on a wrong password, or a
// *LockedError while locked.
func (l *Lockout) Attempt(password string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.lockedUntil.IsZero() {
		if now.Before(l.lockedUntil) {
			return &LockedError{Remaining: l.lockedUntil.Sub(now)}
		}
		// Lockout expired: reset before the check proceeds.
		l.lockedUntil = time.Time{}
		l.attempts = 0
	}

	if l.verifier.Verify(password) {
		l.attempts = 0
		return nil
	}

	l.attempts++
	if l.attempts >= MaxAttempts {
		l.lockedUntil = now.Add(LockoutDuration)
	}
	return ErrInvalidPassword
}

// Remaining returns how long the current lockout lasts, zero when unlocked.
func (l *Lockout) Remaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lockedUntil.IsZero() {
		return 0
	}
	if d := l.lockedUntil.Sub(l.now()); d > 0 {
		return d
	}
	return 0
}
