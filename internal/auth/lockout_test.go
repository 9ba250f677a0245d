package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClockedLockout(start time.Time) (*Lockout, *time.Time) {
	now := start
	l := NewLockout(NewVerifier(HashPassword("secret")))
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLockout_CorrectPassword(t *testing.T) {
	l, _ := newClockedLockout(time.Now())
	assert.NoError(t, l.Attempt("secret"))
}

func TestLockout_ThreeFailuresLock(t *testing.T) {
	l, _ := newClockedLockout(time.Now())

	for i := 0; i < MaxAttempts; i++ {
		assert.ErrorIs(t, l.Attempt("wrong"), ErrInvalidPassword)
	}

	// Locked now: even the correct password is rejected without consuming
	// an attempt.
	err := l.Attempt("secret")
	var locked *LockedError
	require.True(t, errors.As(err, &locked))
	assert.Greater(t, locked.Remaining, time.Duration(0))
	assert.LessOrEqual(t, locked.Remaining, LockoutDuration)
}

func TestLockout_ExpiryResetsAttempts(t *testing.T) {
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	l, now := newClockedLockout(base)

	for i := 0; i < MaxAttempts; i++ {
		_ = l.Attempt("wrong")
	}
	require.Greater(t, l.Remaining(), time.Duration(0))

	*now = now.Add(LockoutDuration + time.Second)

	// Expired: the next check proceeds and succeeds, resetting attempts.
	assert.NoError(t, l.Attempt("secret"))
	assert.Equal(t, time.Duration(0), l.Remaining())

	// The counter really did reset: two failures do not lock.
	assert.ErrorIs(t, l.Attempt("wrong"), ErrInvalidPassword)
	assert.ErrorIs(t, l.Attempt("wrong"), ErrInvalidPassword)
	assert.NoError(t, l.Attempt("secret"))
}

func TestLockout_SuccessResetsCounter(t *testing.T) {
	l, _ := newClockedLockout(time.Now())

	_ = l.Attempt("wrong")
	_ = l.Attempt("wrong")
	require.NoError(t, l.Attempt("secret"))

	// Two more failures start from zero again.
	assert.ErrorIs(t, l.Attempt("wrong"), ErrInvalidPassword)
	assert.ErrorIs(t, l.Attempt("wrong"), ErrInvalidPassword)
	assert.NoError(t, l.Attempt("secret"))
}

func TestLockout_WrongPasswordAfterExpiry(t *testing.T) {
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	l, now := newClockedLockout(base)

	for i := 0; i < MaxAttempts; i++ {
		_ = l.Attempt("wrong")
	}
	*now = now.Add(LockoutDuration + time.Second)

	// Counter reset before the check; a single failure leaves it unlocked.
	assert.ErrorIs(t, l.Attempt("wrong"), ErrInvalidPassword)
	assert.Equal(t, time.Duration(0), l.Remaining())
}
