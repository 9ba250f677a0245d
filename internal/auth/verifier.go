package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sync"
)

// HashPassword returns the hex-encoded SHA-256 digest of a password. The
// persisted configuration schema carries this exact format.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Verifier checks candidate passwords against the stored digest. The
// plaintext candidate is hashed immediately and never logged or retained.
type Verifier struct {
	mu   sync.RWMutex
	hash string
}

func NewVerifier(hexHash string) *Verifier {
	return &Verifier{hash: hexHash}
}

// Verify reports whether the candidate matches the stored digest. The digest
// comparison is constant time.
func (v *Verifier) Verify(candidate string) bool {
	digest := HashPassword(candidate)
	v.mu.RLock()
	stored := v.hash
	v.mu.RUnlock()
	return subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) == 1
}

// SetHash replaces the stored digest, e.g. after a password change.
func (v *Verifier) SetHash(hexHash string) {
	v.mu.Lock()
	v.hash = hexHash
	v.mu.Unlock()
}

// Hash returns the stored digest for persistence.
func (v *Verifier) Hash() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.hash
}
