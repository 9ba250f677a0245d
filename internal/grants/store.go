package grants

import (
	"sort"
	"sync"
	"time"
)

// DefaultTTL is how long a temporary exemption lasts unless configured
// otherwise.
const DefaultTTL = 5 * time.Minute

// Grant is a time-boxed exemption for one executable path. The path may
// outlive the rule that produced it.
type Grant struct {
	Path      string    `json:"path"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store holds active grants. Validity is an attribute of the entry, not of
// its presence: an expired grant still in the map is never treated as valid,
// it merely waits for the next Cleanup.
type Store struct {
	mu     sync.Mutex
	grants map[string]time.Time
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		grants: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Grant inserts or overwrites the exemption for a path.
func (s *Store) Grant(path string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[path] = s.now().Add(ttl)
}

// IsValid reports whether a path holds an unexpired grant.
func (s *Store) IsValid(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.grants[path]
	return ok && s.now().Before(expires)
}

// Cleanup removes every grant that has expired as of now. The scheduler calls
// this once per tick.
func (s *Store) Cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, expires := range s.grants {
		if !expires.After(now) {
			delete(s.grants, path)
		}
	}
}

// Revoke drops the grant for a path, if any.
func (s *Store) Revoke(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, path)
}

// Active returns the currently valid grants, soonest expiry first.
func (s *Store) Active() []Grant {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make([]Grant, 0, len(s.grants))
	for path, expires := range s.grants {
		if now.Before(expires) {
			out = append(out, Grant{Path: path, ExpiresAt: expires})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out
}
