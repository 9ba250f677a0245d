package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultPasswordHash is the SHA-256 digest of the factory password
// ("admin123"), used until the owner sets their own.
const DefaultPasswordHash = "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"

// File is the persisted configuration: the rule set plus the owner's
// password digest.
type File struct {
	Rules        []Rule
	PasswordHash string
}

// fileSchema is the on-disk layout. The field semantics are binding for any
// collaborator reading or writing the file: `blocked` carries the rule's
// enabled flag, times are "HH:MM" strings, and the map is keyed by path.
type fileSchema struct {
	BlockedApps  map[string]ruleSchema `json:"blocked_apps"`
	PasswordHash string                `json:"password_hash"`
}

type ruleSchema struct {
	Name           string `json:"name"`
	Path           string `json:"path"`
	TimeRestricted bool   `json:"time_restricted"`
	StartTime      string `json:"start_time,omitempty"`
	EndTime        string `json:"end_time,omitempty"`
	Blocked        bool   `json:"blocked"`
}

// Store reads and writes the configuration file. Saving happens from API
// handlers, never from the scheduler's tick, so blocking I/O here is fine.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the configuration file. A missing file is not an error: it
// yields an empty rule set and the factory password hash. A malformed file is
// reported so the caller can fall back to an empty rule set explicitly.
func (s *Store) Load() (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := File{PasswordHash: DefaultPasswordHash}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("read config %s: %w", s.path, err)
	}

	var schema fileSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return out, fmt.Errorf("parse config %s: %w", s.path, err)
	}

	if schema.PasswordHash != "" {
		out.PasswordHash = schema.PasswordHash
	}
	for path, entry := range schema.BlockedApps {
		rule := Rule{
			Path:           path,
			Name:           entry.Name,
			Enabled:        entry.Blocked,
			TimeRestricted: entry.TimeRestricted,
			StartTime:      entry.StartTime,
			EndTime:        entry.EndTime,
		}
		if entry.Path != "" {
			rule.Path = entry.Path
		}
		if err := rule.Validate(); err != nil {
			return File{PasswordHash: DefaultPasswordHash}, fmt.Errorf("config %s: rule %q: %w", s.path, path, err)
		}
		out.Rules = append(out.Rules, rule)
	}
	return out, nil
}

// Save writes the configuration atomically (temp file plus rename).
func (s *Store) Save(f File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schema := fileSchema{
		BlockedApps:  make(map[string]ruleSchema, len(f.Rules)),
		PasswordHash: f.PasswordHash,
	}
	for _, rule := range f.Rules {
		schema.BlockedApps[rule.Path] = ruleSchema{
			Name:           rule.Name,
			Path:           rule.Path,
			TimeRestricted: rule.TimeRestricted,
			StartTime:      rule.StartTime,
			EndTime:        rule.EndTime,
			Blocked:        rule.Enabled,
		}
	}

	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure config directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Path returns the configuration file location.
func (s *Store) Path() string {
	return s.path
}
