package rules

import (
	"sort"
	"sync"
)

// Registry is the engine-owned set of rules, keyed by executable path. It is
// shared between the monitoring scheduler and the API surface, so every
// access goes through a single lock.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Get returns the rule for a path, if one exists.
func (r *Registry) Get(path string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[path]
	return rule, ok
}

// Snapshot returns a copy of all rules, ordered by display name.
func (r *Registry) Snapshot() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Upsert validates and inserts or replaces the rule for its path.
func (r *Registry) Upsert(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.Path] = rule
	return nil
}

// Remove deletes the rule for a path and reports whether it existed.
func (r *Registry) Remove(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rules[path]
	delete(r.rules, path)
	return ok
}

// Replace swaps the entire rule set, dropping entries that fail validation.
// It returns the number of rules kept.
func (r *Registry) Replace(rules []Rule) int {
	next := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		if rule.Validate() == nil {
			next[rule.Path] = rule
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = next
	return len(next)
}

// Len returns the number of rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}
