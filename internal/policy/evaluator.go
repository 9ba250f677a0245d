package policy

import (
	"time"

	"github.com/wardenlock/warden/internal/rules"
)

// Decision is the outcome of evaluating one executable path.
type Decision int

const (
	// NotGoverned means no rule exists for the path.
	NotGoverned Decision = iota
	// Allowed means a rule exists but does not block right now.
	Allowed
	// Blocked means the path must not be running.
	Blocked
)

func (d Decision) String() string {
	switch d {
	case NotGoverned:
		return "not_governed"
	case Allowed:
		return "allowed"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// RuleSource yields the rule governing a path, if any.
type RuleSource interface {
	Get(path string) (rules.Rule, bool)
}

// GrantSource reports whether a path holds a valid temporary exemption.
type GrantSource interface {
	IsValid(path string) bool
}

// Evaluator decides whether a running executable is currently blocked.
type Evaluator struct {
	rules  RuleSource
	grants GrantSource
}

func NewEvaluator(rules RuleSource, grants GrantSource) *Evaluator {
	return &Evaluator{rules: rules, grants: grants}
}

// Evaluate applies the policy for one path at the given time. The ordering
// matters: a valid temporary grant overrides the rule entirely, so a pass
// earned through a credential challenge is never re-challenged mid-TTL.
func (e *Evaluator) Evaluate(path string, now time.Time) Decision {
	rule, ok := e.rules.Get(path)
	if !ok {
		return NotGoverned
	}
	if e.grants.IsValid(path) {
		return Allowed
	}
	if !rule.Enabled {
		return Allowed
	}
	if start, end, ok := rule.Window(); ok {
		if !WithinWindow(MinuteOfDay(now), start, end) {
			return Allowed
		}
	}
	return Blocked
}
