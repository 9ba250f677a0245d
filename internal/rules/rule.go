package rules

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	ErrEmptyPath   = errors.New("rule path must not be empty")
	ErrRelativePath = errors.New("rule path must be absolute")
)

// Rule governs one executable path. At most one rule exists per path; rules
// are authored explicitly, never synthesized from observed processes.
type Rule struct {
	Path           string `json:"path"`
	Name           string `json:"name"`
	Enabled        bool   `json:"blocked"`
	TimeRestricted bool   `json:"time_restricted"`
	StartTime      string `json:"start_time,omitempty"`
	EndTime        string `json:"end_time,omitempty"`
}

// Validate checks the rule is well-formed enough to be stored and evaluated.
func (r Rule) Validate() error {
	if r.Path == "" {
		return ErrEmptyPath
	}
	if !filepath.IsAbs(r.Path) {
		return ErrRelativePath
	}
	if r.TimeRestricted {
		if _, err := ParseClock(r.StartTime); err != nil {
			return fmt.Errorf("start_time: %w", err)
		}
		if _, err := ParseClock(r.EndTime); err != nil {
			return fmt.Errorf("end_time: %w", err)
		}
	}
	return nil
}

// Window returns the restriction window as minutes since midnight. The second
// return is false when the rule is not time restricted or carries times that
// no longer parse.
func (r Rule) Window() (start, end int, ok bool) {
	if !r.TimeRestricted {
		return 0, 0, false
	}
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return 0, 0, false
	}
	end, err = ParseClock(r.EndTime)
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// ParseClock parses a "HH:MM" time-of-day string into minutes since midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return h*60 + m, nil
}
