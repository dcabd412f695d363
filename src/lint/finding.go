package lint

import (
	"fmt"
	"time"
)

// Status is the outcome of one rule.
type Status int

const (
	StatusOK Status = iota
	StatusFail
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFail:
		return "fail"
	case StatusErrored:
		return "errored"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText renders the status name in JSON reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Finding is one offending path reported by a rule.
type Finding struct {
	RuleID string
	Path   string
}

// Result is the outcome of running one rule.
type Result struct {
	RuleID      string
	Description string
	Status      Status
	Findings    []Finding
	// Err is set when Status is StatusErrored.
	Err     error
	Elapsed time.Duration
}

// Paths returns the finding paths in reported order.
func (r Result) Paths() []string {
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.Path
	}
	return out
}

// Results holds one Result per executed rule, in registration order.
type Results struct {
	RunID   string
	Started time.Time
	Elapsed time.Duration
	Rules   []Result
}

// Get returns the result for ruleID.
func (rs Results) Get(ruleID string) (Result, bool) {
	for _, r := range rs.Rules {
		if r.RuleID == ruleID {
			return r, true
		}
	}
	return Result{}, false
}

// Counts tallies results by status.
func (rs Results) Counts() (ok, fail, errored int) {
	for _, r := range rs.Rules {
		switch r.Status {
		case StatusOK:
			ok++
		case StatusFail:
			fail++
		case StatusErrored:
			errored++
		}
	}
	return ok, fail, errored
}

// Clean reports whether every rule passed.
func (rs Results) Clean() bool {
	_, fail, errored := rs.Counts()
	return fail == 0 && errored == 0
}
