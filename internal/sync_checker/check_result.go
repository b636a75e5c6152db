package sync_checker

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gitwebsync/internal/differ"
)

// State is a monitoring plugin state; its value is the process exit code.
type State int

const (
	StateOK       State = 0
	StateWarning  State = 1
	StateCritical State = 2
	StateUnknown  State = 3
)

func (s State) String() string {
	switch s {
	case StateOK:
		return "OK"
	case StateWarning:
		return "WARNING"
	case StateCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

type Thresholds struct {
	Warn int
	Crit int
}

type CheckResult struct {
	State      State
	Thresholds Thresholds
	Report     differ.UnsyncedReport
	Added      []string
	Removed    []string
	Err        error
}

// Evaluate picks the state for report: CRITICAL above Crit unsynced
// repositories, WARNING above Warn, OK otherwise.
func Evaluate(report differ.UnsyncedReport, thresholds Thresholds) CheckResult {
	state := StateOK
	switch n := len(report); {
	case n > thresholds.Crit:
		state = StateCritical
	case n > thresholds.Warn:
		state = StateWarning
	}

	return CheckResult{
		State:      state,
		Thresholds: thresholds,
		Report:     report,
	}
}

// Failed is the result of a check that could not complete. It never counts
// as in sync.
func Failed(err error, thresholds Thresholds) CheckResult {
	return CheckResult{
		State:      StateUnknown,
		Thresholds: thresholds,
		Err:        err,
	}
}

func (r CheckResult) ExitCode() int {
	return int(r.State)
}

// Unsynced returns the unsynced repositories in lexical order.
func (r CheckResult) Unsynced() []string {
	return slices.Sorted(maps.Keys(r.Report))
}

// Message is the single status line read by the monitoring system.
func (r CheckResult) Message() string {
	if r.State == StateUnknown {
		return fmt.Sprintf("%s: %v", r.State, r.Err)
	}

	repos := r.Unsynced()
	if r.State == StateOK {
		if len(repos) == 0 {
			return "OK: all repos in sync"
		}
		return fmt.Sprintf("OK: %d repos not in sync (%s)", len(repos), strings.Join(repos, " "))
	}

	return fmt.Sprintf("%s: %d repos not in sync! Those repos are: %s", r.State, len(repos), strings.Join(repos, " "))
}
