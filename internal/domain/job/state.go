// Package job tracks the lifecycle of long running background jobs.
package job

import (
	"fmt"
	"slices"
	"strings"
)

// State is the lifecycle state of a job.
type State string

const (
	StateCreated         State = "CREATED"
	StateWaiting         State = "WAITING"
	StateScheduled       State = "SCHEDULED"
	StateQueued          State = "QUEUED"
	StateRunning         State = "RUNNING"
	StateFailedWithRetry State = "FAILED_WITH_RETRY"
	StateCompleted       State = "COMPLETED"
	StateFailed          State = "FAILED"
	StateCanceled        State = "CANCELED"
	StateAborted         State = "ABORTED"
)

// stateTransitions lists the allowed targets of every state. Terminal
// states have none.
var stateTransitions = map[State][]State{
	StateCreated:         {StateWaiting, StateScheduled, StateQueued, StateRunning, StateCanceled, StateAborted},
	StateWaiting:         {StateScheduled, StateQueued, StateRunning, StateCanceled, StateAborted},
	StateScheduled:       {StateQueued, StateRunning, StateCanceled, StateAborted},
	StateQueued:          {StateRunning, StateCanceled},
	StateRunning:         {StateFailed, StateFailedWithRetry, StateCompleted, StateCanceled},
	StateFailedWithRetry: {StateScheduled, StateQueued, StateRunning, StateCanceled},
	StateCompleted:       {},
	StateFailed:          {},
	StateCanceled:        {},
	StateAborted:         {},
}

// ParseState parses a state name case-insensitively.
func ParseState(value string) (State, error) {
	s := State(strings.ToUpper(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid job state: %q", value)
	}
	return s, nil
}

func (s State) String() string {
	return string(s)
}

func (s State) IsValid() bool {
	_, ok := stateTransitions[s]
	return ok
}

// IsValidTransition reports whether a job may move from s to target.
func (s State) IsValidTransition(target State) bool {
	return slices.Contains(stateTransitions[s], target)
}

// IsTerminal reports whether s has no outgoing transitions.
func (s State) IsTerminal() bool {
	targets, ok := stateTransitions[s]
	return ok && len(targets) == 0
}

// AllowedTransitions returns a copy of the targets reachable from s.
func (s State) AllowedTransitions() []State {
	return slices.Clone(stateTransitions[s])
}
