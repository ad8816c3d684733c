package observers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/anggasct/fsm"
)

// ValidationObserver checks a running machine against expectations: which
// transitions are allowed and which states should be visited.
type ValidationObserver struct {
	expectedStates     map[fsm.StateID]bool
	visitedStates      map[fsm.StateID]bool
	allowedTransitions map[fsm.StateID]map[fsm.StateID]bool
	violations         []string
	mutex              sync.RWMutex
}

// NewValidationObserver creates an observer without expectations
func NewValidationObserver() *ValidationObserver {
	return &ValidationObserver{
		expectedStates:     make(map[fsm.StateID]bool),
		visitedStates:      make(map[fsm.StateID]bool),
		allowedTransitions: make(map[fsm.StateID]map[fsm.StateID]bool),
	}
}

// NewValidationObserverFor derives expectations from a definition: every
// defined state is expected, and the allowed transitions are the rules plus
// the reset edge from every state back to the base state.
func NewValidationObserverFor[T any](def fsm.Definition[T]) *ValidationObserver {
	o := NewValidationObserver()
	for _, id := range def.StateIDs() {
		o.AddExpectedState(id)
		if id != def.BaseState {
			o.AddAllowedTransition(id, def.BaseState)
		}
	}
	for _, rules := range def.Transitions {
		for _, r := range rules {
			o.AddAllowedTransition(r.From, r.To)
		}
	}
	return o
}

// AddExpectedState adds an expected state
func (o *ValidationObserver) AddExpectedState(state fsm.StateID) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.expectedStates[state] = true
}

// AddAllowedTransition adds an allowed transition
func (o *ValidationObserver) AddAllowedTransition(from, to fsm.StateID) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, exists := o.allowedTransitions[from]; !exists {
		o.allowedTransitions[from] = make(map[fsm.StateID]bool)
	}
	o.allowedTransitions[from][to] = true
}

// OnStateEnter marks the state visited
func (o *ValidationObserver) OnStateEnter(m fsm.Info, state fsm.StateID) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.visitedStates[state] = true
}

// OnTransition records transitions missing from the allowed set
func (o *ValidationObserver) OnTransition(m fsm.Info, from, to fsm.StateID, action fsm.ActionID) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if !o.allowedTransitions[from][to] {
		o.violations = append(o.violations, fmt.Sprintf(
			"invalid transition from '%s' to '%s' on action '%s'", from, to, action))
	}
}

// OnStateExit implements fsm.ExtendedObserver
func (o *ValidationObserver) OnStateExit(m fsm.Info, state fsm.StateID) {}

// OnActionRejected implements fsm.ExtendedObserver
func (o *ValidationObserver) OnActionRejected(m fsm.Info, action fsm.ActionID, reason string) {}

// OnError records the error as a violation
func (o *ValidationObserver) OnError(m fsm.Info, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, fmt.Sprintf("error occurred: %v", err))
}

// Violations returns all recorded violations
func (o *ValidationObserver) Violations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// UnvisitedStates returns expected states that were never entered, sorted
func (o *ValidationObserver) UnvisitedStates() []fsm.StateID {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var unvisited []fsm.StateID
	for state := range o.expectedStates {
		if !o.visitedStates[state] {
			unvisited = append(unvisited, state)
		}
	}
	sort.Slice(unvisited, func(i, j int) bool { return unvisited[i] < unvisited[j] })
	return unvisited
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset clears visited states and violations
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates = make(map[fsm.StateID]bool)
	o.violations = nil
}
