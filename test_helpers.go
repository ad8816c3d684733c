package fsm

import (
	"fmt"
	"sync"
)

// TestObserver records every notification. It is exported so tests of other
// packages can use it.
type TestObserver struct {
	mutex       sync.RWMutex
	Transitions []TransitionEvent
	StateEnters []StateID
	StateExits  []StateID
	Rejections  []RejectionEvent
	Errors      []error
}

// TransitionEvent is one recorded OnTransition call
type TransitionEvent struct {
	From   StateID
	To     StateID
	Action ActionID
}

// RejectionEvent is one recorded OnActionRejected call
type RejectionEvent struct {
	Action ActionID
	Reason string
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{}
}

// OnTransition implements Observer
func (o *TestObserver) OnTransition(m Info, from, to StateID, action ActionID) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = append(o.Transitions, TransitionEvent{From: from, To: to, Action: action})
}

// OnStateEnter implements Observer
func (o *TestObserver) OnStateEnter(m Info, state StateID) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.StateEnters = append(o.StateEnters, state)
}

// OnStateExit implements ExtendedObserver
func (o *TestObserver) OnStateExit(m Info, state StateID) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.StateExits = append(o.StateExits, state)
}

// OnActionRejected implements ExtendedObserver
func (o *TestObserver) OnActionRejected(m Info, action ActionID, reason string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Rejections = append(o.Rejections, RejectionEvent{Action: action, Reason: reason})
}

// OnError implements ExtendedObserver
func (o *TestObserver) OnError(m Info, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

// Reset clears all recorded events
func (o *TestObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = nil
	o.StateEnters = nil
	o.StateExits = nil
	o.Rejections = nil
	o.Errors = nil
}

// HookCall is one recorded hook invocation
type HookCall struct {
	Hook  string // "enter" or "leave"
	State StateID
	Data  any
}

func (c HookCall) String() string {
	return fmt.Sprintf("%s:%s", c.Hook, c.State)
}

// HookRecorder builds states whose hooks record every call in order
type HookRecorder struct {
	mutex sync.Mutex
	Calls []HookCall
}

// NewHookRecorder creates an empty recorder
func NewHookRecorder() *HookRecorder {
	return &HookRecorder{}
}

// State returns a state definition recording into r
func (r *HookRecorder) State(id StateID) State {
	return StateFuncs{
		Enter: func(data any) { r.record("enter", id, data) },
		Leave: func(data any) { r.record("leave", id, data) },
	}
}

func (r *HookRecorder) record(hook string, id StateID, data any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Calls = append(r.Calls, HookCall{Hook: hook, State: id, Data: data})
}

// Count returns how many times hook fired for state
func (r *HookRecorder) Count(hook string, state StateID) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	n := 0
	for _, c := range r.Calls {
		if c.Hook == hook && c.State == state {
			n++
		}
	}
	return n
}

// Sequence returns the recorded calls as "hook:state" strings
func (r *HookRecorder) Sequence() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	seq := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		seq[i] = c.String()
	}
	return seq
}

// Last returns the most recent call of hook, if any
func (r *HookRecorder) Last(hook string) (HookCall, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for i := len(r.Calls) - 1; i >= 0; i-- {
		if r.Calls[i].Hook == hook {
			return r.Calls[i], true
		}
	}
	return HookCall{}, false
}

// Clear forgets all recorded calls
func (r *HookRecorder) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Calls = nil
}
