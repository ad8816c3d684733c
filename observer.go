package fsm

import (
	"fmt"
	"reflect"
)

// Info is the read-only view of a machine handed to observers
type Info interface {
	ID() string
	Name() string
	CurrentState() StateID
}

// Rejection reasons reported to OnActionRejected
const (
	ReasonUnknownAction = "unknown action"
	ReasonNoRule        = "no rule matched"
)

// Observer represents an entity that observes the machine lifecycle.
// The action is empty for Reset and for the initial entry at construction.
type Observer interface {
	// OnTransition is called after a transition between two different states
	OnTransition(m Info, from, to StateID, action ActionID)

	// OnStateEnter is called after the enter hook of a state has run
	OnStateEnter(m Info, state StateID)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnStateExit is called after the leave hook of a state has run
	OnStateExit(m Info, state StateID)

	// OnActionRejected is called when On returns false
	OnActionRejected(m Info, action ActionID, reason string)

	// OnError is called for faults that do not interrupt the caller
	OnError(m Info, err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnTransition implements Observer
func (o *BaseObserver) OnTransition(m Info, from, to StateID, action ActionID) {}

// OnStateEnter implements Observer
func (o *BaseObserver) OnStateEnter(m Info, state StateID) {}

// OnStateExit implements ExtendedObserver
func (o *BaseObserver) OnStateExit(m Info, state StateID) {}

// OnActionRejected implements ExtendedObserver
func (o *BaseObserver) OnActionRejected(m Info, action ActionID, reason string) {}

// OnError implements ExtendedObserver
func (o *BaseObserver) OnError(m Info, err error) {}

// ObserverManager manages a collection of observers.
// A panicking observer is reported to its own OnError and never reaches the caller.
type ObserverManager struct {
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager. Observers whose
// dynamic type is not comparable cannot be removed; register them by pointer.
func (om *ObserverManager) RemoveObserver(observer Observer) {
	for i, obs := range om.observers {
		if sameObserver(obs, observer) {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

func sameObserver(a, b Observer) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	return len(om.observers)
}

func (om *ObserverManager) snapshot() []Observer {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

func (om *ObserverManager) guard(observer Observer, m Info, method string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			if extObs, ok := observer.(ExtendedObserver); ok {
				func() {
					defer func() { _ = recover() }()
					extObs.OnError(m, fmt.Errorf("observer panic in %s: %v", method, r))
				}()
			}
		}
	}()
	call()
}

// NotifyTransition notifies all observers of a state transition
func (om *ObserverManager) NotifyTransition(m Info, from, to StateID, action ActionID) {
	for _, observer := range om.snapshot() {
		obs := observer
		om.guard(obs, m, "OnTransition", func() { obs.OnTransition(m, from, to, action) })
	}
}

// NotifyStateEnter notifies all observers of state entry
func (om *ObserverManager) NotifyStateEnter(m Info, state StateID) {
	for _, observer := range om.snapshot() {
		obs := observer
		om.guard(obs, m, "OnStateEnter", func() { obs.OnStateEnter(m, state) })
	}
}

// NotifyStateExit notifies all observers of state exit
func (om *ObserverManager) NotifyStateExit(m Info, state StateID) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.guard(extObs, m, "OnStateExit", func() { extObs.OnStateExit(m, state) })
		}
	}
}

// NotifyActionRejected notifies all observers that On found no rule
func (om *ObserverManager) NotifyActionRejected(m Info, action ActionID, reason string) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.guard(extObs, m, "OnActionRejected", func() { extObs.OnActionRejected(m, action, reason) })
		}
	}
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(m Info, err error) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.guard(extObs, m, "OnError", func() { extObs.OnError(m, err) })
		}
	}
}
