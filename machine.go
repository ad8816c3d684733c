package fsm

import (
	"github.com/google/uuid"
)

// Option configures a machine at construction
type Option func(*options)

type options struct {
	id        string
	name      string
	strict    bool
	observers []Observer
}

// WithID sets the instance ID. By default a random UUID is used.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithName sets the label used by observers for logs and metrics
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithObserver registers an observer before the initial entry into the base
// state, so it sees that entry too.
func WithObserver(observer Observer) Option {
	return func(o *options) { o.observers = append(o.observers, observer) }
}

// WithStrictValidation makes New reject definitions whose rules reference
// undefined states. Without it, such rules are accepted and only show up as
// transitions that never match or that land in a state without hooks.
func WithStrictValidation() Option {
	return func(o *options) { o.strict = true }
}

// Machine is a flat finite state machine with exactly one active state.
//
// A Machine is not safe for concurrent use and is not re-entrant: hooks and
// conditions must not call back into the machine that runs them. Wrap it
// with Synchronize when it is shared between goroutines.
type Machine[T any] struct {
	id         string
	name       string
	definition Definition[T]
	current    StateID
	// entered is false until the base state has been entered by New
	entered   bool
	observers *ObserverManager
}

// New validates the definition, creates a machine and enters the base state.
//
// The base state's OnEnter hook fires once with a nil payload. No OnLeave
// fires because there is no previous state. On failure the returned error
// is a *ConfigurationError (or a joined set of *RuleError in strict mode).
func New[T any](def Definition[T], opts ...Option) (*Machine[T], error) {
	o := options{name: "fsm"}
	for _, opt := range opts {
		opt(&o)
	}

	if err := def.checkBase(); err != nil {
		return nil, err
	}
	if o.strict {
		if err := def.Validate(); err != nil {
			return nil, err
		}
	}

	if o.id == "" {
		o.id = uuid.NewString()
	}

	m := &Machine[T]{
		id:         o.id,
		name:       o.name,
		definition: def.clone(),
		observers:  NewObserverManager(),
	}
	for _, obs := range o.observers {
		m.observers.AddObserver(obs)
	}

	m.Reset()
	return m, nil
}

// MustNew is like New but panics on error
func MustNew[T any](def Definition[T], opts ...Option) *Machine[T] {
	m, err := New(def, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// ID returns the instance ID
func (m *Machine[T]) ID() string {
	return m.id
}

// Name returns the machine label
func (m *Machine[T]) Name() string {
	return m.name
}

// CurrentState returns the current state
func (m *Machine[T]) CurrentState() StateID {
	return m.current
}

// Is reports whether the machine is in the given state
func (m *Machine[T]) Is(state StateID) bool {
	return m.current == state
}

// Definition returns a copy of the definition the machine runs
func (m *Machine[T]) Definition() Definition[T] {
	return m.definition.clone()
}

// AddObserver adds an observer
func (m *Machine[T]) AddObserver(observer Observer) {
	m.observers.AddObserver(observer)
}

// RemoveObserver removes an observer
func (m *Machine[T]) RemoveObserver(observer Observer) {
	m.observers.RemoveObserver(observer)
}

// On attempts the transition registered for action.
//
// The rules of the action are scanned in order and the first one whose
// source is the current state and whose condition accepts arg is applied.
// On returns false, without side effects on the state, when the action is
// unknown or no rule matches. It returns true when a rule was applied, even
// if that rule leads back to the current state.
//
// Panics raised by conditions or hooks are not recovered.
func (m *Machine[T]) On(action ActionID, arg T) bool {
	rule, ok := m.resolve(action, arg)
	if !ok {
		return false
	}

	m.doTransition(rule.To, action, rule.Data)
	return true
}

// Fire is On with the zero value of T, for actions whose rules need no argument
func (m *Machine[T]) Fire(action ActionID) bool {
	var zero T
	return m.On(action, zero)
}

// Can reports whether On(action, arg) would apply a rule. Conditions are
// evaluated but no transition happens.
func (m *Machine[T]) Can(action ActionID, arg T) bool {
	rules, ok := m.definition.Transitions[action]
	if !ok {
		return false
	}
	_, found := firstMatch(rules, m.current, arg)
	return found
}

// Reset moves the machine back to the base state without a payload. The
// transitions table is not consulted.
func (m *Machine[T]) Reset() {
	m.doTransition(m.definition.BaseState, "", nil)
}

func (m *Machine[T]) resolve(action ActionID, arg T) (Rule[T], bool) {
	rules, ok := m.definition.Transitions[action]
	if !ok {
		m.observers.NotifyActionRejected(m, action, ReasonUnknownAction)
		return Rule[T]{}, false
	}

	rule, found := firstMatch(rules, m.current, arg)
	if !found {
		m.observers.NotifyActionRejected(m, action, ReasonNoRule)
		return Rule[T]{}, false
	}
	return rule, true
}

func firstMatch[T any](rules []Rule[T], current StateID, arg T) (Rule[T], bool) {
	for _, r := range rules {
		if r.matches(current, arg) {
			return r, true
		}
	}
	return Rule[T]{}, false
}

// doTransition leaves the current state, commits the new one and enters it.
// Moving to the current state is a no-op. The commit happens before the
// enter hook runs, so a panicking OnEnter leaves the machine in the new state.
func (m *Machine[T]) doTransition(to StateID, action ActionID, data any) {
	if m.entered && m.current == to {
		return
	}

	from, leaving := m.current, m.entered
	if leaving {
		if state := m.definition.States[from]; state != nil {
			state.OnLeave(data)
		}
		m.observers.NotifyStateExit(m, from)
	}

	m.current = to
	m.entered = true

	state, defined := m.definition.States[to]
	switch {
	case !defined:
		m.observers.NotifyError(m, NewStateNotFoundError(to))
	case state != nil:
		state.OnEnter(data)
	}
	m.observers.NotifyStateEnter(m, to)

	if leaving {
		m.observers.NotifyTransition(m, from, to, action)
	}
}
