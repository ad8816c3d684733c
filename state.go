package fsm

// StateID names a state. IDs are unique within a definition.
type StateID string

// ActionID names a transition trigger. Action and state names live in
// separate namespaces.
type ActionID string

// State is the definition attached to a StateID.
//
// OnLeave is called with the payload of the transition leaving the state,
// OnEnter with the payload of the transition entering it. The payload is nil
// when the transition carries no data and on Reset.
type State interface {
	OnEnter(data any)
	OnLeave(data any)
}

// BaseState provides no-op hooks. Embed it to implement only one of them.
type BaseState struct{}

// OnEnter implements State
func (BaseState) OnEnter(data any) {}

// OnLeave implements State
func (BaseState) OnLeave(data any) {}

// StateFuncs adapts plain functions to the State interface. Either field may be nil.
type StateFuncs struct {
	Enter func(data any)
	Leave func(data any)
}

// OnEnter calls Enter if set
func (s StateFuncs) OnEnter(data any) {
	if s.Enter != nil {
		s.Enter(data)
	}
}

// OnLeave calls Leave if set
func (s StateFuncs) OnLeave(data any) {
	if s.Leave != nil {
		s.Leave(data)
	}
}

// Empty returns a state definition without hooks.
func Empty() State {
	return BaseState{}
}
