package fsm

// MachineBuilder is the entry point of the fluent definition API:
//
//	def := fsm.NewBuilder[bool]().
//		State("standby").Base().
//		State("approved").OnEnter(notify).
//		On("review").From("standby").To("approved").When(isApproved).
//		Build()
type MachineBuilder[T any] interface {
	BaseState(id StateID) MachineBuilder[T]
	State(id StateID) StateBuilder[T]
	On(action ActionID) RuleBuilder[T]

	Build() Definition[T]
	BuildMachine(opts ...Option) (*Machine[T], error)
}

// StateBuilder configures the hooks of one state
type StateBuilder[T any] interface {
	OnEnter(fn func(data any)) StateBuilder[T]
	OnLeave(fn func(data any)) StateBuilder[T]
	// With replaces the hooks by a custom State implementation
	With(state State) StateBuilder[T]
	// Base marks the state as the base state
	Base() StateBuilder[T]

	State(id StateID) StateBuilder[T]
	On(action ActionID) RuleBuilder[T]
	Build() Definition[T]
	BuildMachine(opts ...Option) (*Machine[T], error)
}

// RuleBuilder configures one rule. Every call to On starts a new rule, so
// calling On twice with the same action adds a second, lower priority rule.
type RuleBuilder[T any] interface {
	From(state StateID) RuleBuilder[T]
	To(state StateID) RuleBuilder[T]
	// When guards the rule. Repeated guards are combined with And.
	When(cond Condition[T]) RuleBuilder[T]
	WhenNamed(name string, cond Condition[T]) RuleBuilder[T]
	Unless(cond Condition[T]) RuleBuilder[T]
	WithData(data any) RuleBuilder[T]

	On(action ActionID) RuleBuilder[T]
	State(id StateID) StateBuilder[T]
	Build() Definition[T]
	BuildMachine(opts ...Option) (*Machine[T], error)
}

type machineBuilderImpl[T any] struct {
	baseState StateID
	order     []StateID
	funcs     map[StateID]*StateFuncs
	custom    map[StateID]State
	rules     map[ActionID][]Rule[T]
}

// NewBuilder creates a new definition builder
func NewBuilder[T any]() MachineBuilder[T] {
	return &machineBuilderImpl[T]{
		funcs:  make(map[StateID]*StateFuncs),
		custom: make(map[StateID]State),
		rules:  make(map[ActionID][]Rule[T]),
	}
}

func (mb *machineBuilderImpl[T]) BaseState(id StateID) MachineBuilder[T] {
	mb.baseState = id
	return mb
}

func (mb *machineBuilderImpl[T]) State(id StateID) StateBuilder[T] {
	if _, exists := mb.funcs[id]; !exists {
		mb.funcs[id] = &StateFuncs{}
		mb.order = append(mb.order, id)
	}
	return &stateBuilderImpl[T]{mb: mb, id: id}
}

func (mb *machineBuilderImpl[T]) On(action ActionID) RuleBuilder[T] {
	mb.rules[action] = append(mb.rules[action], Rule[T]{})
	return &ruleBuilderImpl[T]{mb: mb, action: action, index: len(mb.rules[action]) - 1}
}

// Build returns a new Definition. The builder can keep being used afterwards.
func (mb *machineBuilderImpl[T]) Build() Definition[T] {
	def := Definition[T]{
		BaseState:   mb.baseState,
		States:      make(map[StateID]State, len(mb.order)),
		Transitions: mb.rules,
	}
	for _, id := range mb.order {
		if s, ok := mb.custom[id]; ok {
			def.States[id] = s
			continue
		}
		def.States[id] = *mb.funcs[id]
	}
	return def.clone()
}

func (mb *machineBuilderImpl[T]) BuildMachine(opts ...Option) (*Machine[T], error) {
	return New(mb.Build(), opts...)
}

type stateBuilderImpl[T any] struct {
	mb *machineBuilderImpl[T]
	id StateID
}

func (sb *stateBuilderImpl[T]) OnEnter(fn func(data any)) StateBuilder[T] {
	sb.mb.funcs[sb.id].Enter = fn
	return sb
}

func (sb *stateBuilderImpl[T]) OnLeave(fn func(data any)) StateBuilder[T] {
	sb.mb.funcs[sb.id].Leave = fn
	return sb
}

func (sb *stateBuilderImpl[T]) With(state State) StateBuilder[T] {
	sb.mb.custom[sb.id] = state
	return sb
}

func (sb *stateBuilderImpl[T]) Base() StateBuilder[T] {
	sb.mb.baseState = sb.id
	return sb
}

func (sb *stateBuilderImpl[T]) State(id StateID) StateBuilder[T] {
	return sb.mb.State(id)
}

func (sb *stateBuilderImpl[T]) On(action ActionID) RuleBuilder[T] {
	return sb.mb.On(action)
}

func (sb *stateBuilderImpl[T]) Build() Definition[T] {
	return sb.mb.Build()
}

func (sb *stateBuilderImpl[T]) BuildMachine(opts ...Option) (*Machine[T], error) {
	return sb.mb.BuildMachine(opts...)
}

type ruleBuilderImpl[T any] struct {
	mb     *machineBuilderImpl[T]
	action ActionID
	index  int
}

func (rb *ruleBuilderImpl[T]) rule() *Rule[T] {
	return &rb.mb.rules[rb.action][rb.index]
}

func (rb *ruleBuilderImpl[T]) From(state StateID) RuleBuilder[T] {
	rb.rule().From = state
	return rb
}

func (rb *ruleBuilderImpl[T]) To(state StateID) RuleBuilder[T] {
	rb.rule().To = state
	return rb
}

func (rb *ruleBuilderImpl[T]) When(cond Condition[T]) RuleBuilder[T] {
	r := rb.rule()
	if r.Condition != nil {
		r.Condition = And(r.Condition, cond)
	} else {
		r.Condition = cond
	}
	return rb
}

func (rb *ruleBuilderImpl[T]) WhenNamed(name string, cond Condition[T]) RuleBuilder[T] {
	r := rb.rule()
	if r.GuardName != "" {
		r.GuardName += " && " + name
	} else {
		r.GuardName = name
	}
	return rb.When(cond)
}

func (rb *ruleBuilderImpl[T]) Unless(cond Condition[T]) RuleBuilder[T] {
	return rb.When(Not(cond))
}

func (rb *ruleBuilderImpl[T]) WithData(data any) RuleBuilder[T] {
	rb.rule().Data = data
	return rb
}

func (rb *ruleBuilderImpl[T]) On(action ActionID) RuleBuilder[T] {
	return rb.mb.On(action)
}

func (rb *ruleBuilderImpl[T]) State(id StateID) StateBuilder[T] {
	return rb.mb.State(id)
}

func (rb *ruleBuilderImpl[T]) Build() Definition[T] {
	return rb.mb.Build()
}

func (rb *ruleBuilderImpl[T]) BuildMachine(opts ...Option) (*Machine[T], error) {
	return rb.mb.BuildMachine(opts...)
}
