package fsm

// Condition guards a rule. It receives the argument passed to On.
type Condition[T any] func(arg T) bool

// Rule is one candidate transition for an action.
type Rule[T any] struct {
	From      StateID
	To        StateID
	Condition Condition[T]
	// Data is handed to the leave and enter hooks. nil means no payload.
	Data any
	// GuardName describes Condition for validation messages, logs and diagrams.
	GuardName string
}

// NewRule creates an unguarded rule
func NewRule[T any](from, to StateID) Rule[T] {
	return Rule[T]{From: from, To: to}
}

// WithCondition returns a copy of the rule guarded by cond
func (r Rule[T]) WithCondition(cond Condition[T]) Rule[T] {
	r.Condition = cond
	return r
}

// WithData returns a copy of the rule carrying data
func (r Rule[T]) WithData(data any) Rule[T] {
	r.Data = data
	return r
}

// Guarded reports whether the rule has a condition
func (r Rule[T]) Guarded() bool {
	return r.Condition != nil
}

// matches reports whether the rule applies from the given state. The
// condition is only evaluated when the source state matches.
func (r Rule[T]) matches(current StateID, arg T) bool {
	if r.From != current {
		return false
	}
	return r.Condition == nil || r.Condition(arg)
}

// Not negates a condition
func Not[T any](cond Condition[T]) Condition[T] {
	return func(arg T) bool {
		return !cond(arg)
	}
}

// And is satisfied when every condition is. Conditions are evaluated in order
// and evaluation stops at the first false result.
func And[T any](conds ...Condition[T]) Condition[T] {
	return func(arg T) bool {
		for _, c := range conds {
			if !c(arg) {
				return false
			}
		}
		return true
	}
}

// Or is satisfied when any condition is
func Or[T any](conds ...Condition[T]) Condition[T] {
	return func(arg T) bool {
		for _, c := range conds {
			if c(arg) {
				return true
			}
		}
		return false
	}
}
