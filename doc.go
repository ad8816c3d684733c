// Package fsm provides a small, flat finite state machine.
//
// A Definition lists the states, the base state and the rules grouped by
// action. A Machine built from it tracks exactly one current state:
//
//	m, err := fsm.NewBuilder[bool]().
//		State("standby").Base().
//		State("approved").OnEnter(notify).
//		On("review").From("standby").To("approved").When(isApproved).
//		On("reset").From("approved").To("standby").
//		BuildMachine(fsm.WithName("review"))
//
//	m.On("review", true) // true, now in "approved"
//
// Rules of an action are tried in order and the first one whose source is the
// current state and whose condition holds is applied. Moving to another state
// calls OnLeave on the old state, commits the new state, then calls OnEnter,
// both with the rule's Data. Moving to the current state does nothing.
//
// Reset returns to the base state without consulting any rule.
//
// Machine is not safe for concurrent use; wrap it with Synchronize when
// several goroutines share one.
package fsm
