package fsm

import (
	"errors"
	"fmt"
	"sort"
)

// Definition is the static description of a machine.
//
// Transitions maps every action to its candidate rules. Order matters: On
// applies the first rule whose source matches the current state and whose
// condition passes.
type Definition[T any] struct {
	BaseState   StateID
	States      map[StateID]State
	Transitions map[ActionID][]Rule[T]
}

// HasState reports whether id is defined. A nil State value still counts.
func (d Definition[T]) HasState(id StateID) bool {
	_, ok := d.States[id]
	return ok
}

// StateIDs returns the defined states in sorted order
func (d Definition[T]) StateIDs() []StateID {
	ids := make([]StateID, 0, len(d.States))
	for id := range d.States {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Actions returns the configured actions in sorted order
func (d Definition[T]) Actions() []ActionID {
	actions := make([]ActionID, 0, len(d.Transitions))
	for a := range d.Transitions {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// checkBase validates the base state and rejects empty state IDs. It is the
// only check New performs by default.
func (d Definition[T]) checkBase() error {
	if d.HasState("") {
		return NewConfigurationError("Definition", "state id cannot be empty")
	}
	if d.BaseState == "" {
		return NewConfigurationError("Definition", "base state must be defined")
	}
	if !d.HasState(d.BaseState) {
		return NewConfigurationError("Definition", fmt.Sprintf("base state '%s' does not exist", d.BaseState))
	}
	return nil
}

// Validate performs a strict check of the whole definition: the base state
// and the source and destination of every rule must be defined states.
// All problems are reported together.
func (d Definition[T]) Validate() error {
	if err := d.checkBase(); err != nil {
		return err
	}

	var errs []error
	for _, action := range d.Actions() {
		if action == "" {
			errs = append(errs, NewConfigurationError("Definition", "action name cannot be empty"))
			continue
		}
		rules := d.Transitions[action]
		if len(rules) == 0 {
			errs = append(errs, NewConfigurationError("Definition", fmt.Sprintf("action '%s' has no rules", action)))
		}
		for i, r := range rules {
			switch {
			case r.From == "" || r.To == "":
				errs = append(errs, NewRuleError(action, i, r.From, r.To, "from and to are required"))
			case !d.HasState(r.From):
				errs = append(errs, NewRuleError(action, i, r.From, r.To, fmt.Sprintf("source state '%s' does not exist", r.From)))
			case !d.HasState(r.To):
				errs = append(errs, NewRuleError(action, i, r.From, r.To, fmt.Sprintf("destination state '%s' does not exist", r.To)))
			}
		}
	}
	return errors.Join(errs...)
}

// clone copies the maps and rule slices so later changes by the caller
// cannot reach a running machine.
func (d Definition[T]) clone() Definition[T] {
	out := Definition[T]{
		BaseState:   d.BaseState,
		States:      make(map[StateID]State, len(d.States)),
		Transitions: make(map[ActionID][]Rule[T], len(d.Transitions)),
	}
	for id, s := range d.States {
		out.States[id] = s
	}
	for a, rules := range d.Transitions {
		out.Transitions[a] = append([]Rule[T](nil), rules...)
	}
	return out
}
