package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approve(arg bool) bool { return arg }

// reviewDefinition is the standby/state1/state2/state3 machine used by most tests
func reviewDefinition(rec *HookRecorder) Definition[bool] {
	return Definition[bool]{
		BaseState: "standby",
		States: map[StateID]State{
			"standby": rec.State("standby"),
			"state1":  rec.State("state1"),
			"state2":  rec.State("state2"),
			"state3":  rec.State("state3"),
		},
		Transitions: map[ActionID][]Rule[bool]{
			"tr1": {
				{From: "standby", To: "state1", Condition: approve},
				{From: "standby", To: "state2", Condition: Not(approve)},
			},
			"tr2": {{From: "standby", To: "state3"}},
			"tr3": {{From: "state2", To: "standby"}},
			"tr4": {{From: "state1", To: "standby"}},
			"tr5": {{From: "state3", To: "standby"}},
		},
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	states := map[StateID]State{"state_1": Empty(), "state_2": Empty()}
	transitions := map[ActionID][]Rule[bool]{
		"tr1": {{From: "state_1", To: "state_2"}},
		"tr2": {{From: "state_2", To: "state_1"}},
	}

	t.Run("without base state", func(t *testing.T) {
		m, err := New(Definition[bool]{States: states, Transitions: transitions})
		require.Error(t, err)
		assert.Nil(t, m)
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("with unknown base state", func(t *testing.T) {
		m, err := New(Definition[bool]{BaseState: "state_0", States: states, Transitions: transitions})
		require.Error(t, err)
		assert.Nil(t, m)
		assert.True(t, IsConfigurationError(err))
		assert.Contains(t, err.Error(), "state_0")
	})

	t.Run("with nil states", func(t *testing.T) {
		_, err := New(Definition[bool]{BaseState: "state_1"})
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("MustNew panics", func(t *testing.T) {
		assert.Panics(t, func() {
			MustNew(Definition[bool]{States: states})
		})
	})
}

func TestNew_EntersBaseState(t *testing.T) {
	rec := NewHookRecorder()
	m, err := New(reviewDefinition(rec))
	require.NoError(t, err)

	assert.Equal(t, StateID("standby"), m.CurrentState())
	assert.Equal(t, []string{"enter:standby"}, rec.Sequence())

	call, ok := rec.Last("enter")
	require.True(t, ok)
	assert.Nil(t, call.Data)
}

func TestNew_NilStateDefinition(t *testing.T) {
	m, err := New(Definition[struct{}]{
		BaseState:   "idle",
		States:      map[StateID]State{"idle": nil, "busy": nil},
		Transitions: map[ActionID][]Rule[struct{}]{"go": {{From: "idle", To: "busy"}}},
	})
	require.NoError(t, err)

	assert.True(t, m.Fire("go"))
	assert.Equal(t, StateID("busy"), m.CurrentState())
}

func TestNew_DefaultsAndOptions(t *testing.T) {
	def := reviewDefinition(NewHookRecorder())

	a := MustNew(def)
	b := MustNew(def)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "fsm", a.Name())

	c := MustNew(def, WithID("machine-1"), WithName("review"))
	assert.Equal(t, "machine-1", c.ID())
	assert.Equal(t, "review", c.Name())
}

func TestNew_StrictValidation(t *testing.T) {
	def := Definition[bool]{
		BaseState: "a",
		States:    map[StateID]State{"a": Empty()},
		Transitions: map[ActionID][]Rule[bool]{
			"go": {{From: "a", To: "missing"}},
		},
	}

	_, err := New(def)
	require.NoError(t, err, "dangling destinations are accepted by default")

	_, err = New(def, WithStrictValidation())
	require.Error(t, err)
	assert.True(t, IsRuleError(err))
}

func TestMachine_SimpleTransition(t *testing.T) {
	m := MustNew(reviewDefinition(NewHookRecorder()))

	assert.True(t, m.On("tr2", false))
	assert.Equal(t, StateID("state3"), m.CurrentState())

	assert.True(t, m.On("tr5", false))
	assert.Equal(t, StateID("standby"), m.CurrentState())
}

func TestMachine_UnknownAction(t *testing.T) {
	rec := NewHookRecorder()
	obs := NewTestObserver()
	m := MustNew(reviewDefinition(rec), WithObserver(obs))
	rec.Clear()

	assert.False(t, m.On("nope", true))
	assert.False(t, m.Fire(""))
	assert.Equal(t, StateID("standby"), m.CurrentState())
	assert.Empty(t, rec.Calls)
	require.Len(t, obs.Rejections, 2)
	assert.Equal(t, ReasonUnknownAction, obs.Rejections[0].Reason)
}

func TestMachine_NoWay(t *testing.T) {
	rec := NewHookRecorder()
	m := MustNew(reviewDefinition(rec))
	rec.Clear()

	assert.False(t, m.On("tr5", false))
	assert.Equal(t, StateID("standby"), m.CurrentState())
	assert.Empty(t, rec.Calls)
}

func TestMachine_GuardRejects(t *testing.T) {
	m := MustNew(Definition[int]{
		BaseState: "low",
		States:    map[StateID]State{"low": Empty(), "high": Empty()},
		Transitions: map[ActionID][]Rule[int]{
			"raise": {{From: "low", To: "high", Condition: func(n int) bool { return n > 10 }}},
		},
	})

	assert.False(t, m.On("raise", 5))
	assert.True(t, m.Is("low"))
	assert.True(t, m.On("raise", 11))
	assert.True(t, m.Is("high"))
}

func TestMachine_ComplementaryConditions(t *testing.T) {
	def := reviewDefinition(NewHookRecorder())

	approved := MustNew(def)
	assert.True(t, approved.On("tr1", true))
	assert.Equal(t, StateID("state1"), approved.CurrentState())

	rejected := MustNew(def)
	assert.True(t, rejected.On("tr1", false))
	assert.Equal(t, StateID("state2"), rejected.CurrentState())
}

func TestMachine_AdditionalConditionTransition(t *testing.T) {
	m := MustNew(reviewDefinition(NewHookRecorder()))

	assert.True(t, m.On("tr1", false))
	assert.Equal(t, StateID("state2"), m.CurrentState())

	assert.True(t, m.Fire("tr3"))
	assert.Equal(t, StateID("standby"), m.CurrentState())

	assert.True(t, m.On("tr1", true))
	assert.Equal(t, StateID("state1"), m.CurrentState())

	assert.True(t, m.Fire("tr4"))
	assert.Equal(t, StateID("standby"), m.CurrentState())
}

func TestMachine_FirstMatchWins(t *testing.T) {
	laterEvaluated := false
	m := MustNew(Definition[struct{}]{
		BaseState: "s",
		States:    map[StateID]State{"s": Empty(), "a": Empty(), "b": Empty()},
		Transitions: map[ActionID][]Rule[struct{}]{
			"go": {
				{From: "s", To: "a"},
				{From: "s", To: "b", Condition: func(struct{}) bool {
					laterEvaluated = true
					return true
				}},
			},
		},
	})

	assert.True(t, m.Fire("go"))
	assert.Equal(t, StateID("a"), m.CurrentState())
	assert.False(t, laterEvaluated, "rules after the first match are not evaluated")
}

func TestMachine_ConditionSkippedForOtherSource(t *testing.T) {
	evaluated := 0
	count := func(bool) bool { evaluated++; return true }
	m := MustNew(Definition[bool]{
		BaseState: "a",
		States:    map[StateID]State{"a": Empty(), "b": Empty(), "c": Empty()},
		Transitions: map[ActionID][]Rule[bool]{
			"go": {
				{From: "b", To: "c", Condition: count},
				{From: "a", To: "b", Condition: count},
			},
		},
	})

	assert.True(t, m.On("go", true))
	assert.Equal(t, StateID("b"), m.CurrentState())
	assert.Equal(t, 1, evaluated)
}

func TestMachine_HookOrder(t *testing.T) {
	rec := NewHookRecorder()
	m := MustNew(reviewDefinition(rec))

	require.True(t, m.On("tr2", false))
	require.True(t, m.On("tr5", false))

	assert.Equal(t, []string{
		"enter:standby",
		"leave:standby", "enter:state3",
		"leave:state3", "enter:standby",
	}, rec.Sequence())
}

func TestMachine_SelfTransition(t *testing.T) {
	rec := NewHookRecorder()
	obs := NewTestObserver()
	m := MustNew(Definition[bool]{
		BaseState:   "on",
		States:      map[StateID]State{"on": rec.State("on")},
		Transitions: map[ActionID][]Rule[bool]{"stay": {{From: "on", To: "on"}}},
	}, WithObserver(obs))
	rec.Clear()
	obs.Reset()

	assert.True(t, m.Fire("stay"), "a self transition is a successful call")
	assert.Equal(t, StateID("on"), m.CurrentState())
	assert.Empty(t, rec.Calls)
	assert.Empty(t, obs.Transitions)
}

func TestMachine_Reset(t *testing.T) {
	m := MustNew(reviewDefinition(NewHookRecorder()))

	assert.True(t, m.On("tr1", false))
	assert.Equal(t, StateID("state2"), m.CurrentState())

	m.Reset()
	assert.Equal(t, StateID("standby"), m.CurrentState())
}

func TestMachine_ResetWithoutConnectingRule(t *testing.T) {
	rec := NewHookRecorder()
	m := MustNew(Definition[bool]{
		BaseState: "a",
		States:    map[StateID]State{"a": rec.State("a"), "b": rec.State("b")},
		Transitions: map[ActionID][]Rule[bool]{
			"go": {{From: "a", To: "b", Data: "payload"}},
		},
	})
	require.True(t, m.Fire("go"))
	rec.Clear()

	m.Reset()
	assert.True(t, m.Is("a"))
	assert.Equal(t, []string{"leave:b", "enter:a"}, rec.Sequence())
	for _, c := range rec.Calls {
		assert.Nil(t, c.Data, "reset carries no payload")
	}
}

func TestMachine_StateCallbacksOnReset(t *testing.T) {
	rec := NewHookRecorder()
	m := MustNew(Definition[bool]{
		BaseState: "state_1",
		States: map[StateID]State{
			"state_1": rec.State("state_1"),
			"state_2": rec.State("state_2"),
		},
		Transitions: map[ActionID][]Rule[bool]{
			"tr1": {{From: "state_1", To: "state_2"}},
			"tr2": {{From: "state_2", To: "state_1"}},
		},
	})

	assert.Equal(t, StateID("state_1"), m.CurrentState())
	assert.Equal(t, 1, rec.Count("enter", "state_1"))
	assert.Equal(t, 0, rec.Count("leave", "state_1"))
	assert.Equal(t, 0, rec.Count("enter", "state_2"))
	assert.Equal(t, 0, rec.Count("leave", "state_2"))

	assert.True(t, m.Fire("tr1"))
	assert.Equal(t, StateID("state_2"), m.CurrentState())
	assert.Equal(t, 1, rec.Count("enter", "state_1"))
	assert.Equal(t, 1, rec.Count("leave", "state_1"))
	assert.Equal(t, 1, rec.Count("enter", "state_2"))
	assert.Equal(t, 0, rec.Count("leave", "state_2"))

	m.Reset()
	assert.Equal(t, StateID("state_1"), m.CurrentState())
	assert.Equal(t, 2, rec.Count("enter", "state_1"))
	assert.Equal(t, 1, rec.Count("leave", "state_1"))
	assert.Equal(t, 1, rec.Count("enter", "state_2"))
	assert.Equal(t, 1, rec.Count("leave", "state_2"))

	m.Reset()
	assert.Equal(t, StateID("state_1"), m.CurrentState())
	assert.Equal(t, 2, rec.Count("enter", "state_1"))
	assert.Equal(t, 1, rec.Count("leave", "state_1"))
	assert.Equal(t, 1, rec.Count("enter", "state_2"))
	assert.Equal(t, 1, rec.Count("leave", "state_2"))
}

func TestMachine_AdditionalData(t *testing.T) {
	var enter, leave any
	record := StateFuncs{
		Enter: func(data any) { enter = data },
		Leave: func(data any) { leave = data },
	}
	payload := map[string]string{"anyData": "any-additional-data"}
	def := Definition[bool]{
		BaseState: "state_1",
		States:    map[StateID]State{"state_1": record, "state_2": record},
		Transitions: map[ActionID][]Rule[bool]{
			"tr1": {{From: "state_1", To: "state_2", Data: payload}},
			"tr2": {{From: "state_2", To: "state_1"}},
		},
	}

	t.Run("base transition", func(t *testing.T) {
		enter, leave = nil, nil
		m := MustNew(def)
		assert.Equal(t, StateID("state_1"), m.CurrentState())
		assert.Nil(t, enter)
		assert.Nil(t, leave)

		assert.True(t, m.Fire("tr1"))
		assert.Equal(t, payload, enter)
		assert.Equal(t, payload, leave)

		assert.True(t, m.Fire("tr2"))
		assert.Nil(t, enter)
		assert.Nil(t, leave)
	})

	t.Run("reset", func(t *testing.T) {
		enter, leave = nil, nil
		m := MustNew(def)

		assert.True(t, m.Fire("tr1"))
		assert.Equal(t, payload, enter)
		assert.Equal(t, payload, leave)

		m.Reset()
		assert.Equal(t, StateID("state_1"), m.CurrentState())
		assert.Nil(t, enter)
		assert.Nil(t, leave)
	})
}

func TestMachine_UndefinedDestination(t *testing.T) {
	rec := NewHookRecorder()
	obs := NewTestObserver()
	m := MustNew(Definition[bool]{
		BaseState: "a",
		States:    map[StateID]State{"a": rec.State("a")},
		Transitions: map[ActionID][]Rule[bool]{
			"lost":  {{From: "a", To: "nowhere"}},
			"found": {{From: "nowhere", To: "a"}},
		},
	}, WithObserver(obs))
	rec.Clear()

	assert.True(t, m.Fire("lost"))
	assert.Equal(t, StateID("nowhere"), m.CurrentState())
	assert.Equal(t, []string{"leave:a"}, rec.Sequence())
	require.Len(t, obs.Errors, 1)
	assert.Equal(t, ErrCodeStateNotFound, GetErrorCode(obs.Errors[0]))

	// leaving the undefined state skips the missing leave hook
	assert.True(t, m.Fire("found"))
	assert.Equal(t, []string{"leave:a", "enter:a"}, rec.Sequence())
}

func TestNew_RejectsEmptyStateID(t *testing.T) {
	rec := NewHookRecorder()
	def := Definition[bool]{
		BaseState: "a",
		States:    map[StateID]State{"": rec.State(""), "a": rec.State("a")},
	}

	m, err := New(def)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "state id cannot be empty")
	assert.Empty(t, rec.Sequence(), "no hook runs for a rejected definition")

	assert.Error(t, def.Validate())
}

func TestMachine_LeavesEmptyUndefinedState(t *testing.T) {
	rec := NewHookRecorder()
	obs := NewTestObserver()
	m := MustNew(Definition[bool]{
		BaseState: "a",
		States:    map[StateID]State{"a": rec.State("a"), "b": rec.State("b")},
		Transitions: map[ActionID][]Rule[bool]{
			"x": {{From: "a", To: ""}},
			"y": {{From: "", To: "b"}},
		},
	}, WithObserver(obs))
	assert.Equal(t, []string{"enter:a"}, rec.Sequence())

	assert.True(t, m.Fire("x"))
	assert.Equal(t, StateID(""), m.CurrentState())
	assert.True(t, m.Fire("y"))
	assert.Equal(t, StateID("b"), m.CurrentState())

	assert.Equal(t, []string{"enter:a", "leave:a", "enter:b"}, rec.Sequence())
	assert.Equal(t, []TransitionEvent{
		{From: "a", To: "", Action: "x"},
		{From: "", To: "b", Action: "y"},
	}, obs.Transitions)
	assert.Equal(t, []StateID{"a", ""}, obs.StateExits)

	m.Reset()
	require.True(t, m.Fire("x"))
	m.Reset()
	assert.Equal(t, StateID("a"), m.CurrentState())
	assert.Equal(t, TransitionEvent{From: "", To: "a"}, obs.Transitions[len(obs.Transitions)-1])
}

func TestMachine_ConditionPanicPropagates(t *testing.T) {
	m := MustNew(Definition[bool]{
		BaseState: "a",
		States:    map[StateID]State{"a": Empty(), "b": Empty()},
		Transitions: map[ActionID][]Rule[bool]{
			"go": {{From: "a", To: "b", Condition: func(bool) bool { panic("guard failed") }}},
		},
	})

	assert.PanicsWithValue(t, "guard failed", func() { m.Fire("go") })
	assert.Equal(t, StateID("a"), m.CurrentState())
}

func TestMachine_EnterPanicLeavesNewState(t *testing.T) {
	left := false
	m := MustNew(Definition[bool]{
		BaseState: "a",
		States: map[StateID]State{
			"a": StateFuncs{Leave: func(any) { left = true }},
			"b": StateFuncs{Enter: func(any) { panic("enter failed") }},
		},
		Transitions: map[ActionID][]Rule[bool]{"go": {{From: "a", To: "b"}}},
	})

	assert.Panics(t, func() { m.Fire("go") })
	assert.True(t, left)
	assert.Equal(t, StateID("b"), m.CurrentState(), "the state is committed before OnEnter runs")
}

func TestMachine_LeavePanicKeepsOldState(t *testing.T) {
	m := MustNew(Definition[bool]{
		BaseState: "a",
		States: map[StateID]State{
			"a": StateFuncs{Leave: func(any) { panic("leave failed") }},
			"b": Empty(),
		},
		Transitions: map[ActionID][]Rule[bool]{"go": {{From: "a", To: "b"}}},
	})

	assert.Panics(t, func() { m.Fire("go") })
	assert.Equal(t, StateID("a"), m.CurrentState())
}

func TestMachine_Can(t *testing.T) {
	rec := NewHookRecorder()
	m := MustNew(reviewDefinition(rec))
	rec.Clear()

	assert.True(t, m.Can("tr1", true))
	assert.True(t, m.Can("tr2", false))
	assert.False(t, m.Can("tr5", false))
	assert.False(t, m.Can("unknown", false))
	assert.Equal(t, StateID("standby"), m.CurrentState())
	assert.Empty(t, rec.Calls)
}

func TestMachine_DefinitionIsIsolated(t *testing.T) {
	def := reviewDefinition(NewHookRecorder())
	m := MustNew(def)

	def.Transitions["tr2"][0].To = "state1"
	delete(def.Transitions, "tr5")
	def.States["extra"] = Empty()

	assert.True(t, m.Fire("tr2"))
	assert.Equal(t, StateID("state3"), m.CurrentState())
	assert.True(t, m.Fire("tr5"))

	copied := m.Definition()
	assert.False(t, copied.HasState("extra"))
	copied.Transitions["tr2"][0].To = "state2"
	assert.True(t, m.Fire("tr2"))
	assert.Equal(t, StateID("state3"), m.CurrentState())
}

func TestMachine_IndependentInstances(t *testing.T) {
	def := reviewDefinition(NewHookRecorder())
	a := MustNew(def)
	b := MustNew(def)

	assert.True(t, a.Fire("tr2"))
	assert.Equal(t, StateID("state3"), a.CurrentState())
	assert.Equal(t, StateID("standby"), b.CurrentState())
}
