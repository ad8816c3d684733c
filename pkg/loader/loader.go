// Package loader reads state machine definitions from YAML or JSON documents.
//
// A document names its states and transitions; hooks and conditions are
// referenced by name and resolved through a Registry:
//
//	name: door
//	baseState: closed
//	states:
//	  closed: {onEnter: logEnter}
//	  open: {}
//	transitions:
//	  open: {from: closed, to: open, data: {tag: x}}
//	  toggle:
//	    - {from: closed, to: open, condition: approved}
//	    - {from: open, to: closed}
//
// A transition may be a single mapping or a list of mappings. Lists keep
// their order, which decides which rule wins.
package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anggasct/fsm"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format selects the document syntax
type Format int

const (
	// YAML documents. JSON is valid YAML, so this also reads JSON.
	YAML Format = iota
	// JSON documents
	JSON
)

// Document is a loaded definition together with its name
type Document[T any] struct {
	Name       string
	Definition fsm.Definition[T]
}

// Registry resolves the hook and condition names used in a document
type Registry[T any] struct {
	Conditions map[string]fsm.Condition[T]
	Hooks      map[string]func(data any)
}

// NewRegistry creates an empty registry
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		Conditions: make(map[string]fsm.Condition[T]),
		Hooks:      make(map[string]func(data any)),
	}
}

// Condition registers a named condition
func (r *Registry[T]) Condition(name string, cond fsm.Condition[T]) *Registry[T] {
	r.Conditions[name] = cond
	return r
}

// Hook registers a named hook
func (r *Registry[T]) Hook(name string, fn func(data any)) *Registry[T] {
	r.Hooks[name] = fn
	return r
}

type documentFile struct {
	Name        string                `mapstructure:"name"`
	BaseState   string                `mapstructure:"baseState"`
	States      map[string]stateEntry `mapstructure:"states"`
	Transitions map[string]any        `mapstructure:"transitions"`
}

type stateEntry struct {
	OnEnter string `mapstructure:"onEnter"`
	OnLeave string `mapstructure:"onLeave"`
}

type ruleEntry struct {
	From      string `mapstructure:"from"`
	To        string `mapstructure:"to"`
	Condition string `mapstructure:"condition"`
	Data      any    `mapstructure:"data"`
}

// LoadFile reads a document from disk. The format follows the file
// extension: ".json" is JSON, anything else YAML.
func LoadFile[T any](path string, reg *Registry[T]) (*Document[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open definition: %w", err)
	}
	defer f.Close()

	format := YAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = JSON
	}

	doc, err := Load(f, format, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Load reads a document from r
func Load[T any](r io.Reader, format Format, reg *Registry[T]) (*Document[T], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	return Parse(data, format, reg)
}

// Parse decodes a document and resolves its names through reg. The result
// is checked with Definition.Validate, so rules pointing at undefined states
// are rejected here even though fsm.New would accept them.
func Parse[T any](data []byte, format Format, reg *Registry[T]) (*Document[T], error) {
	var raw map[string]any
	switch format {
	case JSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	if raw == nil {
		return nil, fmt.Errorf("empty definition")
	}

	var file documentFile
	if err := decode(raw, &file); err != nil {
		return nil, err
	}

	if reg == nil {
		reg = NewRegistry[T]()
	}

	def, err := buildDefinition(file, reg)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &Document[T]{Name: file.Name, Definition: def}, nil
}

func decode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("invalid definition: %w", err)
	}
	return nil
}

func buildDefinition[T any](file documentFile, reg *Registry[T]) (fsm.Definition[T], error) {
	def := fsm.Definition[T]{
		BaseState:   fsm.StateID(file.BaseState),
		States:      make(map[fsm.StateID]fsm.State, len(file.States)),
		Transitions: make(map[fsm.ActionID][]fsm.Rule[T], len(file.Transitions)),
	}

	for id, s := range file.States {
		state, err := s.resolve(reg.Hooks)
		if err != nil {
			return def, fmt.Errorf("state '%s': %w", id, err)
		}
		def.States[fsm.StateID(id)] = state
	}

	for action, value := range file.Transitions {
		var entries []ruleEntry
		if err := decode(asList(value), &entries); err != nil {
			return def, fmt.Errorf("transition '%s': %w", action, err)
		}

		rules := make([]fsm.Rule[T], 0, len(entries))
		for i, e := range entries {
			rule := fsm.Rule[T]{
				From: fsm.StateID(e.From),
				To:   fsm.StateID(e.To),
				Data: e.Data,
			}
			if e.Condition != "" {
				cond, ok := reg.Conditions[e.Condition]
				if !ok {
					return def, fmt.Errorf("transition '%s' rule %d: unknown condition '%s'", action, i, e.Condition)
				}
				rule.Condition = cond
				rule.GuardName = e.Condition
			}
			rules = append(rules, rule)
		}
		def.Transitions[fsm.ActionID(action)] = rules
	}

	return def, nil
}

func (s stateEntry) resolve(hooks map[string]func(data any)) (fsm.State, error) {
	var state fsm.StateFuncs
	if s.OnEnter != "" {
		fn, ok := hooks[s.OnEnter]
		if !ok {
			return nil, fmt.Errorf("unknown hook '%s'", s.OnEnter)
		}
		state.Enter = fn
	}
	if s.OnLeave != "" {
		fn, ok := hooks[s.OnLeave]
		if !ok {
			return nil, fmt.Errorf("unknown hook '%s'", s.OnLeave)
		}
		state.Leave = fn
	}
	return state, nil
}

// asList normalises a transition value to a list of rules
func asList(value any) []any {
	if list, ok := value.([]any); ok {
		return list
	}
	return []any{value}
}
