package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/fsm"
)

// Graph is the part of a definition needed to draw it
type Graph struct {
	BaseState fsm.StateID
	States    []fsm.StateID
	Edges     []Edge
}

// Edge is one rule drawn as an arrow
type Edge struct {
	From   fsm.StateID
	To     fsm.StateID
	Action fsm.ActionID
	Guard  string
	// Index is the position of the rule among the rules of its action
	Index int
	// Shared is true when the action has more than one rule
	Shared bool
}

// GraphOf extracts a Graph from a definition. Edges are ordered by action,
// then by rule position.
func GraphOf[T any](def fsm.Definition[T]) Graph {
	g := Graph{
		BaseState: def.BaseState,
		States:    def.StateIDs(),
	}
	for _, action := range def.Actions() {
		rules := def.Transitions[action]
		for i, r := range rules {
			guard := r.GuardName
			if guard == "" && r.Guarded() {
				guard = "guarded"
			}
			g.Edges = append(g.Edges, Edge{
				From:   r.From,
				To:     r.To,
				Action: action,
				Guard:  guard,
				Index:  i,
				Shared: len(rules) > 1,
			})
		}
	}
	return g
}

// DOTGenerator generates Graphviz DOT format representations of state machines
type DOTGenerator struct {
	graph   Graph
	current fsm.StateID
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowGuardConditions bool
	ShowRuleOrder       bool
	RankDirection       string // "TB", "LR", "BT", "RL"
	NodeShape           string
	TransitionStyle     string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowGuardConditions: true,
		ShowRuleOrder:       true,
		RankDirection:       "LR",
		NodeShape:           "box",
		TransitionStyle:     "solid",
	}
}

// NewDOTGenerator creates a new DOT generator for the given definition
func NewDOTGenerator[T any](def fsm.Definition[T], options ...DOTOptions) *DOTGenerator {
	return newDOTGenerator(GraphOf(def), "", options)
}

// NewMachineDOTGenerator draws the definition of a running machine and
// highlights its current state
func NewMachineDOTGenerator[T any](m *fsm.Machine[T], options ...DOTOptions) *DOTGenerator {
	return newDOTGenerator(GraphOf(m.Definition()), m.CurrentState(), options)
}

func newDOTGenerator(graph Graph, current fsm.StateID, options []DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}
	return &DOTGenerator{graph: graph, current: current, options: opts}
}

// Generate creates a DOT representation of the state machine
func (g *DOTGenerator) Generate() (string, error) {
	var dot strings.Builder

	dot.WriteString("digraph StateMachine {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	g.generateStates(&dot)
	g.generateTransitions(&dot)

	dot.WriteString("}\n")

	return dot.String(), nil
}

func (g *DOTGenerator) generateStates(dot *strings.Builder) {
	dot.WriteString("  // States\n")

	defined := make(map[fsm.StateID]bool, len(g.graph.States))
	for _, id := range g.graph.States {
		defined[id] = true
		fillColor := "lightblue"
		label := string(id)

		if id == g.graph.BaseState {
			fillColor = "lightgreen"
			label += "\\n(base)"
		}
		if g.current != "" && id == g.current {
			fillColor = "gold"
		}

		dot.WriteString(fmt.Sprintf("  %s [style=\"filled\" fillcolor=%s label=%s];\n",
			quote(string(id)), fillColor, quote(label)))
	}

	// rules may point at states the definition never declared
	for _, e := range g.graph.Edges {
		for _, id := range []fsm.StateID{e.From, e.To} {
			if !defined[id] {
				defined[id] = true
				dot.WriteString(fmt.Sprintf("  %s [style=\"dashed\" color=red label=%s];\n",
					quote(string(id)), quote(string(id)+"\\n(undefined)")))
			}
		}
	}
	dot.WriteString("\n")
}

func (g *DOTGenerator) generateTransitions(dot *strings.Builder) {
	dot.WriteString("  // Transitions\n")

	for _, e := range g.graph.Edges {
		label := string(e.Action)
		if g.options.ShowGuardConditions && e.Guard != "" {
			label += fmt.Sprintf(" [%s]", e.Guard)
		}
		if g.options.ShowRuleOrder && e.Shared {
			label += fmt.Sprintf(" #%d", e.Index+1)
		}
		dot.WriteString(fmt.Sprintf("  %s -> %s [label=%s style=%s];\n",
			quote(string(e.From)), quote(string(e.To)), quote(label), g.options.TransitionStyle))
	}
}

// quote escapes a DOT identifier. Backslash sequences such as \n are kept
// because DOT interprets them in labels.
func quote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// SVGGenerator generates SVG representations by calling Graphviz
type SVGGenerator struct {
	dotGenerator *DOTGenerator
}

// NewSVGGenerator creates a new SVG generator
func NewSVGGenerator[T any](def fsm.Definition[T], options ...DOTOptions) *SVGGenerator {
	return &SVGGenerator{
		dotGenerator: NewDOTGenerator(def, options...),
	}
}

// Generate creates an SVG representation of the state machine
func (g *SVGGenerator) Generate() (string, error) {
	dotContent, err := g.dotGenerator.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}

// GenerateSVG creates an SVG representation of the state machine
func (g *DOTGenerator) GenerateSVG() (string, error) {
	svgGen := &SVGGenerator{dotGenerator: g}
	return svgGen.Generate()
}
