package main

import (
	"fmt"
	"strings"

	"github.com/anggasct/fsm"
	"github.com/anggasct/fsm/pkg/observers"
	"github.com/spf13/cobra"
)

type step struct {
	action fsm.ActionID
	arg    string
}

func (s step) String() string {
	if s.arg == "" {
		return string(s.action)
	}
	return fmt.Sprintf("%s(%s)", s.action, s.arg)
}

// parseSteps reads "action" or "action=arg" tokens
func parseSteps(args []string) ([]step, error) {
	steps := make([]step, 0, len(args))
	for _, raw := range args {
		action, arg, _ := strings.Cut(raw, "=")
		if action == "" {
			return nil, fmt.Errorf("invalid step '%s': action is empty", raw)
		}
		steps = append(steps, step{action: fsm.ActionID(action), arg: arg})
	}
	return steps, nil
}

func newRunCmd(a *app) *cobra.Command {
	var coverage bool

	cmd := &cobra.Command{
		Use:   "run <file> [action[=arg]]...",
		Short: "Replay actions against a definition",
		Long: `Builds a machine from the definition and applies each action in order.
The text after '=' is passed to the rule conditions (truthy, falsy, nonempty).
An action that does not apply is reported and the run goes on.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0], a.logger)
			if err != nil {
				return err
			}
			steps, err := parseSteps(args[1:])
			if err != nil {
				return err
			}

			name := doc.Name
			if name == "" {
				name = "fsm"
			}
			validation := observers.NewValidationObserverFor(doc.Definition)
			m, err := fsm.New(doc.Definition,
				fsm.WithName(name),
				fsm.WithObserver(observers.NewLoggingObserver(a.logger)),
				fsm.WithObserver(validation),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "start  %s\n", m.CurrentState())
			for _, s := range steps {
				from := m.CurrentState()
				if m.On(s.action, s.arg) {
					fmt.Fprintf(out, "%-6s %s: %s -> %s\n", "ok", s, from, m.CurrentState())
				} else {
					fmt.Fprintf(out, "%-6s %s: stays in %s\n", "skip", s, from)
				}
			}
			fmt.Fprintf(out, "final  %s\n", m.CurrentState())

			if coverage {
				unvisited := validation.UnvisitedStates()
				if len(unvisited) == 0 {
					fmt.Fprintln(out, "all states visited")
				} else {
					names := make([]string, len(unvisited))
					for i, id := range unvisited {
						names[i] = string(id)
					}
					fmt.Fprintf(out, "unvisited: %s\n", strings.Join(names, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&coverage, "coverage", false, "Report states the run never entered")
	return cmd
}
