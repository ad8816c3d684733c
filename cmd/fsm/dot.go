package main

import (
	"fmt"

	"github.com/anggasct/fsm/visualization"
	"github.com/spf13/cobra"
)

func newDotCmd(a *app) *cobra.Command {
	opts := visualization.DefaultDOTOptions()
	var output string
	var hideGuards bool

	cmd := &cobra.Command{
		Use:   "dot <file>",
		Short: "Render a definition as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0], a.logger)
			if err != nil {
				return err
			}

			opts.ShowGuardConditions = !hideGuards
			gen := visualization.NewDOTGenerator(doc.Definition, opts)
			if output != "" {
				if err := gen.GenerateToFile(output); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				a.logger.Debug("dot written")
				return nil
			}

			content, err := gen.Generate()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVar(&opts.RankDirection, "rankdir", opts.RankDirection, "Graph direction (TB, LR, BT, RL)")
	cmd.Flags().BoolVar(&hideGuards, "hide-guards", false, "Omit condition names from edge labels")
	return cmd
}
