package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check definitions for consistency",
		Long: `Loads each definition and reports missing base states, rules that point
at undefined states and names the built-in registry does not know.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				doc, err := loadDocument(path, a.logger)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %v\n", err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%d states, %d actions)\n",
					path, len(doc.Definition.States), len(doc.Definition.Transitions))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d definitions are invalid", failed, len(args))
			}
			return nil
		},
	}
}
