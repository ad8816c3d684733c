package main

import (
	"github.com/anggasct/fsm/pkg/observers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what the subcommands share once the root command has run
type app struct {
	cfg    Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "fsm",
		Short: "fsm works with flat state machine definitions",
		Long: `fsm loads state machine definitions written in YAML or JSON, checks them,
draws them as Graphviz DOT and replays actions against them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat, _ = cmd.Flags().GetString("log-format")
			}

			logger, err := observers.NewLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	// Persistent flags (available to all commands), overriding FSM_LOG_*
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")

	rootCmd.AddCommand(
		newValidateCmd(a),
		newDotCmd(a),
		newRunCmd(a),
	)
	return rootCmd
}
