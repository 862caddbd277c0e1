package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hairizuanbinnoorazman/design-testgen/runner"
	"github.com/spf13/cobra"
)

var runTestsCmd = &cobra.Command{
	Use:   "runtests",
	Short: "Run the generated tests in the output directory",
	Long: `Run the configured test command (pytest -s by default) inside the output
directory. The command's exit status is reported but does not fail testgen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log := newLogger(cfg)

		if _, err := os.Stat(cfg.Output.Dir); err != nil {
			return fmt.Errorf("output directory not available: %w", err)
		}

		r := runner.New(runner.Config{
			Command: cfg.Runner.Command,
			Args:    cfg.Runner.Args,
			Dir:     cfg.Output.Dir,
		}, cmd.OutOrStdout(), log)

		report, err := r.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "tests finished with exit code %d in %s\n", report.ExitCode, report.Duration)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runTestsCmd)
}
