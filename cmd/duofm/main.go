// Package main is the entry point for the duofm dual-panel file manager.
//
// Startup sequence: initialize logging, load configuration from the XDG
// config directory, start the filesystem watcher, then hand the terminal
// to Bubble Tea in alt-screen mode. Command-line flags override the
// corresponding config file settings for this run only.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"duofm/internal/config"
	"duofm/internal/job"
	"duofm/internal/logging"
	"duofm/internal/tui"
	"duofm/internal/watch"
)

var (
	flagStartDir   string
	flagShowHidden bool
	flagTheme      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "duofm [directory]",
		Short: "A dual-panel terminal file manager",
		Long: "duofm is a dual-panel terminal file manager with background\n" +
			"copy/move/delete jobs, conflict prompts and live directory refresh.",
		Args: cobra.MaximumNArgs(1),
		RunE: run,

		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&flagStartDir, "start-dir", "", "directory both panels open on")
	rootCmd.Flags().BoolVar(&flagShowHidden, "show-hidden", false, "show dot-prefixed entries")
	rootCmd.Flags().StringVar(&flagTheme, "theme", "", "color theme (dark or light)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := logging.NewAppLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Error loading config", "error", err)
		return err
	}

	if cmd.Flags().Changed("show-hidden") {
		cfg.ShowHidden = flagShowHidden
	}
	if flagTheme != "" {
		cfg.Theme = flagTheme
	}
	startDir := cfg.StartDir
	if flagStartDir != "" {
		startDir = flagStartDir
	}
	if len(args) == 1 {
		startDir = args[0]
	}

	runner := job.NewRunner(logger)

	// The watcher is best-effort; without it the panels refresh on
	// navigation and after jobs only.
	watcher, err := watch.New(logger)
	if err != nil {
		logger.Warn("filesystem watcher unavailable", "error", err)
		watcher = nil
	}

	model, err := tui.NewMainModel(cfg, logger, runner, watcher, startDir)
	if err != nil {
		logger.Error("Error initializing interface", "error", err)
		return err
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error("Error running interface", "error", err)
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}
