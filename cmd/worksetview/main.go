// Package main is the entry point for the worksetview application.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	urfavecli "github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/chmouel/worksetview/internal/app"
	"github.com/chmouel/worksetview/internal/config"
	"github.com/chmouel/worksetview/internal/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cliApp := &urfavecli.App{
		Name:                 "worksetview",
		Usage:                "A TUI open-files sidebar with dirty flags and related-file lookup",
		ArgsUsage:            "[file ...]",
		Version:              buildVersion(),
		EnableBashCompletion: true,

		Flags: globalFlags(),

		Action: runTUI,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// runTUI launches the TUI with the files given as arguments opened.
func runTUI(c *urfavecli.Context) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("worksetview requires a terminal")
	}

	// Set up debug logging before loading config so config errors land in
	// the log too.
	if debugLog := c.String("debug-log"); debugLog != "" {
		expanded, err := config.ExpandPath(debugLog)
		if err != nil {
			expanded = debugLog
		}
		if err := log.SetFile(expanded); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening debug log file %q: %v\n", expanded, err)
		}
	}

	cfg, err := config.LoadConfig(c.String("config-file"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if c.String("debug-log") == "" {
		if cfg.DebugLog != "" {
			expanded, err := config.ExpandPath(cfg.DebugLog)
			path := cfg.DebugLog
			if err == nil {
				path = expanded
			}
			if err := log.SetFile(path); err != nil {
				fmt.Fprintf(os.Stderr, "Error opening debug log file from config %q: %v\n", path, err)
			}
		} else {
			// No debug log configured, discard any buffered logs.
			_ = log.SetFile("")
		}
	}

	if themeName := c.String("theme"); themeName != "" {
		cfg.Theme = themeName
	}
	if c.Bool("no-icons") {
		cfg.ShowIcons = false
	}
	if c.Bool("no-related") {
		cfg.RelatedFiles = false
	}
	if c.Bool("no-watch") {
		cfg.AutoRefresh = false
	}

	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	files := make([]string, 0, c.NArg())
	for _, arg := range c.Args().Slice() {
		expanded, err := config.ExpandPath(arg)
		if err != nil {
			expanded = arg
		}
		files = append(files, expanded)
	}

	model := app.NewModel(cfg, root, files)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		_ = log.Close()
		return err
	}

	if err := log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing debug log: %v\n", err)
	}
	return nil
}

// buildVersion resolves version metadata from build info when not set by
// the linker.
func buildVersion() string {
	v := version
	c := commit
	if c == "none" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					c = setting.Value
				}
			}
		}
	}
	return fmt.Sprintf("%s (commit: %s, built at: %s)", v, c, date)
}
