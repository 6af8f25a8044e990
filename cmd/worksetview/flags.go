// Package main provides CLI flag definitions for worksetview.
package main

import (
	urfavecli "github.com/urfave/cli/v2"
)

// globalFlags returns all global flags for the application.
// Note: --version is provided automatically by urfave/cli via App.Version
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the UI theme (dracula, nord, clean-light)",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.BoolFlag{
			Name:  "no-icons",
			Usage: "Disable file type icons in the sidebar",
		},
		&urfavecli.BoolFlag{
			Name:  "no-related",
			Usage: "Disable related-file lookup and badges",
		},
		&urfavecli.BoolFlag{
			Name:  "no-watch",
			Usage: "Disable watching open files for external changes",
		},
	}
}
