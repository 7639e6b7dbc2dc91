package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/groundcheck/groundcheck/internal/config"
	"github.com/groundcheck/groundcheck/internal/doctor"
)

// doctor deliberately skips config validation up front; an invalid
// configuration is a finding for the report, not a reason to bail.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostics on the groundcheck installation",
	Run: func(cmd *cobra.Command, args []string) {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		cfg, err := config.LoadUnvalidated(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read configuration: %v\n", err)
			os.Exit(1)
		}

		diags := doctor.NewRunner(cfg).RunAll(cmd.Context())
		diags.PrintReport()
		if diags.Status != "healthy" {
			os.Exit(1)
		}
	},
}
