package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for techtally.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "techtally",
		Short: "Tally technology mentions in job listings",
		Long: `techtally scrapes job listing pages and counts how often each programming
language or technology is mentioned.

The work is split into four stages that hand JSON files to each other:
filter, categorize, merge and count. Run them one by one or all at once
with 'techtally run'. Every count is stored in a local history database so
that runs can be compared later.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .techtally in current or home directory)")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory of the history database (default: XDG data directory)")

	// Stage commands
	cmd.AddCommand(NewFilterCmd())
	cmd.AddCommand(NewCategorizeCmd())
	cmd.AddCommand(NewMergeCmd())
	cmd.AddCommand(NewCountCmd())
	cmd.AddCommand(NewRunCmd())

	// History commands
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
