package main

import (
	"github.com/nao1215/techtally/internal/config"
	"github.com/nao1215/techtally/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run filter, categorize, merge and count in order",
		Long: `Run executes all four stages in order, each reading the file the previous
stage wrote. The run stops at the first stage that fails; files written by
the completed stages are kept.

Stage file names come from the configuration file (see 'techtally init').

Examples:
  # Full pipeline with defaults
  techtally run

  # Full pipeline, JSON report, no history entry
  techtally run --json --no-history`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	cmd.Flags().String("target", config.DefaultTargetCategory,
		"Category a listing must contain to be kept")
	cmd.Flags().String("category-selector", config.DefaultCategorySelector,
		"CSS selector of the category element")
	cmd.Flags().String("tech-selector", config.DefaultTechSelector,
		"CSS selector of the technology element")
	addHTTPFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

func runRunCmd(cmd *cobra.Command, _ []string) error {
	bindings := []binding{
		stringFlag("target", func(c *config.Config) *string { return &c.TargetCategory }),
		stringFlag("category-selector", func(c *config.Config) *string { return &c.CategorySelector }),
		stringFlag("tech-selector", func(c *config.Config) *string { return &c.TechSelector }),
	}
	bindings = append(bindings, httpBindings()...)
	bindings = append(bindings, reportBindings()...)

	cfg, err := buildConfig(cmd, bindings...)
	if err != nil {
		return err
	}
	return runStages(cmd, cfg, pipeline.AllStages()...)
}
