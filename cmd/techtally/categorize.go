package main

import (
	"github.com/nao1215/techtally/internal/config"
	"github.com/nao1215/techtally/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewCategorizeCmd creates the categorize command.
func NewCategorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Bucket filtered listings by technology keyword",
		Long: `Categorize fetches every URL of the filter output and scans the text of its
technology element for the keywords of the keyword table. A keyword matches
when it ends a line of that text, case-insensitively. Each URL is added to
the bucket of every keyword it matches.

When the filter output is empty, nothing is written.

Examples:
  # Categorize filtered_results.json into categorized_technologies.json
  techtally categorize

  # Use a different technology element
  techtally categorize --selector ".job-detail-des>li:nth-child(5)"`,
		Args: cobra.NoArgs,
		RunE: runCategorizeCmd,
	}

	cmd.Flags().StringP("input", "i", config.DefaultFilteredFile,
		"Filter output to categorize")
	cmd.Flags().StringP("output", "o", config.DefaultBucketsFile,
		"Output file of keyword buckets")
	cmd.Flags().String("selector", config.DefaultTechSelector,
		"CSS selector of the technology element")
	addHTTPFlags(cmd)

	return cmd
}

func runCategorizeCmd(cmd *cobra.Command, _ []string) error {
	bindings := append([]binding{
		stringFlag("input", func(c *config.Config) *string { return &c.FilteredFile }),
		stringFlag("output", func(c *config.Config) *string { return &c.BucketsFile }),
		stringFlag("selector", func(c *config.Config) *string { return &c.TechSelector }),
	}, httpBindings()...)

	cfg, err := buildConfig(cmd, bindings...)
	if err != nil {
		return err
	}
	return runStages(cmd, cfg, pipeline.StageCategorize)
}
