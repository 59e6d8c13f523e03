package main

import (
	"github.com/nao1215/techtally/internal/config"
	"github.com/nao1215/techtally/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewCountCmd creates the count command.
func NewCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count the listings of each technology bucket",
		Long: `Count sizes every bucket of the merge output, prints a table sorted by count
(highest first, ties in bucket order) with the total number of mentions, and
writes the counts to a JSON file in the same order.

The result is also stored in the history database; see 'techtally history'
and 'techtally compare'.

Examples:
  # Count categorized_technologies_merged.json into technology_counts.json
  techtally count

  # Print a Markdown report with a pie chart
  techtally count --markdown --report-file report.md`,
		Args: cobra.NoArgs,
		RunE: runCountCmd,
	}

	cmd.Flags().StringP("input", "i", config.DefaultMergedFile,
		"Merged buckets to count")
	cmd.Flags().StringP("output", "o", config.DefaultCountsFile,
		"Output file of counts")
	addReportFlags(cmd)

	return cmd
}

func runCountCmd(cmd *cobra.Command, _ []string) error {
	bindings := append([]binding{
		stringFlag("input", func(c *config.Config) *string { return &c.MergedFile }),
		stringFlag("output", func(c *config.Config) *string { return &c.CountsFile }),
	}, reportBindings()...)

	cfg, err := buildConfig(cmd, bindings...)
	if err != nil {
		return err
	}
	return runStages(cmd, cfg, pipeline.StageCount)
}
