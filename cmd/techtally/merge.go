package main

import (
	"github.com/nao1215/techtally/internal/config"
	"github.com/nao1215/techtally/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewMergeCmd creates the merge command.
func NewMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Fold framework buckets into their base language",
		Long: `Merge applies the alias table to the categorize output in a single pass.
For each alias whose source bucket exists, the source URLs are added to the
target bucket (created if absent, duplicates dropped) and the source bucket
is removed. Chains are not followed.

Examples:
  # Merge categorized_technologies.json into categorized_technologies_merged.json
  techtally merge`,
		Args: cobra.NoArgs,
		RunE: runMergeCmd,
	}

	cmd.Flags().StringP("input", "i", config.DefaultBucketsFile,
		"Keyword buckets to merge")
	cmd.Flags().StringP("output", "o", config.DefaultMergedFile,
		"Output file of merged buckets")

	return cmd
}

func runMergeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd,
		stringFlag("input", func(c *config.Config) *string { return &c.BucketsFile }),
		stringFlag("output", func(c *config.Config) *string { return &c.MergedFile }),
	)
	if err != nil {
		return err
	}
	return runStages(cmd, cfg, pipeline.StageMerge)
}
