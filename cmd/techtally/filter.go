package main

import (
	"github.com/nao1215/techtally/internal/config"
	"github.com/nao1215/techtally/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewFilterCmd creates the filter command.
func NewFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Keep the listings of the target category",
		Long: `Filter fetches every listing URL of the input file and keeps the ones whose
category element contains the target category (case-insensitive).

The input is a JSON array of URLs. The output maps each kept URL to the text
of its category element. Pages that fail to load, answer with a status
other than 200, or lack the category element are logged and skipped.

Examples:
  # Filter hrefs.json into filtered_results.json
  techtally filter

  # Keep data listings instead of development ones
  techtally filter --target Data

  # Send a session cookie with every request
  techtally filter -H Cookie=session=abc123`,
		Args: cobra.NoArgs,
		RunE: runFilterCmd,
	}

	cmd.Flags().StringP("input", "i", config.DefaultURLsFile,
		"JSON array of listing URLs")
	cmd.Flags().StringP("output", "o", config.DefaultFilteredFile,
		"Output file of kept URLs and their category text")
	cmd.Flags().String("target", config.DefaultTargetCategory,
		"Category a listing must contain to be kept")
	cmd.Flags().String("selector", config.DefaultCategorySelector,
		"CSS selector of the category element")
	addHTTPFlags(cmd)

	return cmd
}

func runFilterCmd(cmd *cobra.Command, _ []string) error {
	bindings := append([]binding{
		stringFlag("input", func(c *config.Config) *string { return &c.URLsFile }),
		stringFlag("output", func(c *config.Config) *string { return &c.FilteredFile }),
		stringFlag("target", func(c *config.Config) *string { return &c.TargetCategory }),
		stringFlag("selector", func(c *config.Config) *string { return &c.CategorySelector }),
	}, httpBindings()...)

	cfg, err := buildConfig(cmd, bindings...)
	if err != nil {
		return err
	}
	return runStages(cmd, cfg, pipeline.StageFilter)
}
