package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nao1215/markdown"
	"github.com/nao1215/techtally/internal/database"
	"github.com/spf13/cobra"
)

// Bucket change states.
const (
	bucketNew       = "new"
	bucketRemoved   = "removed"
	bucketChanged   = "changed"
	bucketUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares count results stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the latest counts with a previous run",
		Long: `Compare displays differences between the latest run and a previous one.

For every technology bucket it shows the previous count, the current count
and the change, and it marks buckets that appeared or disappeared.

The comparison requires at least two runs with counts in the history
database. Use 'techtally history' to see the stored runs.

Examples:
  # Compare the latest two runs
  techtally compare

  # Compare the latest run with run 5
  techtally compare --with-run-id 5

  # Output comparison in JSON format
  techtally compare --json`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific run by ID (use 'techtally history' to see available IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

func runCompareCmd(cmd *cobra.Command, _ []string) error {
	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	previous, current, err := selectRuns(ctx, db, withRunID)
	if err != nil {
		return err
	}

	comparison := compareRuns(previous, current)

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		return writeJSON(out, comparison)
	case markdownOutput:
		return outputComparisonMarkdown(out, comparison)
	default:
		return outputComparisonText(out, comparison)
	}
}

// selectRuns returns the previous and current runs to compare.
// The current run is always the latest run with counts.
func selectRuns(ctx context.Context, db *database.HistoryDB, withRunID int64) (*database.RunRecord, *database.RunRecord, error) {
	latest, err := db.GetLatestRuns(ctx, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run history: %w", err)
	}
	if len(latest) == 0 {
		return nil, nil, errors.New("no runs with counts found (use 'techtally count' first)")
	}
	current := latest[0]

	if withRunID == 0 {
		if len(latest) < 2 {
			return nil, nil, fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(latest))
		}
		return latest[1], current, nil
	}

	if withRunID == current.ID {
		return nil, nil, fmt.Errorf("run %d is the latest run; choose an earlier run", withRunID)
	}
	previous, err := db.GetRun(ctx, withRunID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run with ID %d: %w", withRunID, err)
	}
	if previous == nil {
		return nil, nil, fmt.Errorf("run with ID %d not found", withRunID)
	}
	if previous.Run.Counts == nil {
		return nil, nil, fmt.Errorf("run with ID %d has no counts", withRunID)
	}
	return previous, current, nil
}

// ComparisonResult holds the result of comparing the counts of two runs.
type ComparisonResult struct {
	// PreviousRun contains metadata about the older run.
	PreviousRun RunSummary `json:"previous_run"`

	// CurrentRun contains metadata about the latest run.
	CurrentRun RunSummary `json:"current_run"`

	// Buckets lists every bucket of either run: current buckets in count
	// order, then removed buckets in their previous order.
	Buckets []BucketDelta `json:"buckets"`

	// NewBuckets are buckets only the current run has.
	NewBuckets []string `json:"new_buckets,omitempty"`

	// RemovedBuckets are buckets only the previous run has.
	RemovedBuckets []string `json:"removed_buckets,omitempty"`

	// TotalDelta is the change in total mentions.
	TotalDelta int `json:"total_delta"`
}

// RunSummary contains metadata about a run for comparison display.
type RunSummary struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Source      string `json:"source,omitempty"`
	BucketCount int    `json:"bucket_count"`
	Total       int    `json:"total"`
}

// BucketDelta is the change of one bucket between two runs.
type BucketDelta struct {
	Bucket   string `json:"bucket"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
	Delta    int    `json:"delta"`
	Status   string `json:"status"`
}

func summarize(record *database.RunRecord) RunSummary {
	counts := record.Run.Counts
	return RunSummary{
		ID:          record.ID,
		Date:        record.Run.StartedAt.Local().Format("2006-01-02 15:04:05"),
		Source:      counts.Source,
		BucketCount: len(counts.Entries),
		Total:       counts.Total,
	}
}

// compareRuns compares the counts of two runs. Both runs must have counts.
func compareRuns(previous, current *database.RunRecord) *ComparisonResult {
	prev := previous.Run.Counts
	cur := current.Run.Counts

	result := &ComparisonResult{
		PreviousRun: summarize(previous),
		CurrentRun:  summarize(current),
		Buckets:     make([]BucketDelta, 0, len(cur.Entries)),
		TotalDelta:  cur.Total - prev.Total,
	}

	for _, e := range cur.Entries {
		d := BucketDelta{Bucket: e.Bucket, Current: e.Count}
		if before, ok := prev.Lookup(e.Bucket); ok {
			d.Previous = before
			d.Delta = e.Count - before
			d.Status = bucketUnchanged
			if d.Delta != 0 {
				d.Status = bucketChanged
			}
		} else {
			d.Delta = e.Count
			d.Status = bucketNew
			result.NewBuckets = append(result.NewBuckets, e.Bucket)
		}
		result.Buckets = append(result.Buckets, d)
	}

	for _, e := range prev.Entries {
		if _, ok := cur.Lookup(e.Bucket); ok {
			continue
		}
		result.Buckets = append(result.Buckets, BucketDelta{
			Bucket:   e.Bucket,
			Previous: e.Count,
			Delta:    -e.Count,
			Status:   bucketRemoved,
		})
		result.RemovedBuckets = append(result.RemovedBuckets, e.Bucket)
	}

	return result
}

// outputComparisonText outputs the comparison result as console tables.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(out, "Run Comparison: #%d -> #%d\n", result.PreviousRun.ID, result.CurrentRun.ID)
	fmt.Fprintf(out, "\nPrevious run: %s\n", result.PreviousRun.Date)
	fmt.Fprintf(out, "Current run:  %s\n\n", result.CurrentRun.Date)

	t := newTable(out)
	t.AppendHeader(table.Row{"Technology", "Previous", "Current", "Change", ""})
	for _, b := range result.Buckets {
		t.AppendRow(table.Row{b.Bucket, b.Previous, b.Current, formatDelta(b.Delta), statusMark(b.Status)})
	}
	t.AppendFooter(table.Row{"Total", result.PreviousRun.Total, result.CurrentRun.Total, formatDelta(result.TotalDelta), ""})
	t.Render()

	if len(result.NewBuckets) > 0 {
		fmt.Fprintf(out, "\nNew buckets (%d):\n", len(result.NewBuckets))
		for _, b := range result.NewBuckets {
			fmt.Fprintf(out, "  [+] %s\n", b)
		}
	}
	if len(result.RemovedBuckets) > 0 {
		fmt.Fprintf(out, "\nRemoved buckets (%d):\n", len(result.RemovedBuckets))
		for _, b := range result.RemovedBuckets {
			fmt.Fprintf(out, "  [-] %s\n", b)
		}
	}
	return nil
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1(fmt.Sprintf("Run Comparison: #%d -> #%d", result.PreviousRun.ID, result.CurrentRun.ID))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Date", "Buckets", "Total"},
		Rows: [][]string{
			{"Previous", result.PreviousRun.Date, strconv.Itoa(result.PreviousRun.BucketCount), strconv.Itoa(result.PreviousRun.Total)},
			{"Current", result.CurrentRun.Date, strconv.Itoa(result.CurrentRun.BucketCount), strconv.Itoa(result.CurrentRun.Total)},
		},
	})
	md.PlainText("")

	md.H2("Buckets")
	md.PlainText("")
	rows := make([][]string, 0, len(result.Buckets)+1)
	for _, b := range result.Buckets {
		name := b.Bucket
		if b.Status == bucketRemoved {
			name = "~~" + name + "~~"
		}
		rows = append(rows, []string{name, strconv.Itoa(b.Previous), strconv.Itoa(b.Current), formatDelta(b.Delta), b.Status})
	}
	rows = append(rows, []string{
		"**Total**",
		"**" + strconv.Itoa(result.PreviousRun.Total) + "**",
		"**" + strconv.Itoa(result.CurrentRun.Total) + "**",
		"**" + formatDelta(result.TotalDelta) + "**",
		"",
	})
	md.Table(markdown.TableSet{
		Header: []string{"Technology", "Previous", "Current", "Change", "Status"},
		Rows:   rows,
	})

	if len(result.NewBuckets) > 0 {
		md.PlainText("")
		md.H2(fmt.Sprintf("New Buckets (%d)", len(result.NewBuckets)))
		md.PlainText("")
		md.BulletList(result.NewBuckets...)
	}
	if len(result.RemovedBuckets) > 0 {
		md.PlainText("")
		md.H2(fmt.Sprintf("Removed Buckets (%d)", len(result.RemovedBuckets)))
		md.PlainText("")
		md.BulletList(result.RemovedBuckets...)
	}

	return md.Build()
}

func statusMark(status string) string {
	switch status {
	case bucketNew:
		return "new"
	case bucketRemoved:
		return "removed"
	default:
		return ""
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
