package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nao1215/techtally/internal/config"
	"github.com/nao1215/techtally/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored runs",
		Long: `History lists the runs stored in the history database, newest first.

Every 'techtally count' and 'techtally run' stores one run unless
--no-history is given. With --run-id, the stages, counts and skipped pages
of a single run are shown.

Examples:
  # List all runs
  techtally history

  # Show the details of run 3
  techtally history --run-id 3

  # Output as JSON
  techtally history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("run-id", "r", 0,
		"Show the details of a single run")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// dataDir returns the history database directory for the command.
func dataDir(cmd *cobra.Command) string {
	if dir := getInheritedString(cmd, "data-dir"); dir != "" {
		return dir
	}
	return config.XDGDataDir()
}

// openHistory opens the history database of the command.
func openHistory(cmd *cobra.Command) (*database.HistoryDB, error) {
	db, err := database.Open(dataDir(cmd), database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	runID, err := cmd.Flags().GetInt64("run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
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
	out := cmd.OutOrStdout()

	if runID > 0 {
		return showRun(ctx, db, runID, jsonOutput, out)
	}
	return listRuns(ctx, db, jsonOutput, out)
}

// newTable creates a console table writing to out.
func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// listRuns prints the metadata of every stored run.
func listRuns(ctx context.Context, db *database.HistoryDB, jsonOutput bool, out io.Writer) error {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if jsonOutput {
		if runs == nil {
			runs = []database.RunMetadata{}
		}
		return writeJSON(out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found in the history database.")
		fmt.Fprintln(out, "\nUse 'techtally count' or 'techtally run' to record one.")
		return nil
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Date", "Source", "Buckets", "Total"})
	for _, meta := range runs {
		t.AppendRow(table.Row{
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			meta.Source,
			meta.BucketCount,
			meta.Total,
		})
	}
	t.Render()

	fmt.Fprintln(out, "\nUse 'techtally history --run-id <id>' to see the details of a run.")
	fmt.Fprintln(out, "Use 'techtally compare' to compare the latest two runs.")
	return nil
}

// showRun prints the stages, counts and skipped pages of one run.
func showRun(ctx context.Context, db *database.HistoryDB, id int64, jsonOutput bool, out io.Writer) error {
	record, err := db.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", id, err)
	}
	if record == nil {
		return fmt.Errorf("run with ID %d not found", id)
	}

	if jsonOutput {
		return writeJSON(out, record)
	}

	run := record.Run
	fmt.Fprintf(out, "Run %d (%s)\n", record.ID, run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", run.ErrorMessage)
	}

	if len(run.Stages) > 0 {
		fmt.Fprintln(out, "\nStages:")
		t := newTable(out)
		t.AppendHeader(table.Row{"Stage", "Input", "Output", "Processed", "Kept", "Skipped", "Duration"})
		for _, s := range run.Stages {
			output := s.Output
			if output == "" {
				output = "-"
			}
			t.AppendRow(table.Row{s.Name, s.Input, output, s.Processed, s.Kept, s.Skipped, s.Duration.Round(time.Millisecond).String()})
		}
		t.Render()
	}

	if run.Counts != nil {
		fmt.Fprintln(out, "\nCounts:")
		t := newTable(out)
		t.AppendHeader(table.Row{"Technology", "Count"})
		for _, e := range run.Counts.Entries {
			t.AppendRow(table.Row{e.Bucket, e.Count})
		}
		t.AppendFooter(table.Row{"Total Mentions", run.Counts.Total})
		t.Render()
	}

	if skipped := run.SkippedFetches(); len(skipped) > 0 {
		fmt.Fprintf(out, "\nSkipped pages (%d):\n", len(skipped))
		t := newTable(out)
		t.AppendHeader(table.Row{"Stage", "URL", "Outcome", "Status"})
		for _, f := range skipped {
			status := "-"
			if f.StatusCode != 0 {
				status = strconv.Itoa(f.StatusCode)
			}
			t.AppendRow(table.Row{f.Stage, f.URL, strings.ReplaceAll(string(f.Outcome), "_", " "), status})
		}
		t.Render()
	}

	return nil
}
