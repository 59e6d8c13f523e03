package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/techtally/internal/database"
	"github.com/nao1215/techtally/internal/model"
)

func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	flagsWithShort := map[string]string{
		"with-run-id": "i",
		"json":        "j",
		"markdown":    "m",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}
}

func record(id int64, entries ...model.CountEntry) *database.RunRecord {
	total := 0
	for _, e := range entries {
		total += e.Count
	}
	return &database.RunRecord{
		ID: id,
		Run: &model.Run{
			StartedAt: time.Date(2025, 3, int(id), 12, 0, 0, 0, time.UTC),
			Counts:    &model.CountReport{Entries: entries, Total: total},
		},
	}
}

// TestCompareRuns tests the per-bucket diff.
func TestCompareRuns(t *testing.T) {
	t.Parallel()

	previous := record(1,
		model.CountEntry{Bucket: "PHP", Count: 5},
		model.CountEntry{Bucket: "Go", Count: 2},
		model.CountEntry{Bucket: "Dart", Count: 1},
	)
	current := record(2,
		model.CountEntry{Bucket: "Go", Count: 4},
		model.CountEntry{Bucket: "PHP", Count: 5},
		model.CountEntry{Bucket: "Swift", Count: 1},
	)

	result := compareRuns(previous, current)

	want := []BucketDelta{
		{Bucket: "Go", Previous: 2, Current: 4, Delta: 2, Status: bucketChanged},
		{Bucket: "PHP", Previous: 5, Current: 5, Delta: 0, Status: bucketUnchanged},
		{Bucket: "Swift", Previous: 0, Current: 1, Delta: 1, Status: bucketNew},
		{Bucket: "Dart", Previous: 1, Current: 0, Delta: -1, Status: bucketRemoved},
	}
	if diff := cmp.Diff(want, result.Buckets); diff != "" {
		t.Errorf("buckets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Swift"}, result.NewBuckets); diff != "" {
		t.Errorf("new buckets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Dart"}, result.RemovedBuckets); diff != "" {
		t.Errorf("removed buckets mismatch (-want +got):\n%s", diff)
	}
	if result.TotalDelta != 2 {
		t.Errorf("expected total delta 2, got %d", result.TotalDelta)
	}
	if result.PreviousRun.ID != 1 || result.CurrentRun.ID != 2 {
		t.Errorf("unexpected run ids %d/%d", result.PreviousRun.ID, result.CurrentRun.ID)
	}
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	for delta, want := range map[int]string{3: "+3", 0: "0", -2: "-2"} {
		if got := formatDelta(delta); got != want {
			t.Errorf("formatDelta(%d) = %q, want %q", delta, got, want)
		}
	}
}

// TestComparisonOutput tests the text and Markdown renderings.
func TestComparisonOutput(t *testing.T) {
	t.Parallel()

	result := compareRuns(
		record(1, model.CountEntry{Bucket: "Dart", Count: 1}),
		record(2, model.CountEntry{Bucket: "Go", Count: 3}),
	)

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := outputComparisonText(&buf, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Run Comparison: #1 -> #2", "+3", "New buckets (1)", "[+] Go", "Removed buckets (1)", "[-] Dart"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := outputComparisonMarkdown(&buf, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"# Run Comparison: #1 -> #2", "## Buckets", "~~Dart~~", "## New Buckets (1)", "**+2**"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
			}
		}
	})
}

// TestCompareCmd tests run selection against a real history database.
func TestCompareCmd(t *testing.T) {
	t.Parallel()

	t.Run("latest two runs as JSON", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		seedHistory(t, dir,
			[]model.CountEntry{{Bucket: "Go", Count: 1}},
			[]model.CountEntry{{Bucket: "Go", Count: 2}},
			[]model.CountEntry{{Bucket: "Go", Count: 5}},
		)

		out, err := executeRoot(t, "--data-dir", dir, "compare", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var result ComparisonResult
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("expected JSON, got %q: %v", out, err)
		}
		if result.PreviousRun.ID != 2 || result.CurrentRun.ID != 3 {
			t.Errorf("expected runs 2 -> 3, got %d -> %d", result.PreviousRun.ID, result.CurrentRun.ID)
		}
		if result.TotalDelta != 3 {
			t.Errorf("expected total delta 3, got %d", result.TotalDelta)
		}
	})

	t.Run("with a specific run", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		seedHistory(t, dir,
			[]model.CountEntry{{Bucket: "Go", Count: 1}},
			[]model.CountEntry{{Bucket: "Go", Count: 2}},
			[]model.CountEntry{{Bucket: "Go", Count: 5}},
		)

		out, err := executeRoot(t, "--data-dir", dir, "compare", "--with-run-id", "1", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var result ComparisonResult
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("expected JSON, got %q: %v", out, err)
		}
		if result.PreviousRun.ID != 1 || result.TotalDelta != 4 {
			t.Errorf("unexpected comparison %+v", result)
		}
	})

	tests := []struct {
		name    string
		runs    int
		args    []string
		wantErr string
	}{
		{name: "no runs", runs: 0, wantErr: "no runs with counts"},
		{name: "single run", runs: 1, wantErr: "at least 2 runs"},
		{name: "unknown run id", runs: 2, args: []string{"--with-run-id", "42"}, wantErr: "not found"},
		{name: "latest run id", runs: 2, args: []string{"--with-run-id", "2"}, wantErr: "latest run"},
		{name: "json and markdown", runs: 2, args: []string{"--json", "--markdown"}, wantErr: "none of the others"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			for i := 0; i < tt.runs; i++ {
				seedHistory(t, dir, []model.CountEntry{{Bucket: "Go", Count: i + 1}})
			}

			args := append([]string{"--data-dir", dir, "compare"}, tt.args...)
			_, err := executeRoot(t, args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
