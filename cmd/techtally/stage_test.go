package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/techtally/internal/config"
	"github.com/nao1215/techtally/internal/database"
	"github.com/nao1215/techtally/internal/report"
	"github.com/nao1215/techtally/internal/storage"
)

// workspace is a temporary directory holding the stage files, a config file
// pointing at them, and the history database.
type workspace struct {
	dir        string
	configPath string
	dataDir    string
}

func (w workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()

	dir := t.TempDir()
	w := workspace{
		dir:        dir,
		configPath: filepath.Join(dir, ".techtally"),
		dataDir:    filepath.Join(dir, "data"),
	}

	content := fmt.Sprintf(`files:
  urls: %q
  filtered: %q
  categories: %q
  merged: %q
  counts: %q
http:
  delay: 0s
  timeout: 5s
`,
		w.path("hrefs.json"),
		w.path("filtered_results.json"),
		w.path("categorized_technologies.json"),
		w.path("categorized_technologies_merged.json"),
		w.path("technology_counts.json"),
	)
	if err := os.WriteFile(w.configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return w
}

// execute runs the root command with the workspace config and data dir.
func (w workspace) execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"-c", w.configPath, "--data-dir", w.dataDir}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func listingPage(category, tech string) string {
	return `<html><body><ul class="job-detail-des">
<li>Company</li>
<li>Location</li>
<li><span class="tag-item">` + category + `</span></li>
<li>` + tech + `</li>
</ul></body></html>`
}

func newJobBoard(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/job/1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, listingPage("Development", "PHP\nLaravel\n"))
	})
	mux.HandleFunc("/job/2", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, listingPage("Web Development", "Python\nDjango\n"))
	})
	mux.HandleFunc("/job/3", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, listingPage("Design", "Figma\n"))
	})
	mux.HandleFunc("/job/4", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// TestRunCommand runs the full pipeline against a local job board.
func TestRunCommand(t *testing.T) {
	server := newJobBoard(t)
	w := newWorkspace(t)

	urls := []string{server.URL + "/job/1", server.URL + "/job/2", server.URL + "/job/3", server.URL + "/job/4"}
	hrefs, err := json.Marshal(urls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(w.path("hrefs.json"), hrefs, 0600); err != nil {
		t.Fatalf("failed to write hrefs: %v", err)
	}

	stdout, stderr, err := w.execute(t, "run")
	if err != nil {
		t.Fatalf("run failed: %v\nstderr: %s", err, stderr)
	}

	filtered, err := storage.ReadFiltered(w.path("filtered_results.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{urls[0], urls[1]}, filtered.Keys()); diff != "" {
		t.Errorf("filtered URLs mismatch (-want +got):\n%s", diff)
	}

	buckets, err := storage.ReadBuckets(w.path("categorized_technologies.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "Django\n" also ends with "go\n".
	if diff := cmp.Diff([]string{"PHP", "Laravel", "Go", "Python", "Django"}, buckets.Keys()); diff != "" {
		t.Errorf("bucket order mismatch (-want +got):\n%s", diff)
	}

	counts, err := storage.ReadCounts(w.path("technology_counts.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"PHP", "Go", "Python"}, counts.Keys()); diff != "" {
		t.Errorf("count order mismatch (-want +got):\n%s", diff)
	}

	for _, want := range []string{
		"PHP                  | 1",
		"TOTAL MENTIONS       | 3",
		"Summary saved to '" + w.path("technology_counts.json") + "'",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected stdout to contain %q, got:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "skipping") {
		t.Errorf("expected the 404 page to be logged as skipped, got:\n%s", stderr)
	}

	db, err := database.Open(w.dataDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		t.Fatalf("expected history database: %v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 1 || runs[0].Total != 3 {
		t.Fatalf("expected one stored run with total 3, got %+v", runs)
	}
	record, err := db.GetRun(context.Background(), runs[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"filter", "categorize", "merge", "count"}, record.Run.StageNames()); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
	if got := len(record.Run.SkippedFetches()); got != 1 {
		t.Errorf("expected 1 skipped fetch, got %d", got)
	}
}

// TestRunCommandNothingFiltered checks that a run keeping no listings does
// not count the bucket file of an earlier run.
func TestRunCommandNothingFiltered(t *testing.T) {
	server := newJobBoard(t)
	w := newWorkspace(t)

	if err := os.WriteFile(w.path("hrefs.json"), []byte(fmt.Sprintf(`["%s/job/3"]`, server.URL)), 0600); err != nil {
		t.Fatalf("failed to write hrefs: %v", err)
	}
	if err := os.WriteFile(w.path("categorized_technologies.json"), []byte(`{"Go": ["https://old/1"]}`), 0600); err != nil {
		t.Fatalf("failed to write buckets: %v", err)
	}

	stdout, stderr, err := w.execute(t, "run")
	if err != nil {
		t.Fatalf("run failed: %v\nstderr: %s", err, stderr)
	}
	if strings.Contains(stdout, "TOTAL MENTIONS") {
		t.Errorf("expected no count report, got:\n%s", stdout)
	}
	if _, err := os.Stat(w.path("technology_counts.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no counts file, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(w.dataDir, database.FileName)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no history database, got %v", err)
	}
}

// TestStageCommands runs merge and count on their own.
func TestStageCommands(t *testing.T) {
	t.Run("merge then count with JSON report and no history", func(t *testing.T) {
		w := newWorkspace(t)
		if err := os.WriteFile(w.path("categorized_technologies.json"),
			[]byte(`{"PHP": ["a", "b"], "Laravel": ["b", "c"], "Go": ["x"]}`), 0600); err != nil {
			t.Fatalf("failed to write buckets: %v", err)
		}

		if _, stderr, err := w.execute(t, "merge"); err != nil {
			t.Fatalf("merge failed: %v\nstderr: %s", err, stderr)
		}
		merged, err := storage.ReadBuckets(w.path("categorized_technologies_merged.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, _ := merged.Get("PHP"); !cmp.Equal(got, []string{"a", "b", "c"}) {
			t.Errorf("unexpected PHP bucket %v", got)
		}

		stdout, stderr, err := w.execute(t, "count", "--json", "--no-history")
		if err != nil {
			t.Fatalf("count failed: %v\nstderr: %s", err, stderr)
		}
		var decoded struct {
			Entries []struct {
				Bucket string `json:"bucket"`
				Count  int    `json:"count"`
			} `json:"entries"`
			Total int `json:"total"`
		}
		if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
			t.Fatalf("expected JSON report, got %q: %v", stdout, err)
		}
		if decoded.Total != 4 || decoded.Entries[0].Bucket != "PHP" {
			t.Errorf("unexpected report %+v", decoded)
		}
		if _, err := os.Stat(filepath.Join(w.dataDir, database.FileName)); !errors.Is(err, os.ErrNotExist) {
			t.Error("expected no history database with --no-history")
		}
	})

	t.Run("count writes the report to a file", func(t *testing.T) {
		w := newWorkspace(t)
		if err := os.WriteFile(w.path("categorized_technologies_merged.json"), []byte(`{"Go": ["x"]}`), 0600); err != nil {
			t.Fatalf("failed to write buckets: %v", err)
		}
		reportPath := filepath.Join(w.dir, "reports", "tally.md")

		stdout, stderr, err := w.execute(t, "count", "--markdown", "--report-file", reportPath, "--no-history")
		if err != nil {
			t.Fatalf("count failed: %v\nstderr: %s", err, stderr)
		}
		if stdout != "" {
			t.Errorf("expected nothing on stdout, got %q", stdout)
		}
		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if !strings.Contains(string(content), "# Technology Mentions") {
			t.Errorf("expected markdown report, got:\n%s", content)
		}
	})

	t.Run("missing input fails without output", func(t *testing.T) {
		w := newWorkspace(t)
		_, _, err := w.execute(t, "merge")
		if !errors.Is(err, storage.ErrInputNotFound) {
			t.Errorf("expected ErrInputNotFound, got %v", err)
		}
		if _, err := os.Stat(w.path("categorized_technologies_merged.json")); !errors.Is(err, os.ErrNotExist) {
			t.Error("expected no output file")
		}
	})

	t.Run("conflicting report formats are rejected", func(t *testing.T) {
		w := newWorkspace(t)
		_, _, err := w.execute(t, "count", "--json", "--markdown")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		cmd := NewRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml"), "merge"})
		if err := cmd.Execute(); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

// TestBuildConfig tests that only changed flags override the config file.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)

	t.Run("file values survive unchanged flags", func(t *testing.T) {
		t.Parallel()

		cmd := NewFilterCmd()
		cmd.Flags().String("config", w.configPath, "")
		if err := cmd.ParseFlags([]string{"--target", "Data"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd,
			stringFlag("input", func(c *config.Config) *string { return &c.URLsFile }),
			stringFlag("target", func(c *config.Config) *string { return &c.TargetCategory }),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.URLsFile != w.path("hrefs.json") {
			t.Errorf("expected URLs file from config, got %q", cfg.URLsFile)
		}
		if cfg.TargetCategory != "Data" {
			t.Errorf("expected target from flag, got %q", cfg.TargetCategory)
		}
		if cfg.RequestDelay != 0 {
			t.Errorf("expected delay from config, got %v", cfg.RequestDelay)
		}
	})

	t.Run("http flags", func(t *testing.T) {
		t.Parallel()

		cmd := NewRunCmd()
		cmd.Flags().String("config", w.configPath, "")
		if err := cmd.ParseFlags([]string{
			"--timeout", "3s",
			"--delay", "250ms",
			"-H", "Cookie=session=abc",
			"--max-body-size", "1024",
			"--no-history",
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		bindings := append(httpBindings(), reportBindings()...)
		cfg, err := buildConfig(cmd, bindings...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Timeout != 3*time.Second || cfg.RequestDelay != 250*time.Millisecond {
			t.Errorf("unexpected timing %v / %v", cfg.Timeout, cfg.RequestDelay)
		}
		if cfg.Headers["Cookie"] != "session=abc" {
			t.Errorf("expected cookie header, got %v", cfg.Headers)
		}
		if cfg.MaxBodySize != 1024 {
			t.Errorf("expected max body size 1024, got %d", cfg.MaxBodySize)
		}
		if cfg.SaveHistory {
			t.Error("expected history to be disabled")
		}
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		t.Parallel()

		cmd := NewFilterCmd()
		cmd.Flags().String("config", w.configPath, "")
		if err := cmd.ParseFlags([]string{"--delay", "-1s"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := buildConfig(cmd, httpBindings()...)
		if !errors.Is(err, config.ErrInvalidRequestDelay) {
			t.Errorf("expected ErrInvalidRequestDelay, got %v", err)
		}
	})
}

func TestNewReportWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg := config.NewConfig()

	if _, ok := newReportWriter(cfg, &buf).(*report.SimpleWriter); !ok {
		t.Error("expected SimpleWriter by default")
	}
	cfg.JSONReport = true
	if _, ok := newReportWriter(cfg, &buf).(*report.JSONWriter); !ok {
		t.Error("expected JSONWriter for --json")
	}
	cfg.JSONReport = false
	cfg.MarkdownReport = true
	if _, ok := newReportWriter(cfg, &buf).(*report.MarkdownWriter); !ok {
		t.Error("expected MarkdownWriter for --markdown")
	}
}

func TestGetInheritedFlags(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	if err := root.PersistentFlags().Parse([]string{"--verbose", "--data-dir", "/tmp/x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	merge, _, err := root.Find([]string{"merge"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !getInheritedBool(merge, "verbose") {
		t.Error("expected verbose from root")
	}
	if got := getInheritedString(merge, "data-dir"); got != "/tmp/x" {
		t.Errorf("expected data dir from root, got %q", got)
	}

	standalone := NewMergeCmd()
	if getInheritedBool(standalone, "verbose") {
		t.Error("expected false for an undefined flag")
	}
}
