package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/techtally/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.CountReport {
	return &model.CountReport{
		Source:      "categorized_technologies_merged.json",
		GeneratedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Entries: []model.CountEntry{
			{Bucket: "Python", Count: 2},
			{Bucket: "Go", Count: 1},
		},
		Total: 3,
	}
}

// TestSimpleWriter tests the fixed-width console report.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes the exact table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rule := strings.Repeat("-", 40)
		want := rule + "\n" +
			"TECHNOLOGY           | COUNT     \n" +
			rule + "\n" +
			"Python               | 2         \n" +
			"Go                   | 1         \n" +
			rule + "\n" +
			"TOTAL MENTIONS       | 3         \n" +
			rule + "\n"
		if buf.String() != want {
			t.Errorf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
		}
		if n != len(want) {
			t.Errorf("expected %d bytes written, got %d", len(want), n)
		}
	})

	t.Run("empty report still prints the frame", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(&model.CountReport{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "TOTAL MENTIONS       | 0") {
			t.Errorf("expected zero total, got:\n%s", buf.String())
		}
		if strings.Count(buf.String(), "\n") != 6 {
			t.Errorf("expected 6 lines, got:\n%s", buf.String())
		}
	})

	t.Run("long names are not truncated", func(t *testing.T) {
		t.Parallel()

		report := &model.CountReport{
			Entries: []model.CountEntry{{Bucket: "data_science_or_backend_python", Count: 7}},
			Total:   7,
		}
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "data_science_or_backend_python | 7") {
			t.Errorf("expected the full name, got:\n%s", buf.String())
		}
	})

	t.Run("WriteSummary names the saved file", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithSavedTo("technology_counts.json"))
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "Summary saved to") {
			t.Errorf("expected Write to leave out the summary, got:\n%s", buf.String())
		}
		if _, err := w.WriteSummary(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(buf.String(), "\nSummary saved to 'technology_counts.json'\n") {
			t.Errorf("expected summary line, got:\n%s", buf.String())
		}
	})

	t.Run("WriteSummary without a file writes nothing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).WriteSummary()
		if err != nil || n != 0 || buf.Len() != 0 {
			t.Errorf("expected no output, got %d bytes %q (err %v)", n, buf.String(), err)
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes a decodable report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.CountReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Total != 3 || len(decoded.Entries) != 2 || decoded.Entries[0].Bucket != "Python" {
			t.Errorf("unexpected decoded report %+v", decoded)
		}
		if strings.Contains(buf.String(), "\n  ") {
			t.Error("expected compact output by default")
		}
	})

	t.Run("WithPrettyPrint indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"entries\"") {
			t.Errorf("expected two-space indentation, got:\n%s", buf.String())
		}
		if !strings.HasSuffix(buf.String(), "}\n") {
			t.Error("expected trailing newline")
		}
	})

	t.Run("WithIndent uses custom indentation", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent("", "\t")).WriteValue(map[string]int{"a": 1}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "{\n\t\"a\": 1\n}\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes table and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()

		for _, want := range []string{
			"# Technology Mentions",
			"## Counts",
			"| Python",
			"66.7%",
			"33.3%",
			"**Total**",
			"```mermaid",
			"pie",
			"categorized_technologies_merged.json",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("custom title", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf, WithTitle("Weekly Tally")).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "# Weekly Tally") {
			t.Errorf("expected custom title, got:\n%s", buf.String())
		}
	})

	t.Run("empty report has a note and no chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(&model.CountReport{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "```mermaid") {
			t.Error("expected no chart for an empty report")
		}
		if !strings.Contains(buf.String(), "No technology buckets were found.") {
			t.Error("expected empty note")
		}
	})
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, ok := NewWriter(FormatJSON, &buf).(*JSONWriter); !ok {
		t.Error("expected JSONWriter for json")
	}
	if _, ok := NewWriter(FormatMarkdown, &buf).(*MarkdownWriter); !ok {
		t.Error("expected MarkdownWriter for markdown")
	}
	if _, ok := NewWriter(FormatText, &buf).(*SimpleWriter); !ok {
		t.Error("expected SimpleWriter for text")
	}
	if _, ok := NewWriter("unknown", &buf).(*SimpleWriter); !ok {
		t.Error("expected SimpleWriter fallback")
	}
}
