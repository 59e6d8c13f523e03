package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/techtally/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for sharing.
type MarkdownWriter struct {
	baseWriter

	// title is the H1 heading of the report.
	title string
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithTitle sets the report heading.
func WithTitle(title string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.title = title
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      "Technology Mentions",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CountReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeCounts(md, report)
	w.writePieChart(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CountReport) {
	md.H1(w.title)
	md.PlainText("")

	rows := [][]string{
		{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Buckets", strconv.Itoa(len(report.Entries))},
		{"Total Mentions", strconv.Itoa(report.Total)},
	}
	if report.Source != "" {
		rows = append([][]string{{"Source", "`" + report.Source + "`"}}, rows...)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, report *model.CountReport) {
	md.H2("Counts")
	md.PlainText("")

	if len(report.Entries) == 0 {
		md.Note("No technology buckets were found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Entries)+1)
	for _, e := range report.Entries {
		rows = append(rows, []string{
			e.Bucket,
			strconv.Itoa(e.Count),
			fmt.Sprintf("%.1f%%", report.Share(e.Count)*100),
		})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(report.Total) + "**", ""})

	md.Table(markdown.TableSet{
		Header: []string{"Technology", "Count", "Share"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the non-empty buckets.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.CountReport) {
	if report.Total == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Technology Distribution"),
		piechart.WithShowData(true),
	)
	for _, e := range report.Entries {
		if e.Count > 0 {
			chart.LabelAndIntValue(e.Bucket, uint64(e.Count)) //nolint:gosec // Counts are non-negative
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [techtally](https://github.com/nao1215/techtally)*")
}
