package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/techtally/internal/model"
)

// ruleWidth is the width of the dashed rules around the count table.
const ruleWidth = 40

// SimpleWriter outputs the fixed-width console report:
//
//	----------------------------------------
//	TECHNOLOGY           | COUNT
//	----------------------------------------
//	Python               | 2
//	Go                   | 1
//	----------------------------------------
//	TOTAL MENTIONS       | 3
//	----------------------------------------
//
// Cells are padded, not truncated, so a name longer than 20 characters
// pushes its row out of alignment.
type SimpleWriter struct {
	baseWriter

	// summary is the count file named by WriteSummary.
	summary string
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithSavedTo sets the file WriteSummary reports as saved.
func WithSavedTo(path string) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.summary = path
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the count table.
func (w *SimpleWriter) Write(report *model.CountReport) (int, error) {
	var sb strings.Builder
	rule := strings.Repeat("-", ruleWidth) + "\n"

	sb.WriteString(rule)
	sb.WriteString(fmt.Sprintf("%-20s | %-10s\n", "TECHNOLOGY", "COUNT"))
	sb.WriteString(rule)
	for _, e := range report.Entries {
		sb.WriteString(fmt.Sprintf("%-20s | %-10d\n", e.Bucket, e.Count))
	}
	sb.WriteString(rule)
	sb.WriteString(fmt.Sprintf("%-20s | %-10d\n", "TOTAL MENTIONS", report.Total))
	sb.WriteString(rule)

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary prints the "Summary saved to" line. It writes nothing when
// no file was set with WithSavedTo.
func (w *SimpleWriter) WriteSummary() (int, error) {
	if w.summary == "" {
		return 0, nil
	}
	return fmt.Fprintf(w.output, "\nSummary saved to '%s'\n", w.summary)
}
