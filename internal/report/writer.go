package report

import (
	"io"

	"github.com/nao1215/techtally/internal/model"
)

// Writer defines the interface for count report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.CountReport) (int, error)
}

// SummaryWriter is implemented by writers that confirm where the counts were
// saved. WriteSummary is called only after the count file has been written.
type SummaryWriter interface {
	WriteSummary() (int, error)
}

// Format names a report rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// NewWriter returns the writer for format, writing to output.
// Unknown formats fall back to text.
func NewWriter(format Format, output io.Writer) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
