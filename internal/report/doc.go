// Package report renders count reports.
//
// Three formats are supported:
//   - SimpleWriter: the fixed-width console table
//   - JSONWriter: the report as a JSON document
//   - MarkdownWriter: a Markdown table with a mermaid pie chart
//
// All writers implement Writer, so the count stage does not care which one
// it is given.
package report
