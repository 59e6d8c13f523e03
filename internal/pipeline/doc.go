// Package pipeline runs the techtally stages in sequence.
//
// Each stage (filter, categorize, merge, count) is a Step. A Step reads its
// input file, does its work and writes its output file; steps share nothing
// but those files and the *model.Run they record their results into. A
// single stage run from the CLI is a one-step pipeline.
//
// Stages fail as a whole on missing or malformed input and never write a
// partial output file. Failures of individual URLs are logged, recorded as
// model.FetchOutcome entries and skipped.
package pipeline
