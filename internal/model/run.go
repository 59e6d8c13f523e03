package model

import "time"

// Outcome classifies what happened to a single URL during a fetching stage.
type Outcome string

const (
	// OutcomeKept means the URL passed the stage's test and was recorded.
	OutcomeKept Outcome = "kept"

	// OutcomeNoMatch means the element was found but its text did not match.
	OutcomeNoMatch Outcome = "no_match"

	// OutcomeNotFound means the page had no element for the selector.
	OutcomeNotFound Outcome = "not_found"

	// OutcomeBadStatus means the server answered with a status other than 200.
	OutcomeBadStatus Outcome = "bad_status"

	// OutcomeError means the request or the HTML parse failed.
	OutcomeError Outcome = "error"
)

// Skipped reports whether the outcome is a per-item failure.
func (o Outcome) Skipped() bool {
	return o == OutcomeNotFound || o == OutcomeBadStatus || o == OutcomeError
}

// FetchOutcome records the result of fetching one URL in one stage.
type FetchOutcome struct {
	Stage      string  `json:"stage"`
	URL        string  `json:"url"`
	StatusCode int     `json:"status_code,omitempty"`
	Outcome    Outcome `json:"outcome"`
	Message    string  `json:"message,omitempty"`
}

// StageResult summarizes one stage execution.
type StageResult struct {
	// Name is the stage name ("filter", "categorize", "merge", "count").
	Name string `json:"name"`

	// Input and Output are the files the stage read and wrote.
	// Output is empty when the stage wrote nothing.
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`

	// Processed is the number of input items handled (URLs or buckets).
	Processed int `json:"processed"`

	// Kept is the number of items written to the output.
	Kept int `json:"kept"`

	// Skipped is the number of items dropped because of per-item failures.
	Skipped int `json:"skipped"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Run records one techtally invocation.
// Steps append their results as they finish; a failed run keeps the results
// of the stages that completed before the failure.
type Run struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Stages holds one entry per completed stage, in execution order.
	Stages []StageResult `json:"stages"`

	// Fetches holds one entry per URL fetched by the filter and categorize stages.
	Fetches []FetchOutcome `json:"fetches,omitempty"`

	// Counts is set by the count stage.
	Counts *CountReport `json:"counts,omitempty"`

	// Error is the error that stopped the run, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as text, kept for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewRun creates an empty Run stamped with the current time.
func NewRun() *Run {
	return &Run{
		StartedAt: time.Now(),
		Stages:    make([]StageResult, 0),
		Fetches:   make([]FetchOutcome, 0),
	}
}

// AddStage appends a stage result.
func (r *Run) AddStage(result StageResult) {
	r.Stages = append(r.Stages, result)
}

// AddFetch appends a fetch outcome.
func (r *Run) AddFetch(outcome FetchOutcome) {
	r.Fetches = append(r.Fetches, outcome)
}

// StageNames returns the names of completed stages in order.
func (r *Run) StageNames() []string {
	names := make([]string, len(r.Stages))
	for i, s := range r.Stages {
		names[i] = s.Name
	}
	return names
}

// SkippedFetches returns the fetch outcomes that were per-item failures.
func (r *Run) SkippedFetches() []FetchOutcome {
	skipped := make([]FetchOutcome, 0)
	for _, f := range r.Fetches {
		if f.Outcome.Skipped() {
			skipped = append(skipped, f)
		}
	}
	return skipped
}
