package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/techtally/internal/config"
	"github.com/nao1215/techtally/internal/crawler"
	"github.com/nao1215/techtally/internal/model"
	"github.com/nao1215/techtally/internal/report"
	"github.com/nao1215/techtally/internal/storage"
	"github.com/nao1215/techtally/internal/tally"
)

// Stage names, also used as step names and in the history database.
const (
	StageFilter     = "filter"
	StageCategorize = "categorize"
	StageMerge      = "merge"
	StageCount      = "count"
)

// AllStages returns the stage names in execution order.
func AllStages() []string {
	return []string{StageFilter, StageCategorize, StageMerge, StageCount}
}

// ErrUnknownStage is returned by DefaultPipeline for a stage name it does not know.
var ErrUnknownStage = errors.New("unknown stage")

// stepSettings holds the options shared by all steps.
type stepSettings struct {
	logger *slog.Logger
	delay  time.Duration
}

// StepOption configures a step.
type StepOption func(*stepSettings)

// WithStepLogger sets the logger a step reports progress to.
func WithStepLogger(logger *slog.Logger) StepOption {
	return func(s *stepSettings) {
		s.logger = logger
	}
}

// WithDelay overrides the pause between two requests of a fetching step.
func WithDelay(d time.Duration) StepOption {
	return func(s *stepSettings) {
		s.delay = d
	}
}

func newStepSettings(cfg *config.Config, opts []StepOption) stepSettings {
	s := stepSettings{
		logger: slog.Default(),
		delay:  cfg.RequestDelay,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// FilterStep keeps the listing URLs whose category element contains the
// target category.
type FilterStep struct {
	stepSettings
	extractor crawler.Extractor
	input     string
	output    string
	target    string
}

// NewFilterStep creates a filter step. The extractor must return the
// category element text of a page.
func NewFilterStep(cfg *config.Config, extractor crawler.Extractor, opts ...StepOption) *FilterStep {
	return &FilterStep{
		stepSettings: newStepSettings(cfg, opts),
		extractor:    extractor,
		input:        cfg.URLsFile,
		output:       cfg.FilteredFile,
		target:       cfg.TargetCategory,
	}
}

// Name returns the step name.
func (s *FilterStep) Name() string {
	return StageFilter
}

// Do executes the filter step.
func (s *FilterStep) Do(ctx context.Context, run *model.Run) error {
	result := model.StageResult{Name: s.Name(), Input: s.input, StartedAt: time.Now()}

	urls, err := storage.ReadURLList(s.input)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}

	filtered := model.NewOrderedMap[string]()
	for i, pageURL := range urls {
		if i > 0 {
			if err := wait(ctx, s.delay); err != nil {
				return err
			}
		}
		s.logger.Info("checking", "stage", s.Name(), "url", pageURL, "progress", fmt.Sprintf("%d/%d", i+1, len(urls)))

		text, err := s.extractor.Extract(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.skip(run, &result, pageURL, err)
			continue
		}

		if !tally.MatchesCategory(text, s.target) {
			s.logger.Debug("category does not match", "url", pageURL, "category", text)
			run.AddFetch(model.FetchOutcome{Stage: s.Name(), URL: pageURL, StatusCode: 200, Outcome: model.OutcomeNoMatch, Message: text})
			continue
		}

		s.logger.Info("match found", "url", pageURL, "category", text)
		filtered.Set(pageURL, text)
		run.AddFetch(model.FetchOutcome{Stage: s.Name(), URL: pageURL, StatusCode: 200, Outcome: model.OutcomeKept, Message: text})
	}

	if err := storage.WriteJSON(s.output, filtered); err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}

	result.Output = s.output
	result.Processed = len(urls)
	result.Kept = filtered.Len()
	result.Duration = time.Since(result.StartedAt)
	run.AddStage(result)

	s.logger.Info("filter complete",
		"kept", result.Kept,
		"skipped", result.Skipped,
		"total", result.Processed,
		"output", s.output,
	)
	return nil
}

// CategorizeStep assigns each filtered URL to the buckets of the keywords its
// technology element lists.
type CategorizeStep struct {
	stepSettings
	extractor crawler.Extractor
	input     string
	output    string
	keywords  []model.Keyword
}

// NewCategorizeStep creates a categorize step. The extractor must return the
// raw text of the technology element, line breaks included.
func NewCategorizeStep(cfg *config.Config, extractor crawler.Extractor, opts ...StepOption) *CategorizeStep {
	return &CategorizeStep{
		stepSettings: newStepSettings(cfg, opts),
		extractor:    extractor,
		input:        cfg.FilteredFile,
		output:       cfg.BucketsFile,
		keywords:     cfg.Keywords,
	}
}

// Name returns the step name.
func (s *CategorizeStep) Name() string {
	return StageCategorize
}

// Do executes the categorize step.
// An empty filtered file ends the step without writing output and returns
// ErrNoInput.
func (s *CategorizeStep) Do(ctx context.Context, run *model.Run) error {
	result := model.StageResult{Name: s.Name(), Input: s.input, StartedAt: time.Now()}

	filtered, err := storage.ReadFiltered(s.input)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	if filtered.Len() == 0 {
		s.logger.Warn("no filtered URLs to categorize", "input", s.input)
		result.Duration = time.Since(result.StartedAt)
		run.AddStage(result)
		return fmt.Errorf("%s: %s: %w", s.Name(), s.input, ErrNoInput)
	}

	urls := filtered.Keys()
	buckets := model.NewOrderedMap[[]string]()
	for i, pageURL := range urls {
		if i > 0 {
			if err := wait(ctx, s.delay); err != nil {
				return err
			}
		}
		s.logger.Info("checking", "stage", s.Name(), "url", pageURL, "progress", fmt.Sprintf("%d/%d", i+1, len(urls)))

		text, err := s.extractor.Extract(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.skip(run, &result, pageURL, err)
			continue
		}

		matched := tally.MatchKeywords(text, s.keywords)
		if len(matched) == 0 {
			run.AddFetch(model.FetchOutcome{Stage: s.Name(), URL: pageURL, StatusCode: 200, Outcome: model.OutcomeNoMatch})
			continue
		}
		for _, kw := range matched {
			s.logger.Debug("keyword found", "url", pageURL, "keyword", kw.Name, "bucket", kw.Bucket)
		}
		tally.AddToBuckets(buckets, pageURL, matched)
		result.Kept++
		run.AddFetch(model.FetchOutcome{
			Stage:      s.Name(),
			URL:        pageURL,
			StatusCode: 200,
			Outcome:    model.OutcomeKept,
			Message:    fmt.Sprint(model.KeywordNames(matched)),
		})
	}

	if err := storage.WriteJSON(s.output, buckets); err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}

	result.Output = s.output
	result.Processed = len(urls)
	result.Duration = time.Since(result.StartedAt)
	run.AddStage(result)

	s.logger.Info("categorize complete",
		"buckets", buckets.Len(),
		"categorized", result.Kept,
		"skipped", result.Skipped,
		"total", result.Processed,
		"output", s.output,
	)
	return nil
}

// MergeStep folds alias buckets into their targets.
type MergeStep struct {
	stepSettings
	input   string
	output  string
	aliases []model.Alias
}

// NewMergeStep creates a merge step.
func NewMergeStep(cfg *config.Config, opts ...StepOption) *MergeStep {
	return &MergeStep{
		stepSettings: newStepSettings(cfg, opts),
		input:        cfg.BucketsFile,
		output:       cfg.MergedFile,
		aliases:      cfg.Aliases,
	}
}

// Name returns the step name.
func (s *MergeStep) Name() string {
	return StageMerge
}

// Do executes the merge step.
func (s *MergeStep) Do(_ context.Context, run *model.Run) error {
	result := model.StageResult{Name: s.Name(), Input: s.input, StartedAt: time.Now()}

	buckets, err := storage.ReadBuckets(s.input)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	result.Processed = buckets.Len()

	for _, m := range tally.Merge(buckets, s.aliases) {
		s.logger.Info("merged",
			"source", m.Source,
			"target", m.Target,
			"source_size", m.SourceSize,
			"target_size", m.TargetSize,
			"created", m.Created,
		)
	}

	if err := storage.WriteJSON(s.output, buckets); err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}

	result.Output = s.output
	result.Kept = buckets.Len()
	result.Duration = time.Since(result.StartedAt)
	run.AddStage(result)

	s.logger.Info("merge complete", "buckets", result.Kept, "output", s.output)
	return nil
}

// CountStep sizes the merged buckets, renders the count report and writes
// the count file.
type CountStep struct {
	stepSettings
	input  string
	output string
	writer report.Writer
}

// NewCountStep creates a count step that renders its report with writer.
func NewCountStep(cfg *config.Config, writer report.Writer, opts ...StepOption) *CountStep {
	return &CountStep{
		stepSettings: newStepSettings(cfg, opts),
		input:        cfg.MergedFile,
		output:       cfg.CountsFile,
		writer:       writer,
	}
}

// Name returns the step name.
func (s *CountStep) Name() string {
	return StageCount
}

// Do executes the count step.
func (s *CountStep) Do(_ context.Context, run *model.Run) error {
	result := model.StageResult{Name: s.Name(), Input: s.input, StartedAt: time.Now()}

	buckets, err := storage.ReadBuckets(s.input)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}

	counts := tally.Count(buckets)
	counts.Source = s.input

	if s.writer != nil {
		if _, err := s.writer.Write(counts); err != nil {
			return fmt.Errorf("%s: failed to write report: %w", s.Name(), err)
		}
	}

	if err := storage.WriteJSON(s.output, counts.Counts()); err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	if sw, ok := s.writer.(report.SummaryWriter); ok {
		if _, err := sw.WriteSummary(); err != nil {
			return fmt.Errorf("%s: failed to write report: %w", s.Name(), err)
		}
	}

	run.Counts = counts
	result.Output = s.output
	result.Processed = buckets.Len()
	result.Kept = len(counts.Entries)
	result.Duration = time.Since(result.StartedAt)
	run.AddStage(result)

	s.logger.Info("count complete", "buckets", result.Kept, "total", counts.Total, "output", s.output)
	return nil
}

// skip records a per-URL failure.
func (s *stepSettings) skip(run *model.Run, result *model.StageResult, pageURL string, err error) {
	outcome := classify(err)
	status := 0
	var statusErr *crawler.StatusError
	if errors.As(err, &statusErr) {
		status = statusErr.Code
	}

	s.logger.Warn("skipping", "stage", result.Name, "url", pageURL, "outcome", outcome, "error", err)
	run.AddFetch(model.FetchOutcome{
		Stage:      result.Name,
		URL:        pageURL,
		StatusCode: status,
		Outcome:    outcome,
		Message:    err.Error(),
	})
	result.Skipped++
}

func classify(err error) model.Outcome {
	var statusErr *crawler.StatusError
	switch {
	case errors.As(err, &statusErr):
		return model.OutcomeBadStatus
	case errors.Is(err, crawler.ErrElementNotFound):
		return model.OutcomeNotFound
	default:
		return model.OutcomeError
	}
}

// wait pauses for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DefaultPipeline creates a pipeline running the named stages in the given
// order, all configured from cfg. With no names it runs every stage.
// The crawler client and extractors are built only when a fetching stage is
// requested; an invalid selector is reported here.
func DefaultPipeline(cfg *config.Config, writer report.Writer, pipelineOpts []Option, stages ...string) (*Pipeline, error) {
	p := New(pipelineOpts...)
	if len(stages) == 0 {
		stages = AllStages()
	}
	stepOpts := []StepOption{WithStepLogger(p.logger)}

	var client *crawler.Client
	newClient := func() *crawler.Client {
		if client == nil {
			client = crawler.NewClient(
				crawler.WithTimeout(cfg.Timeout),
				crawler.WithUserAgent(cfg.UserAgent),
				crawler.WithHeaders(cfg.Headers),
				crawler.WithMaxBodySize(cfg.MaxBodySize),
				crawler.WithClientLogger(p.logger),
			)
		}
		return client
	}

	for _, name := range stages {
		switch name {
		case StageFilter:
			ext, err := crawler.NewSelectorExtractor(newClient(), cfg.CategorySelector, crawler.TextStripped)
			if err != nil {
				return nil, err
			}
			p.AddStep(NewFilterStep(cfg, ext, stepOpts...))
		case StageCategorize:
			ext, err := crawler.NewSelectorExtractor(newClient(), cfg.TechSelector, crawler.TextRaw)
			if err != nil {
				return nil, err
			}
			p.AddStep(NewCategorizeStep(cfg, ext, stepOpts...))
		case StageMerge:
			p.AddStep(NewMergeStep(cfg, stepOpts...))
		case StageCount:
			p.AddStep(NewCountStep(cfg, writer, stepOpts...))
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownStage, name)
		}
	}
	return p, nil
}
