package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/techtally/internal/model"
)

// ErrNoInput is returned by a step whose input holds nothing to process.
// The step writes no output, so Execute stops without running later steps
// (they would read files left by an earlier invocation) and reports success.
var ErrNoInput = errors.New("nothing to process")

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each recording its result into the run.
type Step interface {
	// Do executes the pipeline step.
	// It returns an error when the stage as a whole fails; per-URL failures
	// are recorded in the run and do not produce an error.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// Execute runs all pipeline steps in sequence and stops at the first failure.
// Later stages read the files earlier stages write, so continuing after a
// failure would only process stale data.
//
// Cancellation is checked before each step; steps check it again between URLs.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	p.logger.Debug("starting pipeline", "steps", p.StepNames())

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			p.fail(run, ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", "step", step.Name())

		start := time.Now()
		if err := step.Do(ctx, run); err != nil {
			if errors.Is(err, ErrNoInput) {
				p.logger.Warn("pipeline stopped early", "step", step.Name(), "reason", err)
				return nil
			}
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			p.fail(run, err)
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"duration", time.Since(start),
		)
	}

	return nil
}

func (p *Pipeline) fail(run *model.Run, err error) {
	run.Error = err
	run.ErrorMessage = err.Error()
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
