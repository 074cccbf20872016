package pipeline

import (
	"context"
	"log/slog"

	"github.com/a11yctl/a11yctl/internal/model"
)

// Step defines the interface that all per-URL pipeline steps implement.
// Steps are executed in sequence, each receiving the result accumulated
// by previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features
type Step interface {
	// Do executes the pipeline step. It receives the context for
	// cancellation and the result to modify. Returns an error only if
	// the step fails critically; per-URL checker failures are recorded
	// in the result and return nil.
	Do(ctx context.Context, result *model.CheckResult) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes an ordered list of steps against one URL's result.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}

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

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence for one URL.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps enforce their own timeouts. Cancellation between
// steps marks the result failed instead of returning an error, so a
// cancelled batch still yields a complete, exportable results slice.
func (p *Pipeline) Execute(ctx context.Context, result *model.CheckResult) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"url", result.URL,
			)
			result.Fail("cancelled: " + ctx.Err().Error())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", "step", step.Name(), "url", result.URL)

		if err := step.Do(ctx, result); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"url", result.URL,
				"error", err,
			)
			return err
		}
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
