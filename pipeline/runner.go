package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Result summarises one pipeline invocation
type Result struct {
	Status    int
	Completed bool
	// HaltedAt names the step that stopped the pipeline, if any
	HaltedAt string
}

// Runner executes pipeline definitions step by step
type Runner struct {
	registry *Registry
	logger   *zap.Logger
}

// NewRunner creates a new runner
func NewRunner(registry *Registry, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		registry: registry,
		logger:   logger,
	}
}

// Run executes the steps of def in order against c. It stops on the first
// Halt or error. An error with no status set is reported as 500.
func (r *Runner) Run(ctx context.Context, def *Definition, c *Context) (*Result, error) {
	logger := r.logger.With(
		zap.String("request_id", c.ID),
		zap.String("pipeline", def.Name),
	)

	for _, step := range def.Steps {
		fn, err := r.registry.Lookup(step.Controller)
		if err != nil {
			c.SetStatus(http.StatusInternalServerError)
			return &Result{Status: c.Status(), HaltedAt: step.Name}, err
		}

		c.Inputs = Inputs(step.Inputs)
		if c.Inputs == nil {
			c.Inputs = Inputs{}
		}

		start := time.Now()
		outcome, err := fn(ctx, c)
		logger.Debug("step finished",
			zap.String("step", step.Name),
			zap.String("controller", step.Controller),
			zap.Stringer("outcome", outcome),
			zap.Int("status", c.Status()),
			zap.Duration("duration", time.Since(start)),
		)

		if err != nil {
			if c.Status() == 0 {
				c.SetStatus(http.StatusInternalServerError)
			}
			logger.Error("step failed",
				zap.String("step", step.Name),
				zap.Error(err),
			)
			return &Result{Status: c.Status(), HaltedAt: step.Name}, fmt.Errorf("step %s: %w", step.Name, err)
		}

		if outcome != Continue {
			if c.Status() == 0 {
				c.SetStatus(http.StatusOK)
			}
			logger.Info("pipeline halted",
				zap.String("step", step.Name),
				zap.Int("status", c.Status()),
			)
			return &Result{Status: c.Status(), HaltedAt: step.Name}, nil
		}
	}

	if c.Status() == 0 {
		c.SetStatus(http.StatusOK)
	}
	return &Result{Status: c.Status(), Completed: true}, nil
}
