package process

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/resilience"
)

// Runner runs commands with a cap on how many execute at once.
type Runner struct {
	bulkhead *resilience.Bulkhead
	timeout  time.Duration
	log      *logger.Logger
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Name          string
	MaxConcurrent int
	// MaxWait bounds how long a command waits for a free slot. Zero waits
	// until the context is done.
	MaxWait time.Duration
	// Timeout bounds each command. Zero means no limit beyond the caller's context.
	Timeout time.Duration
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		bulkhead: resilience.NewBulkhead(cfg.Name, cfg.MaxConcurrent, cfg.MaxWait),
		timeout:  cfg.Timeout,
		log:      log.WithComponent("process"),
	}
}

// Run waits for a slot and executes cmd. A full runner yields a
// SERVICE_UNAVAILABLE error and a timed-out command a TIMEOUT error.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var result *Result
	err := r.bulkhead.Execute(ctx, func() error {
		var runErr error
		result, runErr = Run(ctx, cmd)
		return runErr
	})

	switch {
	case errors.Is(err, resilience.ErrBulkheadFull):
		return nil, apperrors.ServiceUnavailable(cmd.Binary).WithCause(err)
	case err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		return result, apperrors.Timeout(cmd.Binary).WithCause(err)
	case err != nil:
		r.log.Warn("command failed", logger.Fields(
			"command", cmd.String(),
			"exit_code", exitCode(result),
			logger.FieldError, err.Error(),
		))
		return result, err
	}

	r.log.Debug("command finished", logger.DurationFields(cmd.Binary, result.Duration))
	return result, nil
}

// InUse returns the number of commands currently running.
func (r *Runner) InUse() int { return r.bulkhead.InUse() }

func exitCode(r *Result) int {
	if r == nil {
		return -1
	}
	return r.ExitCode
}
