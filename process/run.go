package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

const defaultGracePeriod = 5 * time.Second

// Run executes cmd and waits for it. A non-zero exit or a binary that cannot
// start yields an *ExitError carrying the stderr tail. On context
// cancellation the process group gets SIGTERM, then SIGKILL after the grace
// period.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.New("process: binary is required")
	}
	grace := cmd.GracePeriod
	if grace <= 0 {
		grace = defaultGracePeriod
	}
	limit := cmd.StderrLimit
	if limit <= 0 {
		limit = DefaultStderrLimit
	}

	stderr := &tailBuffer{max: limit}
	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // arguments are built by the caller
	c.Stderr = stderr
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = grace

	start := time.Now()
	err := c.Run()
	res := &Result{
		Stderr:   stderr.String(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("process: %s killed: %w", cmd.Binary, ctx.Err())
	}
	return res, &ExitError{Binary: cmd.Binary, ExitCode: res.ExitCode, Stderr: res.Stderr, Err: err}
}
