// Package process runs external binaries (ffmpeg) with process-group
// cancellation and bounded concurrency.
package process

import (
	"fmt"
	"strings"
	"time"
)

// DefaultStderrLimit is how much trailing stderr a run keeps.
const DefaultStderrLimit = 4096

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name resolved via PATH.
	Binary string
	Args   []string
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Defaults to 5 seconds.
	GracePeriod time.Duration
	// StderrLimit caps the stderr bytes kept, counted from the end.
	// Defaults to DefaultStderrLimit.
	StderrLimit int
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Binary + " " + strings.Join(c.Args, " "))
}

// Result holds the status of a completed subprocess. Stdout is discarded.
type Result struct {
	// Stderr is the tail of the process's stderr. ffmpeg prints its banner
	// first and the actual failure last.
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ExitError reports a command that failed to start or exited non-zero.
type ExitError struct {
	Binary string
	// ExitCode is -1 when the process never started.
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Binary, e.ExitCode)
	if e.ExitCode == -1 {
		msg = fmt.Sprintf("%s failed to start", e.Binary)
	}
	if line := lastLine(e.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) >= t.max {
		t.buf = append(t.buf[:0], p[len(p)-t.max:]...)
		return n, nil
	}
	if over := len(t.buf) + len(p) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	t.buf = append(t.buf, p...)
	return n, nil
}

func (t *tailBuffer) String() string { return strings.TrimSpace(string(t.buf)) }
