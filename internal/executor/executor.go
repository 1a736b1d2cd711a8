package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"git.home.luguber.info/inful/charmrelease/internal/logfields"
)

const waitDelay = 2 * time.Second

// Command describes one external process invocation.
type Command struct {
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env is appended to the current environment.
	Env map[string]string
	// Stream copies the subprocess output to the console while capturing it.
	Stream bool
}

// String renders the argv for diagnostics.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExternalCommandError reports a subprocess that could not be started or
// exited non-zero.
type ExternalCommandError struct {
	Args     []string
	ExitCode int // -1 when the process never ran to completion
	Stderr   string
	Err      error
}

func (e *ExternalCommandError) Error() string {
	cmd := strings.Join(e.Args, " ")
	if e.ExitCode >= 0 {
		if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
			return fmt.Sprintf("command %q exited with status %d: %s", cmd, e.ExitCode, firstLine(stderr))
		}
		return fmt.Sprintf("command %q exited with status %d", cmd, e.ExitCode)
	}
	return fmt.Sprintf("command %q failed: %v", cmd, e.Err)
}

func (e *ExternalCommandError) Unwrap() error { return e.Err }

// Command returns the failed argv as a single string.
func (e *ExternalCommandError) Command() string { return strings.Join(e.Args, " ") }

// Started reports whether the process ran and ended without the context
// killing it. It is false when the binary is missing or the run was
// interrupted.
func (e *ExternalCommandError) Started() bool { return e.ExitCode >= 0 }

// AsCommandError finds an *ExternalCommandError in err's chain.
func AsCommandError(err error) (*ExternalCommandError, bool) {
	var cmdErr *ExternalCommandError
	if errors.As(err, &cmdErr) {
		return cmdErr, true
	}
	return nil, false
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	// Console receives streamed subprocess output. Defaults to os.Stderr so
	// that stdout stays reserved for progress lines.
	Console io.Writer
}

// NewRunner creates a Runner backed by real subprocesses.
func NewRunner() *ExecRunner {
	return &ExecRunner{Console: os.Stderr}
}

// Run executes cmd and returns its trimmed stdout.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", &ExternalCommandError{ExitCode: -1, Err: errors.New("empty command")}
	}

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	// Grandchildren holding the output pipes must not keep a killed command alive.
	c.WaitDelay = waitDelay
	r.setupCommand(c, cmd)

	var stdoutBuf, stderrBuf bytes.Buffer
	if cmd.Stream && r.Console != nil {
		c.Stdout = io.MultiWriter(&stdoutBuf, r.Console)
		c.Stderr = io.MultiWriter(&stderrBuf, r.Console)
	} else {
		c.Stdout = &stdoutBuf
		c.Stderr = &stderrBuf
	}

	start := time.Now()
	slog.Debug("Running command", logfields.Command(cmd.String()), logfields.Path(cmd.Dir))
	err := c.Run()
	elapsed := float64(time.Since(start).Milliseconds())

	if err != nil {
		result := &ExternalCommandError{
			Args:     append([]string(nil), cmd.Args...),
			ExitCode: -1,
			Stderr:   stderrBuf.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitStatus(exitErr)
		}
		if ctx.Err() != nil {
			result.Err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		slog.Debug("Command failed",
			logfields.Command(cmd.String()),
			logfields.ExitCode(result.ExitCode),
			logfields.DurationMS(elapsed),
			logfields.Error(err))
		return strings.TrimSpace(stdoutBuf.String()), result
	}

	slog.Debug("Command finished", logfields.Command(cmd.String()), logfields.DurationMS(elapsed))
	return strings.TrimSpace(stdoutBuf.String()), nil
}

// setupCommand configures the exec.Cmd with working directory and environment.
func (r *ExecRunner) setupCommand(c *exec.Cmd, cmd Command) {
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		c.Env = os.Environ()
		for k, v := range cmd.Env {
			c.Env = append(c.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}
}

// exitStatus maps a process killed by a signal to the shell convention
// 128+signal, so that it still counts as having run.
func exitStatus(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
