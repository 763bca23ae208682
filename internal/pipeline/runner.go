package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vk/mdprune/internal/ctxlog"
)

// Command is one external command issued on behalf of a task.
type Command struct {
	Task string
	Args []string
	// Env holds KEY=VALUE pairs added to the inherited environment.
	Env []string
	Dir string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Commander runs external commands.
type Commander interface {
	Run(ctx context.Context, cmd Command) error
}

// CommanderFunc adapts a function to the Commander interface.
type CommanderFunc func(ctx context.Context, cmd Command) error

// Run calls f.
func (f CommanderFunc) Run(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// ExecCommander runs commands as child processes that share the given
// output streams and the parent's standard input.
type ExecCommander struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecCommander returns a Commander backed by os/exec.
func NewExecCommander(stdout, stderr io.Writer) *ExecCommander {
	return &ExecCommander{Stdout: stdout, Stderr: stderr}
}

// Run starts the command and waits for it. A non-zero exit surfaces as
// *exec.ExitError.
func (e *ExecCommander) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Dir = c.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd.Run()
}

// TaskError is returned when a task fails. The remaining tasks of the
// invocation did not run.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// ExitCode maps the result of a run to a process exit status: 0 for nil,
// the delegated command's own status when it exited non-zero, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

// Runner executes tasks of a Taskfile one after another.
type Runner struct {
	file *Taskfile
	cmd  Commander
}

// NewRunner creates a runner that issues commands through cmd.
func NewRunner(file *Taskfile, cmd Commander) *Runner {
	return &Runner{file: file, cmd: cmd}
}

// Run executes the plan for name (the default task when empty). It stops
// at the first failure, which is returned as *TaskError.
func (r *Runner) Run(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)

	plan, err := r.file.Plan(name)
	if err != nil {
		return err
	}
	logger.Debug("Plan ready.", "tasks", taskNames(plan))

	for _, t := range plan {
		taskCtx := ctxlog.With(ctx, "task", t.Name)
		taskLogger := ctxlog.FromContext(taskCtx)
		if err := ctx.Err(); err != nil {
			return &TaskError{Task: t.Name, Err: err}
		}
		if len(t.Command) == 0 {
			taskLogger.Debug("Aggregate task complete.")
			continue
		}

		c := Command{
			Task: t.Name,
			Args: t.Command,
			Env:  t.environ(),
			Dir:  r.file.workDir(t),
		}
		taskLogger.Info("Running task.", "command", c.String())
		start := time.Now()
		if err := r.cmd.Run(taskCtx, c); err != nil {
			taskLogger.Error("Task failed.", "error", err, "exit_code", ExitCode(err))
			return &TaskError{Task: t.Name, Err: err}
		}
		taskLogger.Debug("Task finished.", "duration", time.Since(start))
	}
	return nil
}

func taskNames(tasks []*Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}
