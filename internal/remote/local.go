package remote

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/rileyhilliard/beamtop/internal/errors"
)

// LocalRunner runs commands on this machine without a shell.
type LocalRunner struct{}

// NewLocalRunner creates a LocalRunner.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run executes argv directly, streaming stdout.
func (r *LocalRunner) Run(ctx context.Context, argv []string, stdout io.Writer) error {
	if len(argv) == 0 {
		return errors.New(errors.ErrExec, "Nothing to run", "")
	}

	stderr := newTailBuffer(stderrTailBytes)
	command := exec.CommandContext(ctx, argv[0], argv[1:]...)
	command.Stdout = stdout
	command.Stderr = stderr

	runErr := command.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(runErr, &exitErr) {
		return errors.WrapWithCode(errors.NewExitError(exitErr.ExitCode()), errors.ErrExec,
			fmt.Sprintf("%s exited with code %d", argv[0], exitErr.ExitCode()),
			stderr.String())
	}
	return errors.WrapWithCode(runErr, errors.ErrExec,
		fmt.Sprintf("Couldn't start %s", argv[0]),
		"Make sure Erlang is installed and erl is on your PATH, or set --erl.")
}

// Describe implements Runner.
func (r *LocalRunner) Describe() string {
	return "localhost"
}

// Close implements Runner.
func (r *LocalRunner) Close() error {
	return nil
}
