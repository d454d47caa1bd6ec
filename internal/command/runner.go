// Package command runs external programs for the build steps.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Spec describes one invocation of an external program.
type Spec struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
}

// String renders the invocation the way it would be typed in a shell.
func (s Spec) String() string {
	return strings.TrimSpace(s.Name + " " + strings.Join(s.Args, " "))
}

// Result holds what a finished invocation produced.
type Result struct {
	Output   string // combined stdout and stderr
	ExitCode int
}

// ExitError reports a program that ran but exited non-zero.
type ExitError struct {
	Spec     Spec
	ExitCode int
	Output   string
	Cause    error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Spec.Name, e.ExitCode)
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// Runner executes external programs.
type Runner interface {
	Run(ctx context.Context, spec Spec) (*Result, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts the program and waits for it. A non-zero exit is returned as
// *ExitError alongside the captured output.
func (r *ExecRunner) Run(ctx context.Context, spec Spec) (*Result, error) {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	result := &Result{Output: out.String()}
	if runErr == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &ExitError{
			Spec:     spec,
			ExitCode: result.ExitCode,
			Output:   result.Output,
			Cause:    runErr,
		}
	}

	result.ExitCode = -1
	return result, fmt.Errorf("failed to run %s: %w", spec.Name, runErr)
}

// LookPath reports where name is found on PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
