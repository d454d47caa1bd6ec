// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/jonathan/resume-export/internal/command"
)

// HandlerFunc decides the outcome of one invocation.
type HandlerFunc func(spec command.Spec) (*command.Result, error)

// FakeRunner records every invocation and delegates the outcome to Handler.
// Programs listed in Missing are reported absent by LookPath.
type FakeRunner struct {
	Handler HandlerFunc
	Missing map[string]bool

	mu    sync.Mutex
	calls []command.Spec
}

// Run records spec and returns the handler's result, or success when no handler is set.
func (f *FakeRunner) Run(_ context.Context, spec command.Spec) (*command.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, spec)
	f.mu.Unlock()

	if f.Handler == nil {
		return &command.Result{}, nil
	}
	return f.Handler(spec)
}

// LookPath pretends every program is installed unless listed in Missing.
func (f *FakeRunner) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return "/usr/bin/" + name, nil
}

// Calls returns a copy of the recorded invocations.
func (f *FakeRunner) Calls() []command.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]command.Spec, len(f.calls))
	copy(out, f.calls)
	return out
}

// Fail builds an *command.ExitError the way ExecRunner would for a non-zero exit.
func Fail(spec command.Spec, code int, output string) (*command.Result, error) {
	return &command.Result{Output: output, ExitCode: code}, &command.ExitError{
		Spec:     spec,
		ExitCode: code,
		Output:   output,
		Cause:    fmt.Errorf("exit status %d", code),
	}
}
