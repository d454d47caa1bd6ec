// Package latex compiles the staged résumé template into a PDF.
package latex

import "fmt"

// CompilationError represents a LaTeX compilation failure
type CompilationError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("LaTeX compilation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("LaTeX compilation error: %s", e.Message)
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// PageCountError represents a failure inspecting a compiled PDF
type PageCountError struct {
	Message string
	Cause   error
}

func (e *PageCountError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("page count error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("page count error: %s", e.Message)
}

func (e *PageCountError) Unwrap() error {
	return e.Cause
}
