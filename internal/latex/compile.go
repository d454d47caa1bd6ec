package latex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/resume-export/internal/command"
)

// DefaultEngine is the typesetting engine used to build the résumé.
const DefaultEngine = "xelatex"

// Result holds the outcome of a successful compilation.
type Result struct {
	PDFPath   string
	LogOutput string
}

// Compiler runs a LaTeX engine non-interactively against a staged template.
type Compiler struct {
	Runner command.Runner
	Engine string
	// Timeout bounds one engine run; zero means no bound.
	Timeout time.Duration
}

// NewCompiler returns a Compiler for xelatex with no timeout.
func NewCompiler(runner command.Runner) *Compiler {
	return &Compiler{
		Runner: runner,
		Engine: DefaultEngine,
	}
}

// Compile runs the engine on texName inside workDir, which must already
// contain the template and its assets. Shell escape is enabled and
// recoverable markup errors do not stop the run.
func (c *Compiler) Compile(ctx context.Context, workDir, texName string) (*Result, error) {
	// Check if the engine is available
	if _, err := c.Runner.LookPath(c.Engine); err != nil {
		return nil, &CompilationError{
			Message: fmt.Sprintf("%s not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)", c.Engine),
			Cause:   err,
		}
	}

	if _, err := os.Stat(filepath.Join(workDir, texName)); err != nil {
		return nil, &CompilationError{
			Message: fmt.Sprintf("staged template not found: %s", filepath.Join(workDir, texName)),
			Cause:   err,
		}
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	spec := command.Spec{
		Name: c.Engine,
		Args: []string{"--shell-escape", "-interaction=nonstopmode", texName},
		Dir:  workDir,
	}
	result, runErr := c.Runner.Run(ctx, spec)

	var logOutput string
	if result != nil {
		logOutput = result.Output
	}

	if runErr != nil {
		return nil, &CompilationError{
			Message:   "PDF compilation failed",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	// Check if PDF was created
	pdfPath := filepath.Join(workDir, PDFName(texName))
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		return nil, &CompilationError{
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: logOutput,
		}
	}

	return &Result{PDFPath: pdfPath, LogOutput: logOutput}, nil
}

// PDFName returns the name of the document the engine writes for texName.
func PDFName(texName string) string {
	return strings.TrimSuffix(texName, filepath.Ext(texName)) + ".pdf"
}
