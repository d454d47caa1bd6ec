// Package icons converts the vector icon set into print-ready PDFs.
package icons

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-export/internal/command"
)

// DefaultConverter is the vector-graphics program used for conversion.
const DefaultConverter = "inkscape"

// Result describes the conversion of a single icon.
type Result struct {
	Name   string // source file name
	Output string // path of the PDF that was requested
	Err    error
}

// Summary collects the per-icon results of one ConvertAll call.
// Err is set when the source directory itself could not be read.
type Summary struct {
	Results []Result
	Err     error
}

// Converted returns the number of icons converted successfully.
func (s Summary) Converted() int {
	n := 0
	for _, r := range s.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results that did not convert.
func (s Summary) Failed() []Result {
	var failed []Result
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Converter turns every icon with Extension in a directory into a PDF.
type Converter struct {
	Runner    command.Runner
	Program   string
	Extension string
	Logger    *log.Logger
}

// NewConverter returns a Converter for .svg icons using inkscape.
func NewConverter(runner command.Runner, logger *log.Logger) *Converter {
	return &Converter{
		Runner:    runner,
		Program:   DefaultConverter,
		Extension: ".svg",
		Logger:    logger,
	}
}

// ConvertAll converts each entry of srcDir whose name ends in Extension into
// outDir/<base>.pdf. Only the name is checked, so a matching directory is
// handed to the converter too and fails like any other bad icon.
// Files are processed in directory listing order; a failing icon is recorded
// and the rest are still converted.
func (c *Converter) ConvertAll(ctx context.Context, srcDir, outDir string) Summary {
	logger := c.logger()

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		logger.Printf("Error: Failed to read icon directory %s: %v", srcDir, err)
		return Summary{Err: fmt.Errorf("failed to read icon directory: %w", err)}
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		logger.Printf("Error: Failed to create output directory %s: %v", outDir, err)
		return Summary{Err: fmt.Errorf("failed to create output directory: %w", err)}
	}

	var summary Summary
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, c.Extension) {
			continue
		}

		result := c.convert(ctx, filepath.Join(srcDir, name), outDir)
		if result.Err != nil {
			logger.Printf("Error: Failed to convert %s: %v", name, result.Err)
		} else {
			logger.Printf("Converted %s -> %s", name, filepath.Base(result.Output))
		}
		summary.Results = append(summary.Results, result)
	}

	return summary
}

func (c *Converter) convert(ctx context.Context, srcPath, outDir string) Result {
	name := filepath.Base(srcPath)
	pdfPath := filepath.Join(outDir, strings.TrimSuffix(name, c.Extension)+".pdf")

	spec := command.Spec{
		Name: c.Program,
		Args: []string{srcPath, "--export-type=pdf", "--export-filename", pdfPath},
	}
	if _, err := c.Runner.Run(ctx, spec); err != nil {
		return Result{Name: name, Output: pdfPath, Err: err}
	}
	return Result{Name: name, Output: pdfPath}
}

func (c *Converter) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}
