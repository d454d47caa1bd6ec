// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-export/internal/cleanup"
	"github.com/jonathan/resume-export/internal/icons"
	"github.com/jonathan/resume-export/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintBuildReport outputs a human-readable summary of a finished build.
func (p *Printer) PrintBuildReport(report *pipeline.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run:      %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Avatar:   %s\n", report.Avatar.Source))
	if report.Avatar.FetchErr != nil {
		sb.WriteString(fmt.Sprintf("  fetch failed: %v\n", report.Avatar.FetchErr))
	}
	sb.WriteString(fmt.Sprintf("Icons:    %d converted, %d failed\n", report.Icons.Converted(), len(report.Icons.Failed())))

	if report.StageErr != nil {
		sb.WriteString("Template: not staged\n")
	} else {
		sb.WriteString("Template: staged\n")
	}

	if report.Compile.Succeeded {
		sb.WriteString(fmt.Sprintf("PDF:      %s\n", filepath.Base(report.Compile.PDFPath)))
		if report.Compile.Pages > 0 {
			sb.WriteString(fmt.Sprintf("Pages:    %d\n", report.Compile.Pages))
		}
	} else {
		sb.WriteString("PDF:      not produced\n")
	}

	sb.WriteString(fmt.Sprintf("Cleanup:  %d removed, %d failed\n", report.Cleanup.Removed(), len(report.Cleanup.Failed())))

	p.printBox("BUILD REPORT", sb.String())
}

// PrintIconFailures lists the icons that could not be converted.
func (p *Printer) PrintIconFailures(summary icons.Summary) {
	failed := summary.Failed()
	if len(failed) == 0 && summary.Err == nil {
		return
	}

	var sb strings.Builder
	if summary.Err != nil {
		sb.WriteString(fmt.Sprintf("%v\n", summary.Err))
	}
	count := min(len(failed), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s: %v\n", failed[i].Name, failed[i].Err))
	}
	if len(failed) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(failed)-maxItemsToShow))
	}

	p.printBox("ICON FAILURES", sb.String())
}

// PrintCleanupFailures lists output entries that survived cleanup.
func (p *Printer) PrintCleanupFailures(summary cleanup.Summary) {
	failed := summary.Failed()
	if len(failed) == 0 && summary.Err == nil {
		return
	}

	var sb strings.Builder
	if summary.Err != nil {
		sb.WriteString(fmt.Sprintf("%v\n", summary.Err))
	}
	count := min(len(failed), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s: %v\n", failed[i].Name, failed[i].Err))
	}
	if len(failed) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(failed)-maxItemsToShow))
	}

	p.printBox("LEFT IN OUTPUT", sb.String())
}
