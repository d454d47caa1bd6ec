package latex

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/resume-export/internal/command"
)

// CountPDFPages counts the number of pages in a PDF file.
// It tries pdfinfo first, then falls back to ghostscript.
func CountPDFPages(ctx context.Context, runner command.Runner, pdfPath string) (int, error) {
	// Try pdfinfo first (from poppler-utils)
	if count, err := countPagesWithPdfinfo(ctx, runner, pdfPath); err == nil {
		return count, nil
	}

	// Fallback to ghostscript
	if count, err := countPagesWithGhostscript(ctx, runner, pdfPath); err == nil {
		return count, nil
	}

	return 0, &PageCountError{
		Message: "neither pdfinfo nor ghostscript could read the PDF. Please install poppler-utils (pdfinfo) or ghostscript",
	}
}

// countPagesWithPdfinfo uses pdfinfo to count PDF pages
func countPagesWithPdfinfo(ctx context.Context, runner command.Runner, pdfPath string) (int, error) {
	result, err := runner.Run(ctx, command.Spec{Name: "pdfinfo", Args: []string{pdfPath}})
	if err != nil {
		return 0, fmt.Errorf("pdfinfo command failed: %w", err)
	}

	// Parse output looking for "Pages: N"
	for _, line := range strings.Split(result.Output, "\n") {
		if strings.HasPrefix(line, "Pages:") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				if count, err := strconv.Atoi(parts[1]); err == nil {
					return count, nil
				}
			}
		}
	}

	return 0, fmt.Errorf("could not parse page count from pdfinfo output")
}

// countPagesWithGhostscript uses ghostscript to count PDF pages
func countPagesWithGhostscript(ctx context.Context, runner command.Runner, pdfPath string) (int, error) {
	// gs -q -dNODISPLAY -dNOSAFER -c "(file.pdf) (r) file runpdfbegin pdfpagecount = quit"
	script := fmt.Sprintf("(%s) (r) file runpdfbegin pdfpagecount = quit", pdfPath)
	result, err := runner.Run(ctx, command.Spec{Name: "gs", Args: []string{"-q", "-dNODISPLAY", "-dNOSAFER", "-c", script}})
	if err != nil {
		return 0, fmt.Errorf("ghostscript command failed: %w", err)
	}

	// Output should be just the page count number
	outputStr := strings.TrimSpace(result.Output)
	count, err := strconv.Atoi(outputStr)
	if err != nil {
		return 0, fmt.Errorf("could not parse page count from ghostscript output: %s", outputStr)
	}

	return count, nil
}
