// Package cleanup purges the output workspace after a build.
package cleanup

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Result describes the removal of one directory entry.
type Result struct {
	Name string
	Err  error
}

// Summary collects per-entry results. Kept is true when an entry named like
// the keep file was present and left alone. Err is set when the directory
// itself could not be listed.
type Summary struct {
	Results []Result
	Kept    bool
	Err     error
}

// Removed returns the number of entries removed successfully.
func (s Summary) Removed() int {
	n := 0
	for _, r := range s.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the entries that could not be removed.
func (s Summary) Failed() []Result {
	var failed []Result
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Clean removes every entry directly inside dir except the one named keep.
// The keep name is matched exactly whether or not that file exists.
// Directories are removed recursively; files and symlinks are unlinked
// without following them. A failed removal is recorded and the rest continue.
func Clean(dir, keep string, logger *log.Logger) Summary {
	if logger == nil {
		logger = log.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Printf("Warning: Failed to list %s: %v", dir, err)
		return Summary{Err: fmt.Errorf("failed to list output directory: %w", err)}
	}

	var summary Summary
	for _, entry := range entries {
		name := entry.Name()
		if name == keep {
			summary.Kept = true
			continue
		}

		path := filepath.Join(dir, name)
		var removeErr error
		if entry.IsDir() {
			removeErr = os.RemoveAll(path)
		} else {
			removeErr = os.Remove(path)
		}

		if removeErr != nil {
			logger.Printf("Warning: Failed to remove %s: %v", name, removeErr)
		} else {
			logger.Printf("Removed: %s", name)
		}
		summary.Results = append(summary.Results, Result{Name: name, Err: removeErr})
	}

	return summary
}
