// Package staging copies static build inputs into the output workspace.
package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Error represents a failure copying a file into place
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("staging error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("staging error for %s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Stage copies the template at src to dst unmodified, creating any missing
// parent directories and overwriting an existing file.
func Stage(src, dst string) error {
	return CopyFile(src, dst)
}

// CopyFile copies src to dst byte for byte. Copying a file onto itself is a no-op.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &Error{Path: src, Message: "failed to open source", Cause: err}
	}
	defer func() { _ = in.Close() }()

	srcInfo, err := in.Stat()
	if err != nil {
		return &Error{Path: src, Message: "failed to stat source", Cause: err}
	}
	if srcInfo.IsDir() {
		return &Error{Path: src, Message: "source is a directory"}
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
		return nil
	}

	if err := ensureParent(dst); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return &Error{Path: dst, Message: "failed to create destination", Cause: err}
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return &Error{Path: dst, Message: "failed to copy contents", Cause: err}
	}
	if err := out.Close(); err != nil {
		return &Error{Path: dst, Message: "failed to flush destination", Cause: err}
	}

	return nil
}

// WriteFile writes data to dst, creating any missing parent directories.
func WriteFile(dst string, data []byte) error {
	if err := ensureParent(dst); err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return &Error{Path: dst, Message: "failed to write file", Cause: err}
	}
	return nil
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &Error{Path: dir, Message: "failed to create directory", Cause: err}
	}
	return nil
}
