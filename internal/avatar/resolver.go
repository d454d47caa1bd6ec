package avatar

import (
	"context"
	"log"
	"os"

	"github.com/jonathan/resume-export/internal/staging"
)

// Source identifies where the avatar copied into the output came from.
type Source string

const (
	SourceCustom  Source = "custom"
	SourceFetched Source = "fetched"
	SourceDefault Source = "default"
	SourceNone    Source = "none"
)

// Fetcher downloads the avatar image for a profile handle.
type Fetcher interface {
	FetchAvatar(ctx context.Context, handle string) ([]byte, error)
}

// Request names the optional inputs of one resolution.
type Request struct {
	Handle     string
	CustomPath string
}

// Outcome reports what Resolve did. Path is the destination file when an
// avatar was placed, empty otherwise.
type Outcome struct {
	Source   Source
	Path     string
	Fetched  bool
	FetchErr error
	CopyErr  error
}

// Resolver places the avatar image at DestPath.
//
// Priority: an existing CustomPath, then bytes fetched during this call,
// then a file already at DefaultPath, then nothing. Fetched bytes are carried
// in memory, so a file left at DefaultPath by an earlier run never counts as
// a fresh fetch. With PersistFetched the bytes are also written to
// DefaultPath for later offline runs.
type Resolver struct {
	Fetcher        Fetcher
	DefaultPath    string
	DestPath       string
	PersistFetched bool
	Logger         *log.Logger
}

// Resolve never fails; every problem is logged and reported in the Outcome.
func (r *Resolver) Resolve(ctx context.Context, req Request) Outcome {
	logger := r.logger()
	outcome := Outcome{Source: SourceNone}

	var fetched []byte
	if req.Handle != "" && r.Fetcher != nil {
		logger.Printf("Fetching avatar for profile: %s", req.Handle)
		data, err := r.Fetcher.FetchAvatar(ctx, req.Handle)
		if err != nil {
			outcome.FetchErr = err
			logger.Printf("Warning: Failed to fetch avatar: %v", err)
		} else {
			fetched = data
			outcome.Fetched = true
			r.persist(logger, data)
		}
	}

	switch {
	case req.CustomPath != "" && fileExists(req.CustomPath):
		outcome.Source = SourceCustom
		outcome.CopyErr = staging.CopyFile(req.CustomPath, r.DestPath)
	case outcome.Fetched:
		outcome.Source = SourceFetched
		outcome.CopyErr = staging.WriteFile(r.DestPath, fetched)
	case r.DefaultPath != "" && fileExists(r.DefaultPath):
		outcome.Source = SourceDefault
		outcome.CopyErr = staging.CopyFile(r.DefaultPath, r.DestPath)
	default:
		if req.CustomPath != "" {
			logger.Printf("Warning: Custom avatar not found: %s", req.CustomPath)
		}
		logger.Printf("Warning: No avatar image available. Resume may not render properly.")
		return outcome
	}

	if req.CustomPath != "" && outcome.Source != SourceCustom {
		logger.Printf("Warning: Custom avatar not found: %s (using %s avatar)", req.CustomPath, outcome.Source)
	}

	if outcome.CopyErr != nil {
		logger.Printf("Warning: Failed to place %s avatar: %v", outcome.Source, outcome.CopyErr)
		return outcome
	}

	outcome.Path = r.DestPath
	logger.Printf("Avatar prepared at: %s (%s)", r.DestPath, outcome.Source)
	return outcome
}

func (r *Resolver) persist(logger *log.Logger, data []byte) {
	if !r.PersistFetched || r.DefaultPath == "" {
		return
	}
	if err := staging.WriteFile(r.DefaultPath, data); err != nil {
		logger.Printf("Warning: Failed to save fetched avatar: %v", err)
		return
	}
	logger.Printf("Saved avatar image to: %s", r.DefaultPath)
}

func (r *Resolver) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
