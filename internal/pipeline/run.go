// Package pipeline provides the high-level orchestration for the résumé build.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-export/internal/avatar"
	"github.com/jonathan/resume-export/internal/cleanup"
	"github.com/jonathan/resume-export/internal/command"
	"github.com/jonathan/resume-export/internal/config"
	"github.com/jonathan/resume-export/internal/icons"
	"github.com/jonathan/resume-export/internal/latex"
	"github.com/jonathan/resume-export/internal/staging"
)

// logTailLines is how much engine output is echoed in verbose mode after a failure
const logTailLines = 20

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    State  `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Config config.Config

	// Handle is the optional profile to fetch an avatar for.
	Handle string
	// CustomAvatar is an optional local image that takes priority over everything.
	CustomAvatar string

	// Runner executes the converter, compiler and page counters.
	// Defaults to command.ExecRunner.
	Runner command.Runner
	// Fetcher downloads avatars. Defaults to an avatar.Client built from Config.
	Fetcher avatar.Fetcher

	Logger     *log.Logger
	OnProgress ProgressCallback
}

// CompileOutcome records what the document compiler did.
type CompileOutcome struct {
	Succeeded bool
	PDFPath   string
	Pages     int // zero when not counted
	Err       error
}

// Report is the outcome of every step of one run.
type Report struct {
	RunID    uuid.UUID
	Avatar   avatar.Outcome
	Icons    icons.Summary
	StageErr error
	Compile  CompileOutcome
	Cleanup  cleanup.Summary
	States   []State
}

// Succeeded reports whether the compiled document was produced.
func (r *Report) Succeeded() bool {
	return r.Compile.Succeeded
}

type run struct {
	opts   RunOptions
	cfg    config.Config
	logger *log.Logger
	runner command.Runner
	report *Report
}

// RunPipeline builds the résumé: avatar, icons, template, compile, cleanup.
// Step failures are logged and recorded in the Report; the run always
// reaches cleanup and ends in StateDone. The one exception is an output
// directory that cannot be created: the run stops right after StateInit
// and that error is returned.
func RunPipeline(ctx context.Context, opts RunOptions) (*Report, error) {
	r := &run{
		opts:   opts,
		cfg:    opts.Config,
		logger: opts.Logger,
		runner: opts.Runner,
		report: &Report{RunID: uuid.New()},
	}
	if r.logger == nil {
		r.logger = log.New(os.Stdout, "", 0)
	}
	if r.runner == nil {
		r.runner = command.NewExecRunner()
	}

	r.enter(StateInit, fmt.Sprintf("Starting build %s", r.report.RunID))

	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return r.report, fmt.Errorf("failed to create output directory %s: %w", r.cfg.OutputDir, err)
	}

	r.resolveAvatar(ctx)
	r.convertIcons(ctx)
	r.stageTemplate()
	r.compile(ctx)
	r.cleanOutput()

	r.enter(StateDone, "Build finished")
	return r.report, nil
}

func (r *run) resolveAvatar(ctx context.Context) {
	r.logger.Printf("Step 1/%d: Resolving avatar...", totalSteps)

	fetcher := r.opts.Fetcher
	if fetcher == nil {
		fetcher = avatar.NewClient(r.cfg.ProfileAPIBase, r.cfg.HTTPTimeout())
	}
	resolver := &avatar.Resolver{
		Fetcher:        fetcher,
		DefaultPath:    r.cfg.DefaultAvatarPath,
		DestPath:       r.cfg.AvatarDestPath(),
		PersistFetched: r.cfg.PersistFetchedAvatar(),
		Logger:         r.logger,
	}

	r.report.Avatar = resolver.Resolve(ctx, avatar.Request{
		Handle:     r.opts.Handle,
		CustomPath: r.opts.CustomAvatar,
	})
	r.enter(StateAvatarResolved, fmt.Sprintf("Avatar source: %s", r.report.Avatar.Source))
}

func (r *run) convertIcons(ctx context.Context) {
	r.logger.Printf("Step 2/%d: Converting icons in %s...", totalSteps, r.cfg.IconDir)

	converter := icons.NewConverter(r.runner, r.logger)
	converter.Program = r.cfg.Converter
	converter.Extension = r.cfg.IconExtension

	summary := converter.ConvertAll(ctx, r.cfg.IconDir, r.cfg.OutputDir)
	r.report.Icons = summary
	r.enter(StateIconsConverted, fmt.Sprintf("Converted %d of %d icons", summary.Converted(), len(summary.Results)))
}

func (r *run) stageTemplate() {
	r.logger.Printf("Step 3/%d: Staging template...", totalSteps)

	dst := r.cfg.StagedTemplatePath()
	if err := staging.Stage(r.cfg.TemplatePath, dst); err != nil {
		r.report.StageErr = err
		r.logger.Printf("Error: Failed to stage template: %v", err)
		r.enter(StateTemplateStaged, "Template not staged")
		return
	}

	r.logger.Printf("Copied LaTeX resume: %s", dst)
	r.enter(StateTemplateStaged, fmt.Sprintf("Staged %s", dst))
}

func (r *run) compile(ctx context.Context) {
	r.logger.Printf("Step 4/%d: Compiling PDF...", totalSteps)

	if r.report.StageErr != nil {
		r.report.Compile.Err = fmt.Errorf("template not staged: %w", r.report.StageErr)
		r.logger.Printf("Error: PDF compilation skipped: template not staged")
		r.enter(StateCompiledFailure, "Compilation skipped")
		return
	}

	compiler := latex.NewCompiler(r.runner)
	compiler.Engine = r.cfg.Compiler
	compiler.Timeout = r.cfg.CompileTimeout()

	result, err := compiler.Compile(ctx, r.cfg.OutputDir, r.cfg.StagedTemplate)
	if err != nil {
		r.report.Compile.Err = err
		r.logger.Printf("Error: PDF compilation failed: %v", err)
		if r.cfg.Verbose {
			var compErr *latex.CompilationError
			if errors.As(err, &compErr) && compErr.LogOutput != "" {
				r.logger.Printf("[VERBOSE] Last engine output:\n%s", tail(compErr.LogOutput, logTailLines))
			}
		}
		r.enter(StateCompiledFailure, "Compilation failed")
		return
	}

	r.report.Compile.Succeeded = true
	r.report.Compile.PDFPath = result.PDFPath
	r.logger.Printf("PDF built successfully.")

	if r.cfg.Verbose {
		pages, err := latex.CountPDFPages(ctx, r.runner, result.PDFPath)
		if err != nil {
			r.logger.Printf("[VERBOSE] Could not count pages: %v", err)
		} else {
			r.report.Compile.Pages = pages
			r.logger.Printf("[VERBOSE] %s has %d page(s)", r.cfg.ArtifactName, pages)
		}
	}
	r.enter(StateCompiledSuccess, fmt.Sprintf("Compiled %s", result.PDFPath))
}

func (r *run) cleanOutput() {
	r.logger.Printf("Step 5/%d: Cleaning up temporary files...", totalSteps)

	summary := cleanup.Clean(r.cfg.OutputDir, r.cfg.ArtifactName, r.logger)
	r.report.Cleanup = summary
	r.enter(StateCleaned, fmt.Sprintf("Removed %d entries", summary.Removed()))
}

// enter records a state transition and notifies the progress callback
func (r *run) enter(state State, message string) {
	r.report.States = append(r.report.States, state)
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(ProgressEvent{
			Step:    state,
			Message: message,
			RunID:   r.report.RunID.String(),
		})
	}
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
