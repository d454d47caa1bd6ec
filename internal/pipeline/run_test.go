package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-export/internal/command"
	"github.com/jonathan/resume-export/internal/command/commandtest"
	"github.com/jonathan/resume-export/internal/config"
)

type stubFetcher struct {
	data []byte
	err  error
}

func (s stubFetcher) FetchAvatar(_ context.Context, _ string) ([]byte, error) {
	return s.data, s.err
}

// workspace lays out a template directory and an icon directory under a temp
// root and returns a config pointing at them.
func workspace(t *testing.T, icons ...string) config.Config {
	t.Helper()
	root := t.TempDir()

	templateDir := filepath.Join(root, "template")
	require.NoError(t, os.MkdirAll(templateDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(templateDir, "template.tex"), []byte(`\documentclass{article}`), 0644))

	iconDir := filepath.Join(root, "icons")
	require.NoError(t, os.MkdirAll(iconDir, 0755))
	for _, name := range icons {
		require.NoError(t, os.WriteFile(filepath.Join(iconDir, name), []byte("<svg/>"), 0644))
	}

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.TemplatePath = filepath.Join(templateDir, "template.tex")
	cfg.DefaultAvatarPath = filepath.Join(templateDir, "untitled.jpg")
	cfg.IconDir = iconDir
	return cfg
}

// toolchain fakes inkscape and xelatex by writing the files they would produce.
func toolchain(t *testing.T, compileFails bool) *commandtest.FakeRunner {
	t.Helper()
	return &commandtest.FakeRunner{
		Handler: func(spec command.Spec) (*command.Result, error) {
			switch spec.Name {
			case "inkscape":
				require.NoError(t, os.WriteFile(spec.Args[3], []byte("%PDF icon"), 0644))
				return &command.Result{}, nil
			case "xelatex":
				require.NoError(t, os.WriteFile(filepath.Join(spec.Dir, "resume.log"), []byte("log"), 0644))
				require.NoError(t, os.WriteFile(filepath.Join(spec.Dir, "resume.aux"), []byte("aux"), 0644))
				if compileFails {
					return commandtest.Fail(spec, 1, "! Undefined control sequence.\n")
				}
				require.NoError(t, os.WriteFile(filepath.Join(spec.Dir, "resume.pdf"), []byte("%PDF resume"), 0644))
				return &command.Result{Output: "Output written on resume.pdf (1 page)."}, nil
			case "pdfinfo":
				return &command.Result{Output: "Title: resume\nPages:          1\n"}, nil
			}
			return commandtest.Fail(spec, 127, "unexpected program")
		},
	}
}

func outputNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunPipeline_NoAvatarOneIcon(t *testing.T) {
	cfg := workspace(t, "github.svg")
	runner := toolchain(t, false)
	logs := &bytes.Buffer{}

	report, err := RunPipeline(context.Background(), RunOptions{
		Config: cfg,
		Runner: runner,
		Logger: log.New(logs, "", 0),
	})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, report.Succeeded())
	assert.Equal(t, []string{"resume.pdf"}, outputNames(t, cfg.OutputDir))
	assert.Equal(t, 1, report.Icons.Converted())
	assert.Contains(t, logs.String(), "No avatar image available")
	assert.Equal(t, []State{
		StateInit,
		StateAvatarResolved,
		StateIconsConverted,
		StateTemplateStaged,
		StateCompiledSuccess,
		StateCleaned,
		StateDone,
	}, report.States)

	// Icons are converted before the engine runs in the output directory.
	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "inkscape", calls[0].Name)
	assert.Equal(t, "xelatex", calls[1].Name)
	assert.Equal(t, cfg.OutputDir, calls[1].Dir)
	assert.Equal(t, []string{"--shell-escape", "-interaction=nonstopmode", "resume.tex"}, calls[1].Args)
}

func TestRunPipeline_FetchedAvatarStagedBeforeCompile(t *testing.T) {
	cfg := workspace(t)
	avatarBytes := []byte("fresh avatar")

	var avatarAtCompile []byte
	base := toolchain(t, false)
	runner := &commandtest.FakeRunner{
		Handler: func(spec command.Spec) (*command.Result, error) {
			if spec.Name == "xelatex" {
				data, err := os.ReadFile(filepath.Join(spec.Dir, "untitled.jpg"))
				require.NoError(t, err)
				avatarAtCompile = data
			}
			return base.Handler(spec)
		},
	}

	report, err := RunPipeline(context.Background(), RunOptions{
		Config:  cfg,
		Handle:  "octocat",
		Runner:  runner,
		Fetcher: stubFetcher{data: avatarBytes},
		Logger:  log.New(&bytes.Buffer{}, "", 0),
	})
	require.NoError(t, err)

	assert.Equal(t, avatarBytes, avatarAtCompile)
	assert.True(t, report.Avatar.Fetched)

	persisted, err := os.ReadFile(cfg.DefaultAvatarPath)
	require.NoError(t, err)
	assert.Equal(t, avatarBytes, persisted)

	// The avatar is a build input, not an artifact.
	assert.Equal(t, []string{"resume.pdf"}, outputNames(t, cfg.OutputDir))
}

func TestRunPipeline_FetchFailureFallsBackToDefault(t *testing.T) {
	cfg := workspace(t)
	require.NoError(t, os.WriteFile(cfg.DefaultAvatarPath, []byte("bundled"), 0644))
	logs := &bytes.Buffer{}

	report, err := RunPipeline(context.Background(), RunOptions{
		Config:  cfg,
		Handle:  "ghost",
		Runner:  toolchain(t, false),
		Fetcher: stubFetcher{err: errors.New("404 not found")},
		Logger:  log.New(logs, "", 0),
	})
	require.NoError(t, err)

	assert.Equal(t, "default", string(report.Avatar.Source))
	assert.Error(t, report.Avatar.FetchErr)
	assert.Contains(t, logs.String(), "Failed to fetch avatar")
	assert.True(t, report.Succeeded())
}

func TestRunPipeline_CompileFailureStillCleans(t *testing.T) {
	cfg := workspace(t, "email.svg")
	cfg.Verbose = true
	logs := &bytes.Buffer{}

	report, err := RunPipeline(context.Background(), RunOptions{
		Config: cfg,
		Runner: toolchain(t, true),
		Logger: log.New(logs, "", 0),
	})
	require.NoError(t, err)

	assert.False(t, report.Succeeded())
	assert.Error(t, report.Compile.Err)
	assert.Contains(t, report.States, StateCompiledFailure)
	assert.Contains(t, report.States, StateCleaned)
	assert.Empty(t, outputNames(t, cfg.OutputDir))
	assert.Contains(t, logs.String(), "PDF compilation failed")
	assert.Contains(t, logs.String(), "Undefined control sequence")
}

func TestRunPipeline_IconFailureIsolated(t *testing.T) {
	cfg := workspace(t, "bad.svg", "good.svg")
	base := toolchain(t, false)
	runner := &commandtest.FakeRunner{
		Handler: func(spec command.Spec) (*command.Result, error) {
			if spec.Name == "inkscape" && filepath.Base(spec.Args[0]) == "bad.svg" {
				return commandtest.Fail(spec, 1, "parse error")
			}
			return base.Handler(spec)
		},
	}

	report, err := RunPipeline(context.Background(), RunOptions{
		Config: cfg,
		Runner: runner,
		Logger: log.New(&bytes.Buffer{}, "", 0),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Icons.Converted())
	require.Len(t, report.Icons.Failed(), 1)
	assert.Equal(t, "bad.svg", report.Icons.Failed()[0].Name)
	assert.True(t, report.Succeeded())
}

func TestRunPipeline_StagingFailureSkipsCompile(t *testing.T) {
	cfg := workspace(t)
	cfg.TemplatePath = filepath.Join(t.TempDir(), "missing.tex")
	runner := toolchain(t, false)

	report, err := RunPipeline(context.Background(), RunOptions{
		Config: cfg,
		Runner: runner,
		Logger: log.New(&bytes.Buffer{}, "", 0),
	})
	require.NoError(t, err)

	assert.Error(t, report.StageErr)
	assert.Error(t, report.Compile.Err)
	assert.False(t, report.Succeeded())
	assert.Contains(t, report.States, StateCleaned)
	for _, call := range runner.Calls() {
		assert.NotEqual(t, "xelatex", call.Name)
	}
}

func TestRunPipeline_OutputDirCannotBeCreated(t *testing.T) {
	cfg := workspace(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.OutputDir = filepath.Join(blocker, "output")
	runner := toolchain(t, false)

	report, err := RunPipeline(context.Background(), RunOptions{
		Config: cfg,
		Runner: runner,
		Logger: log.New(&bytes.Buffer{}, "", 0),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
	require.NotNil(t, report)
	assert.Equal(t, []State{StateInit}, report.States)
	assert.Empty(t, runner.Calls())
}

func TestRunPipeline_ProgressEventsCarryRunID(t *testing.T) {
	cfg := workspace(t)
	var events []ProgressEvent

	report, err := RunPipeline(context.Background(), RunOptions{
		Config:     cfg,
		Runner:     toolchain(t, false),
		Logger:     log.New(&bytes.Buffer{}, "", 0),
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	require.Len(t, events, len(report.States))
	for i, e := range events {
		assert.Equal(t, report.RunID.String(), e.RunID)
		assert.Equal(t, report.States[i], e.Step)
		assert.NotEmpty(t, e.Message)
	}
	assert.Equal(t, StateDone, events[len(events)-1].Step)
}

func TestRunPipeline_VerboseCountsPages(t *testing.T) {
	cfg := workspace(t)
	cfg.Verbose = true
	logs := &bytes.Buffer{}

	report, err := RunPipeline(context.Background(), RunOptions{
		Config: cfg,
		Runner: toolchain(t, false),
		Logger: log.New(logs, "", 0),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Compile.Pages)
	assert.Contains(t, logs.String(), "[VERBOSE] resume.pdf has 1 page(s)")
}

func TestTail(t *testing.T) {
	assert.Equal(t, "c\nd", tail("a\nb\nc\nd\n", 2))
	assert.Equal(t, "a", tail("a", 5))
}
