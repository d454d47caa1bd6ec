package icons

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-export/internal/command"
	"github.com/jonathan/resume-export/internal/command/commandtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const svgIcon = `<svg xmlns="http://www.w3.org/2000/svg" width="8" height="8"><rect width="8" height="8"/></svg>`

// writePDF is a handler that behaves like inkscape: it writes the export target.
func writePDF(spec command.Spec) (*command.Result, error) {
	out := spec.Args[len(spec.Args)-1]
	if err := os.WriteFile(out, []byte("%PDF-1.5"), 0644); err != nil {
		return nil, err
	}
	return &command.Result{}, nil
}

func setupIcons(t *testing.T, names ...string) (string, string) {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "icons")
	require.NoError(t, os.MkdirAll(src, 0755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte(svgIcon), 0644))
	}
	return src, filepath.Join(root, "output")
}

func TestConvertAll_OnlyVectorFiles(t *testing.T) {
	src, out := setupIcons(t, "github.svg", "email.svg", "phone.svg", "README.md", "logo.png")
	runner := &commandtest.FakeRunner{Handler: writePDF}
	converter := NewConverter(runner, log.New(&bytes.Buffer{}, "", 0))

	summary := converter.ConvertAll(context.Background(), src, out)

	require.NoError(t, summary.Err)
	assert.Len(t, runner.Calls(), 3)
	assert.Len(t, summary.Results, 3)
	assert.Equal(t, 3, summary.Converted())
	for _, name := range []string{"github.pdf", "email.pdf", "phone.pdf"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.NoFileExists(t, filepath.Join(out, "README.pdf"))
}

func TestConvertAll_InvocationArguments(t *testing.T) {
	src, out := setupIcons(t, "github.svg")
	runner := &commandtest.FakeRunner{Handler: writePDF}
	converter := NewConverter(runner, log.New(&bytes.Buffer{}, "", 0))

	converter.ConvertAll(context.Background(), src, out)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "inkscape", calls[0].Name)
	assert.Equal(t, []string{
		filepath.Join(src, "github.svg"),
		"--export-type=pdf",
		"--export-filename", filepath.Join(out, "github.pdf"),
	}, calls[0].Args)
}

func TestConvertAll_FailureIsIsolated(t *testing.T) {
	src, out := setupIcons(t, "a.svg", "b.svg", "c.svg", "d.svg")
	runner := &commandtest.FakeRunner{Handler: func(spec command.Spec) (*command.Result, error) {
		if filepath.Base(spec.Args[0]) == "b.svg" {
			return commandtest.Fail(spec, 1, "parse error")
		}
		return writePDF(spec)
	}}
	logs := &bytes.Buffer{}
	converter := NewConverter(runner, log.New(logs, "", 0))

	summary := converter.ConvertAll(context.Background(), src, out)

	assert.Len(t, runner.Calls(), 4)
	assert.Equal(t, 3, summary.Converted())
	failed := summary.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "b.svg", failed[0].Name)
	assert.Contains(t, logs.String(), "Failed to convert b.svg")

	pdfs, err := filepath.Glob(filepath.Join(out, "*.pdf"))
	require.NoError(t, err)
	assert.Len(t, pdfs, 3)
}

func TestConvertAll_DirectoryNamedLikeIconFailsAlone(t *testing.T) {
	src, out := setupIcons(t, "real.svg")
	require.NoError(t, os.Mkdir(filepath.Join(src, "nested.svg"), 0755))
	runner := &commandtest.FakeRunner{Handler: func(spec command.Spec) (*command.Result, error) {
		if filepath.Base(spec.Args[0]) == "nested.svg" {
			return commandtest.Fail(spec, 1, "not a file")
		}
		return writePDF(spec)
	}}
	logs := &bytes.Buffer{}

	summary := NewConverter(runner, log.New(logs, "", 0)).ConvertAll(context.Background(), src, out)

	assert.Len(t, runner.Calls(), 2)
	assert.Equal(t, 1, summary.Converted())
	failed := summary.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "nested.svg", failed[0].Name)
	assert.Contains(t, logs.String(), "Failed to convert nested.svg")
}

func TestConvertAll_MissingSourceDirectory(t *testing.T) {
	root := t.TempDir()
	runner := &commandtest.FakeRunner{Handler: writePDF}
	logs := &bytes.Buffer{}

	summary := NewConverter(runner, log.New(logs, "", 0)).ConvertAll(context.Background(), filepath.Join(root, "missing"), filepath.Join(root, "out"))

	require.Error(t, summary.Err)
	assert.ErrorIs(t, summary.Err, os.ErrNotExist)
	assert.Empty(t, runner.Calls())
	assert.Empty(t, summary.Results)
	assert.Contains(t, logs.String(), "Failed to read icon directory")
}

func TestConvertAll_EmptyDirectory(t *testing.T) {
	src, out := setupIcons(t)
	runner := &commandtest.FakeRunner{Handler: writePDF}

	summary := NewConverter(runner, log.New(&bytes.Buffer{}, "", 0)).ConvertAll(context.Background(), src, out)

	require.NoError(t, summary.Err)
	assert.Empty(t, summary.Results)
	assert.Equal(t, 0, summary.Converted())
	assert.DirExists(t, out)
}

func TestConvertAll_CustomExtension(t *testing.T) {
	src, out := setupIcons(t, "a.svgz", "b.svg")
	runner := &commandtest.FakeRunner{Handler: writePDF}
	converter := NewConverter(runner, log.New(&bytes.Buffer{}, "", 0))
	converter.Extension = ".svgz"

	summary := converter.ConvertAll(context.Background(), src, out)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, filepath.Join(out, "a.pdf"), summary.Results[0].Output)
}
