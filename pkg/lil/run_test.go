package lil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"

	"github.com/vito/lil/pkg/hm"
	"github.com/vito/lil/pkg/ioctx"
)

func TestRunSource(t *testing.T) {
	ctx := context.Background()

	t.Run("checks then evaluates", func(t *testing.T) {
		res, err := RunSource(ctx, DefaultRunConfig(), "prog.lil", []byte("let x = 1 + 2 in x = 3"))
		require.NoError(t, err)
		require.Equal(t, hm.Bool, res.Type)
		require.Equal(t, BoolValue{Val: true}, res.Value)
		require.Equal(t, "true : bool", res.Describe(true))
		require.Equal(t, "true", res.Describe(false))
	})

	t.Run("strict type error stops evaluation", func(t *testing.T) {
		_, err := RunSource(ctx, DefaultRunConfig(), "prog.lil", []byte("(x: int -> x) < true"))
		require.ErrorIs(t, err, ErrMismatch)

		var sourceErr *SourceError
		require.ErrorAs(t, err, &sourceErr)
		var inferErr *InferError
		require.ErrorAs(t, err, &inferErr)
	})

	t.Run("advisory type error still evaluates", func(t *testing.T) {
		cfg := DefaultRunConfig()
		cfg.Strict = false

		res, err := RunSource(ctx, cfg, "prog.lil", []byte("(x: int -> x) < true"))
		require.NoError(t, err)
		require.Nil(t, res.Type)
		require.Equal(t, BoolValue{Val: true}, res.Value)
		require.Equal(t, "true", res.Describe(true))
	})

	t.Run("unchecked runtime error", func(t *testing.T) {
		cfg := DefaultRunConfig()
		cfg.Typecheck = false

		_, err := RunSource(ctx, cfg, "prog.lil", []byte("1 + true"))
		require.ErrorIs(t, err, ErrMismatch)

		var evalErr *EvalError
		require.ErrorAs(t, err, &evalErr)
	})

	t.Run("debug dumps the tree", func(t *testing.T) {
		var stderr bytes.Buffer
		ctx := ioctx.StderrToContext(ctx, &stderr)

		cfg := DefaultRunConfig()
		cfg.Debug = true

		_, err := RunSource(ctx, cfg, "prog.lil", []byte("let x = 1 in x"))
		require.NoError(t, err)
		require.Contains(t, stderr.String(), "lil.Let")
	})
}

func TestSourceErrors(t *testing.T) {
	for _, example := range []struct {
		Name   string
		Source string
		Config func(*RunConfig)
	}{
		{
			Name:   "syntax_error",
			Source: "let x = 1\nx + 2",
		},
		{
			Name:   "type_error",
			Source: "let x = 1 in\n  x + true",
		},
		{
			Name:   "forward_capture",
			Source: "let f = (x: int -> x + y) in\nlet y = 1 in\nf < 5",
			Config: func(cfg *RunConfig) { cfg.Typecheck = false },
		},
	} {
		t.Run(example.Name, func(t *testing.T) {
			cfg := DefaultRunConfig()
			if example.Config != nil {
				example.Config(&cfg)
			}

			_, err := RunSource(context.Background(), cfg, "prog.lil", []byte(example.Source))
			require.Error(t, err)

			var sourceErr *SourceError
			require.ErrorAs(t, err, &sourceErr)

			golden.Assert(t, ansi.Strip(sourceErr.FormatWithHighlighting()), example.Name+".golden")
		})
	}
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.lil")
	require.NoError(t, os.WriteFile(path, []byte("(x: int -> (y: int -> x + y)) < 3 < 4\n"), 0o644))

	res, err := RunFile(context.Background(), DefaultRunConfig(), path)
	require.NoError(t, err)
	require.Equal(t, "7 : int", res.Describe(true))

	_, err = RunFile(context.Background(), DefaultRunConfig(), filepath.Join(dir, "missing.lil"))
	require.ErrorContains(t, err, "failed to read source file")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"good.lil":   "let f = x: int -> x + 1 in f",
		"bad.lil":    "1 + true",
		"broken.lil": "let",
	}
	var paths []string
	for _, name := range []string{"good.lil", "bad.lil", "broken.lil"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(files[name]), 0o644))
		paths = append(paths, path)
	}

	results, err := CheckFiles(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Equal(t, paths[0], results[0].Path)
	require.NoError(t, results[0].Err)
	require.Equal(t, "int -> int", results[0].Type.String())

	require.Equal(t, paths[1], results[1].Path)
	require.ErrorIs(t, results[1].Err, ErrMismatch)
	require.Nil(t, results[1].Type)

	require.Equal(t, paths[2], results[2].Path)
	require.ErrorIs(t, results[2].Err, ErrSyntax)

	t.Run("unreadable file aborts", func(t *testing.T) {
		_, err := CheckFiles(context.Background(), append(paths, filepath.Join(dir, "missing.lil")))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
