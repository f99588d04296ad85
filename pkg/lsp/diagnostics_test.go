package lsp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vito/lil/pkg/lil"
)

func TestErrorToDiagnostics(t *testing.T) {
	t.Run("InferError with location", func(t *testing.T) {
		inferErr := &lil.InferError{
			Inner: fmt.Errorf("%w: cannot add int and bool", lil.ErrMismatch),
			Location: &lil.SourceLocation{
				Filename: "test.lil",
				Line:     5,
				Column:   10,
				Length:   8,
			},
		}

		diags := errorToDiagnostics(inferErr)
		require.Len(t, diags, 1)
		diag := diags[0]
		require.Equal(t, "type error: type mismatch: cannot add int and bool", diag.Message)
		require.Equal(t, 4, diag.Range.Start.Line)      // 0-based
		require.Equal(t, 9, diag.Range.Start.Character) // 0-based
		require.Equal(t, 17, diag.Range.End.Character)  // start + length
		require.Equal(t, SeverityError, diag.Severity)
		require.Equal(t, "lil", diag.Source)
	})

	t.Run("InferError with end position", func(t *testing.T) {
		inferErr := &lil.InferError{
			Inner: fmt.Errorf("%w: y", lil.ErrUnbound),
			Location: &lil.SourceLocation{
				Filename: "test.lil",
				Line:     3,
				Column:   5,
				Length:   10,
				End: &lil.SourcePosition{
					Line:   4,
					Column: 2,
				},
			},
		}

		diags := errorToDiagnostics(inferErr)
		require.Len(t, diags, 1)
		require.Equal(t, Range{
			Start: Position{Line: 2, Character: 4},
			End:   Position{Line: 3, Character: 1},
		}, diags[0].Range)
	})

	t.Run("wrapped parse error", func(t *testing.T) {
		_, err := lil.Parse("test.lil", []byte("let x = 1\n  in"))
		require.Error(t, err)

		diags := errorToDiagnostics(fmt.Errorf("checking: %w", err))
		require.Len(t, diags, 1)
		require.Contains(t, diags[0].Message, "syntax error")
		require.Equal(t, 1, diags[0].Range.Start.Line)
	})

	t.Run("error without location", func(t *testing.T) {
		diags := errorToDiagnostics(errors.New("boom"))
		require.Len(t, diags, 1)
		require.Equal(t, "boom", diags[0].Message)
		require.Equal(t, Position{}, diags[0].Range.Start)
		require.Equal(t, Position{Line: 0, Character: 1}, diags[0].Range.End)
	})
}

func TestURIs(t *testing.T) {
	uri := toURI("/tmp/some dir/prog.lil")
	require.Equal(t, DocumentURI("file:///tmp/some%20dir/prog.lil"), uri)

	path, err := fromURI(uri)
	require.NoError(t, err)
	require.Equal(t, "/tmp/some dir/prog.lil", path)

	_, err = fromURI("https://example.com/prog.lil")
	require.Error(t, err)
}

func TestEndOfText(t *testing.T) {
	require.Equal(t, Position{Line: 0, Character: 0}, endOfText(""))
	require.Equal(t, Position{Line: 0, Character: 5}, endOfText("1 + 2"))
	require.Equal(t, Position{Line: 1, Character: 0}, endOfText("1 + 2\n"))
	require.Equal(t, Position{Line: 2, Character: 3}, endOfText("let\nx\n= 1"))
}
