package lil

import (
	"context"
	"os"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type FormatSuite struct{}

func TestFormat(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(FormatSuite{})
}

func (FormatSuite) TestSpacing(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "operators get single spaces",
			input:    `1+2=3`,
			expected: "1 + 2 = 3\n",
		},
		{
			name: "let collapses onto one line",
			input: `let   x=1+2
in
  x=3`,
			expected: "let x = 1 + 2 in x = 3\n",
		},
		{
			name:     "function",
			input:    `x:int->x+2`,
			expected: "x: int -> x + 2\n",
		},
		{
			name:     "applications",
			input:    `3>f<2`,
			expected: "3 > f < 2\n",
		},
		{
			name:     "and",
			input:    "true  and\tfalse",
			expected: "true and false\n",
		},
		{
			name:     "signs are folded",
			input:    `--5 + -+3`,
			expected: "5 + -3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			result, err := FormatFile([]byte(tt.input))
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func (FormatSuite) TestParens(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "written parens are kept",
			input:    `( 1 + 2 ) + 3`,
			expected: "(1 + 2) + 3\n",
		},
		{
			name:     "right-nested parens are kept",
			input:    `(x: int -> (y: int -> x + y)) < 3 < 4`,
			expected: "(x: int -> (y: int -> x + y)) < 3 < 4\n",
		},
		{
			name:     "function-typed parameter",
			input:    `f: ( int->int ) -> f < 1`,
			expected: "f: (int -> int) -> f < 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			result, err := FormatFile([]byte(tt.input))
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func (FormatSuite) TestBuiltTrees(ctx context.Context, t *testctx.T) {
	one := &IntLiteral{Value: 1}
	two := &IntLiteral{Value: 2}
	three := &IntLiteral{Value: 3}

	tests := []struct {
		name     string
		node     Node
		expected string
	}{
		{
			name:     "left-nested add needs no parens",
			node:     &Add{Left: &Add{Left: one, Right: two}, Right: three},
			expected: "1 + 2 + 3",
		},
		{
			name:     "right-nested add keeps its grouping",
			node:     &Add{Left: one, Right: &Add{Left: two, Right: three}},
			expected: "1 + (2 + 3)",
		},
		{
			name:     "looser operand is wrapped",
			node:     &Add{Left: &Eq{Left: one, Right: two}, Right: three},
			expected: "(1 = 2) + 3",
		},
		{
			name:     "tighter operand is not",
			node:     &Eq{Left: &Add{Left: one, Right: two}, Right: three},
			expected: "1 + 2 = 3",
		},
		{
			name: "binder as an operand",
			node: &LApp{
				Fun: &Function{Param: "x", ParamType: &IntTypeNode{}, Ret: &Var{Name: "x"}},
				Arg: one,
			},
			expected: "(x: int -> x) < 1",
		},
		{
			name: "let as an argument",
			node: &RApp{
				Arg: &Let{Name: "y", Right: one, Body: &Var{Name: "y"}},
				Fun: &Var{Name: "f"},
			},
			expected: "(let y = 1 in y) > f",
		},
		{
			name: "bare arrow parameter type",
			node: &Function{
				Param:     "f",
				ParamType: &FunTypeNode{Arg: &IntTypeNode{}, Ret: &BoolTypeNode{}},
				Ret:       &LApp{Fun: &Var{Name: "f"}, Arg: one},
			},
			expected: "f: (int -> bool) -> f < 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			require.Equal(t, tt.expected, Format(tt.node))
		})
	}
}

func (FormatSuite) TestRoundTrip(ctx context.Context, t *testctx.T) {
	for _, prog := range loadPrograms(t) {
		t.Run(prog.Name, func(ctx context.Context, t *testctx.T) {
			once, err := FormatFile([]byte(prog.Source))
			if prog.SyntaxError != "" {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			twice, err := FormatFile([]byte(once))
			require.NoError(t, err)
			require.Equal(t, once, twice)
		})
	}
}

func (FormatSuite) TestSyntaxError(ctx context.Context, t *testctx.T) {
	_, err := FormatFile([]byte("let x = in x"))
	require.ErrorIs(t, err, ErrSyntax)
}
