package lil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
)

type EvalSuite struct{}

func TestEval(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(EvalSuite{})
}

func (EvalSuite) TestValues(ctx context.Context, t *testctx.T) {
	tests := []struct {
		source   string
		expected Value
	}{
		{"let x = 1 + 2 in x = 3", BoolValue{Val: true}},
		{"let x = 5 + 2 in x = 3", BoolValue{Val: false}},
		{"(x: int -> x + 2) < 3", IntValue{Val: 5}},
		{"(x: int -> (y: int -> x + y)) < 3 < 4", IntValue{Val: 7}},
		{"let f = x: int -> y: int -> x + y + 2 in 3 > f < 2", IntValue{Val: 7}},
		{"true and true = true", BoolValue{Val: true}},
		{"false and true", BoolValue{Val: false}},
		{"false = false", BoolValue{Val: true}},
		{"2147483647 + 1", IntValue{Val: -2147483648}},
		{"-2147483648 + -1", IntValue{Val: 2147483647}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(ctx context.Context, t *testctx.T) {
			val, err := Eval(ctx, parseOrFail(t, tt.source))
			require.NoError(t, err)
			require.Equal(t, tt.expected, val)
		})
	}
}

func (EvalSuite) TestErrors(ctx context.Context, t *testctx.T) {
	tests := []struct {
		source  string
		kind    error
		message string
	}{
		{"1 + true", ErrMismatch, "runtime error: type mismatch: cannot add int and bool"},
		{"1 = true", ErrMismatch, "runtime error: type mismatch: cannot compare int and bool"},
		{"1 and true", ErrMismatch, "runtime error: type mismatch: cannot and int and bool"},
		{"(x: int -> x) = (x: int -> x)", ErrMismatch, "runtime error: type mismatch: cannot compare function and function"},
		{"1 < 2", ErrNotFunction, "runtime error: not a function: cannot apply int"},
		{"x", ErrUnbound, "runtime error: unbound variable: x"},
		{
			"let f = (x: int -> x + y) in let y = 1 in f < 5",
			ErrUnbound,
			"runtime error: unbound variable: y (captured by function of x)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(ctx context.Context, t *testctx.T) {
			_, err := Eval(ctx, parseOrFail(t, tt.source))
			require.ErrorIs(t, err, tt.kind)
			require.EqualError(t, err, tt.message)

			var evalErr *EvalError
			require.ErrorAs(t, err, &evalErr)
			require.NotNil(t, evalErr.Location)
		})
	}
}

func (EvalSuite) TestEvaluationOrder(ctx context.Context, t *testctx.T) {
	// Both spellings evaluate the function first, so a bad function is
	// reported even when the argument is also bad.
	for _, source := range []string{
		"nope < (1 + true)",
		"(1 + true) > nope",
	} {
		t.Run(source, func(ctx context.Context, t *testctx.T) {
			_, err := Eval(ctx, parseOrFail(t, source))
			require.ErrorIs(t, err, ErrUnbound)
			require.ErrorContains(t, err, "nope")
		})
	}

	t.Run("operands left to right", func(ctx context.Context, t *testctx.T) {
		_, err := Eval(ctx, parseOrFail(t, "(1 + left) + (1 + right)"))
		require.ErrorContains(t, err, "unbound variable: left")
	})
}

func (EvalSuite) TestClosureCapture(ctx context.Context, t *testctx.T) {
	t.Run("captures only free variables", func(ctx context.Context, t *testctx.T) {
		val, err := Eval(ctx, parseOrFail(t, "let y = 2 in let z = 3 in x: int -> x + y"))
		require.NoError(t, err)

		fn, ok := val.(FunctionValue)
		require.True(t, ok)
		require.Equal(t, "x", fn.Param)
		require.Equal(t, map[string]Value{"y": IntValue{Val: 2}}, fn.Captured)
		require.Equal(t, "(x: int -> x + y)", fn.String())
	})

	t.Run("capture is a snapshot", func(ctx context.Context, t *testctx.T) {
		val, err := Eval(ctx, parseOrFail(t, "let y = 10 in let f = x: int -> x + y in let y = 100 in f < 1"))
		require.NoError(t, err)
		require.Equal(t, IntValue{Val: 11}, val)
	})

	t.Run("forward reference fails at creation", func(ctx context.Context, t *testctx.T) {
		// f is never called; creating it is enough to fail.
		_, err := Eval(ctx, parseOrFail(t, "let f = (x: int -> x + y) in 1"))
		require.ErrorIs(t, err, ErrUnbound)

		var evalErr *EvalError
		require.ErrorAs(t, err, &evalErr)
		require.IsType(t, &Function{}, evalErr.Node)
	})

	t.Run("nested functions capture through", func(ctx context.Context, t *testctx.T) {
		val, err := Eval(ctx, parseOrFail(t, "(x: int -> (y: int -> x + y)) < 3"))
		require.NoError(t, err)

		fn := val.(FunctionValue)
		require.Equal(t, map[string]Value{"x": IntValue{Val: 3}}, fn.Captured)

		res, err := fn.Call(ctx, IntValue{Val: 4})
		require.NoError(t, err)
		require.Equal(t, IntValue{Val: 7}, res)
	})

	t.Run("call does not see the caller's scope", func(ctx context.Context, t *testctx.T) {
		fn := FunctionValue{
			Param:     "x",
			ParamType: &IntTypeNode{},
			Body:      &Add{Left: &Var{Name: "x"}, Right: &Var{Name: "y"}},
			Captured:  map[string]Value{},
		}
		env := NewEvalEnv()
		env.Bind("y", IntValue{Val: 1})
		env.Bind("f", fn)

		_, err := EvalNode(ctx, env, &LApp{Fun: &Var{Name: "f"}, Arg: &IntLiteral{Value: 1}})
		require.ErrorIs(t, err, ErrUnbound)
	})
}

func (EvalSuite) TestScopeRestored(ctx context.Context, t *testctx.T) {
	t.Run("let binding does not leak", func(ctx context.Context, t *testctx.T) {
		env := NewEvalEnv()

		val, err := EvalNode(ctx, env, parseOrFail(t, "let x = 1 in x"))
		require.NoError(t, err)
		require.Equal(t, IntValue{Val: 1}, val)

		_, err = EvalNode(ctx, env, &Var{Name: "x"})
		require.ErrorIs(t, err, ErrUnbound)
		require.Equal(t, 0, env.Len())
	})

	t.Run("shadowed binding is restored", func(ctx context.Context, t *testctx.T) {
		env := NewEvalEnv()
		env.Bind("x", IntValue{Val: 7})

		val, err := EvalNode(ctx, env, parseOrFail(t, "let x = true in x"))
		require.NoError(t, err)
		require.Equal(t, BoolValue{Val: true}, val)

		x, found := env.Get("x")
		require.True(t, found)
		require.Equal(t, IntValue{Val: 7}, x)
	})

	t.Run("restored on failure", func(ctx context.Context, t *testctx.T) {
		env := NewEvalEnv()
		env.Bind("x", IntValue{Val: 7})

		_, err := EvalNode(ctx, env, parseOrFail(t, "let x = true in let y = 1 in x + y"))
		require.ErrorIs(t, err, ErrMismatch)

		require.Equal(t, []string{"x"}, env.Names())
		x, _ := env.Get("x")
		require.Equal(t, IntValue{Val: 7}, x)
	})

	t.Run("sibling sees outer binding", func(ctx context.Context, t *testctx.T) {
		val, err := Eval(ctx, parseOrFail(t, "let x = 1 in (let x = 10 in x) + x"))
		require.NoError(t, err)
		require.Equal(t, IntValue{Val: 11}, val)
	})

	t.Run("call leaves caller untouched", func(ctx context.Context, t *testctx.T) {
		env := NewEvalEnv()
		env.Bind("x", IntValue{Val: 1})

		val, err := EvalNode(ctx, env, parseOrFail(t, "(x: int -> x + 1) < 5"))
		require.NoError(t, err)
		require.Equal(t, IntValue{Val: 6}, val)

		x, _ := env.Get("x")
		require.Equal(t, IntValue{Val: 1}, x)
		require.Equal(t, 1, env.Len())
	})
}

func (EvalSuite) TestVariantsAgree(ctx context.Context, t *testctx.T) {
	for _, source := range []string{
		"1",
		"true",
		"1 + 2 = 3 and true",
		"x: int -> x",
		"let f = g: (int -> int) -> g < 1 in f",
		"let f = g: (int -> int) -> g < 1 in f < (x: int -> x + 1)",
		"(x: int -> (y: bool -> y)) < 1",
		"let y = 1 in ((x: int -> x + y) < 2) = 3",
	} {
		t.Run(source, func(ctx context.Context, t *testctx.T) {
			node := parseOrFail(t, source)

			require.Empty(t, FreeVariables(node))

			typ, err := TypeCheck(ctx, node)
			require.NoError(t, err)

			val, err := Eval(ctx, node)
			require.NoError(t, err)

			require.True(t, TypeMatches(typ, val), "%s is not a %s", val, typ)
		})
	}
}

func (EvalSuite) TestJSON(ctx context.Context, t *testctx.T) {
	out, err := json.Marshal([]Value{IntValue{Val: -3}, BoolValue{Val: true}})
	require.NoError(t, err)
	require.JSONEq(t, `[-3, true]`, string(out))

	_, err = json.Marshal(FunctionValue{})
	require.Error(t, err)
}
