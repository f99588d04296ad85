package lil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) Node {
	t.Helper()
	node, err := Parse("test.lil", []byte(src))
	require.NoError(t, err)
	return node
}

func TestFreeVariables(t *testing.T) {
	for _, example := range []struct {
		Source string
		Free   []string
	}{
		{"1 + 2", nil},
		{"x", []string{"x"}},
		{"x + y = z", []string{"x", "y", "z"}},
		{"x: int -> x + y", []string{"y"}},
		{"x: int -> y: int -> x + y", nil},
		{"let x = 1 in x", nil},
		{"let x = x in x", []string{"x"}},
		{"let x = 1 in y", []string{"y"}},
		{"let f = (x: int -> x + y) in let y = 1 in f < 5", []string{"y"}},
		{"(f < a) and (b > g)", []string{"a", "b", "f", "g"}},
		{"let x = 1 in (x: int -> x) < x", nil},
	} {
		t.Run(example.Source, func(t *testing.T) {
			free := FreeVariables(mustParse(t, example.Source))
			require.Equal(t, example.Free, free.Sorted())
		})
	}
}

func TestAllChildren(t *testing.T) {
	node := mustParse(t, "let x = 1 + 2 in x < true")

	var seen []string
	for child := range AllChildren(node) {
		seen = append(seen, sexp(child))
	}
	require.Equal(t, []string{
		"(let x (add 1 2) (lapp x true))",
		"(add 1 2)",
		"1",
		"2",
		"(lapp x true)",
		"x",
		"true",
	}, seen)

	t.Run("stops early", func(t *testing.T) {
		var count int
		for range AllChildren(node) {
			count++
			if count == 3 {
				break
			}
		}
		require.Equal(t, 3, count)
	})
}

func TestDirectChildren(t *testing.T) {
	let := mustParse(t, "let x = 1 in x").(*Let)
	require.Equal(t, []Node{let.Right, let.Body}, DirectChildren(let))

	rapp := mustParse(t, "1 > f").(*RApp)
	require.Equal(t, []Node{rapp.Arg, rapp.Fun}, DirectChildren(rapp))

	fn := mustParse(t, "x: int -> x").(*Function)
	require.Equal(t, []Node{fn.Ret}, DirectChildren(fn))

	require.Empty(t, DirectChildren(mustParse(t, "y")))
}

func TestNodeAt(t *testing.T) {
	node := mustParse(t, "let f = x: int -> x + 2 in\nf < 3")

	require.Equal(t, "f", sexp(NodeAt(node, 2, 1)))
	require.Equal(t, "(lapp f 3)", sexp(NodeAt(node, 2, 3)))
	require.Equal(t, "3", sexp(NodeAt(node, 2, 5)))
	require.Equal(t, "x", sexp(NodeAt(node, 1, 19)))
	require.Equal(t, "(add x 2)", sexp(NodeAt(node, 1, 21)))
	require.IsType(t, &Let{}, NodeAt(node, 1, 1))
	require.Nil(t, NodeAt(node, 3, 1))
}

func TestBindingOf(t *testing.T) {
	node := mustParse(t, "let x = 1 in let x = x + 1 in (y: int -> x + y) < z")

	vars := map[int]*Var{}
	for child := range AllChildren(node) {
		if v, ok := child.(*Var); ok {
			vars[v.Loc.Column] = v
		}
	}

	outer := node.(*Let)
	inner := outer.Body.(*Let)
	fn := inner.Body.(*LApp).Fun.(*Paren).Expr.(*Function)

	require.Same(t, outer, BindingOf(node, vars[22]))
	require.Same(t, inner, BindingOf(node, vars[42]))
	require.Same(t, fn, BindingOf(node, vars[46]))
	require.Nil(t, BindingOf(node, vars[51]))

	require.Nil(t, PathTo(node, &Var{Name: "x"}))
	require.Equal(t, []Node{outer, inner, inner.Right}, PathTo(node, inner.Right))
}
