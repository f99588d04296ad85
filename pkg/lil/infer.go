package lil

import (
	"context"
	"fmt"

	"github.com/vito/lil/pkg/hm"
)

// Infer type-checks node in env. The first error aborts the whole check;
// env is left exactly as it was either way.
func Infer(ctx context.Context, env *hm.Env, node Node) (hm.Type, error) {
	return node.Infer(ctx, env)
}

// TypeCheck type-checks a closed program in an empty environment.
func TypeCheck(ctx context.Context, node Node) (hm.Type, error) {
	return Infer(ctx, hm.NewEnv(), node)
}

// InferAt type-checks target, a node somewhere inside root, in the
// environment its enclosing lets and functions give it.
func InferAt(ctx context.Context, root, target Node) (hm.Type, error) {
	path := PathTo(root, target)
	if path == nil {
		return nil, fmt.Errorf("node not found in tree")
	}
	env := hm.NewEnv()
	for i, node := range path[:len(path)-1] {
		switch n := node.(type) {
		case *Let:
			if path[i+1] != n.Body {
				continue
			}
			rt, err := n.Right.Infer(ctx, env)
			if err != nil {
				return nil, err
			}
			env.Bind(n.Name, rt)
		case *Function:
			pt, err := n.ParamType.Infer(ctx, env)
			if err != nil {
				return nil, err
			}
			env.Bind(n.Param, pt)
		}
	}
	return target.Infer(ctx, env)
}

// TypeMatches reports whether a value has the shape a type predicts. Only
// the variant is compared; function values do not record their type.
func TypeMatches(t hm.Type, val Value) bool {
	switch t.(type) {
	case hm.TypeConst:
		return t.Name() == val.Kind()
	case *hm.FunctionType:
		_, ok := val.(FunctionValue)
		return ok
	default:
		return false
	}
}
