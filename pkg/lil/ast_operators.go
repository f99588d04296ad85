package lil

import (
	"context"
	"fmt"

	"github.com/vito/lil/pkg/hm"
)

// Add is 32-bit integer addition. Overflow wraps.
type Add struct {
	Left  Node
	Right Node
	Loc   *SourceLocation
}

func (n *Add) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *Add) Children() []Node                   { return []Node{n.Left, n.Right} }
func (n *Add) isNode()                            {}

func (n *Add) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return WithInferErrorHandling(n, func() (hm.Type, error) {
		lt, rt, err := inferOperands(ctx, env, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		if !lt.Eq(hm.Int) || !rt.Eq(hm.Int) {
			return nil, fmt.Errorf("%w: cannot add %s and %s", ErrMismatch, lt, rt)
		}
		return hm.Int, nil
	})
}

func (n *Add) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return WithEvalErrorHandling(n, func() (Value, error) {
		lv, rv, err := evalOperands(ctx, env, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		l, lok := lv.(IntValue)
		r, rok := rv.(IntValue)
		if !lok || !rok {
			return nil, fmt.Errorf("%w: cannot add %s and %s", ErrMismatch, lv.Kind(), rv.Kind())
		}
		return IntValue{Val: l.Val + r.Val}, nil
	})
}

// Eq compares two ints or two bools.
type Eq struct {
	Left  Node
	Right Node
	Loc   *SourceLocation
}

func (n *Eq) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *Eq) Children() []Node                   { return []Node{n.Left, n.Right} }
func (n *Eq) isNode()                            {}

func (n *Eq) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return WithInferErrorHandling(n, func() (hm.Type, error) {
		lt, rt, err := inferOperands(ctx, env, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		switch {
		case lt.Eq(hm.Int) && rt.Eq(hm.Int),
			lt.Eq(hm.Bool) && rt.Eq(hm.Bool):
			return hm.Bool, nil
		default:
			return nil, fmt.Errorf("%w: cannot compare %s and %s", ErrMismatch, lt, rt)
		}
	})
}

func (n *Eq) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return WithEvalErrorHandling(n, func() (Value, error) {
		lv, rv, err := evalOperands(ctx, env, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		switch l := lv.(type) {
		case IntValue:
			if r, ok := rv.(IntValue); ok {
				return BoolValue{Val: l.Val == r.Val}, nil
			}
		case BoolValue:
			if r, ok := rv.(BoolValue); ok {
				return BoolValue{Val: l.Val == r.Val}, nil
			}
		}
		return nil, fmt.Errorf("%w: cannot compare %s and %s", ErrMismatch, lv.Kind(), rv.Kind())
	})
}

// And is boolean conjunction. Both operands are always evaluated.
type And struct {
	Left  Node
	Right Node
	Loc   *SourceLocation
}

func (n *And) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *And) Children() []Node                   { return []Node{n.Left, n.Right} }
func (n *And) isNode()                            {}

func (n *And) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return WithInferErrorHandling(n, func() (hm.Type, error) {
		lt, rt, err := inferOperands(ctx, env, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		if !lt.Eq(hm.Bool) || !rt.Eq(hm.Bool) {
			return nil, fmt.Errorf("%w: cannot and %s and %s", ErrMismatch, lt, rt)
		}
		return hm.Bool, nil
	})
}

func (n *And) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return WithEvalErrorHandling(n, func() (Value, error) {
		lv, rv, err := evalOperands(ctx, env, n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		l, lok := lv.(BoolValue)
		r, rok := rv.(BoolValue)
		if !lok || !rok {
			return nil, fmt.Errorf("%w: cannot and %s and %s", ErrMismatch, lv.Kind(), rv.Kind())
		}
		return BoolValue{Val: l.Val && r.Val}, nil
	})
}

func inferOperands(ctx context.Context, env *hm.Env, left, right Node) (hm.Type, hm.Type, error) {
	lt, err := left.Infer(ctx, env)
	if err != nil {
		return nil, nil, err
	}
	rt, err := right.Infer(ctx, env)
	if err != nil {
		return nil, nil, err
	}
	return lt, rt, nil
}

func evalOperands(ctx context.Context, env *EvalEnv, left, right Node) (Value, Value, error) {
	lv, err := left.Eval(ctx, env)
	if err != nil {
		return nil, nil, err
	}
	rv, err := right.Eval(ctx, env)
	if err != nil {
		return nil, nil, err
	}
	return lv, rv, nil
}
