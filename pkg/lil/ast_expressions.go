package lil

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vito/lil/pkg/hm"
)

// Paren is a parenthesized expression. It has no meaning beyond grouping.
type Paren struct {
	Expr Node
	Loc  *SourceLocation
}

func (n *Paren) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *Paren) Children() []Node                   { return []Node{n.Expr} }
func (n *Paren) isNode()                            {}

func (n *Paren) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return n.Expr.Infer(ctx, env)
}

func (n *Paren) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return n.Expr.Eval(ctx, env)
}

// Var is a reference to a bound name.
type Var struct {
	Name string
	Loc  *SourceLocation
}

func (n *Var) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *Var) Children() []Node                   { return nil }
func (n *Var) isNode()                            {}

func (n *Var) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return WithInferErrorHandling(n, func() (hm.Type, error) {
		t, found := env.TypeOf(n.Name)
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnbound, n.Name)
		}
		return t, nil
	})
}

func (n *Var) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return WithEvalErrorHandling(n, func() (Value, error) {
		val, found := env.Get(n.Name)
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnbound, n.Name)
		}
		return val, nil
	})
}

// Let binds Name to the value of Right while evaluating Body. Name is not
// visible in Right.
type Let struct {
	Name    string
	Right   Node
	Body    Node
	NameLoc *SourceLocation
	Loc     *SourceLocation
}

func (n *Let) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *Let) Children() []Node                   { return []Node{n.Right, n.Body} }
func (n *Let) isNode()                            {}

func (n *Let) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	rt, err := n.Right.Infer(ctx, env)
	if err != nil {
		return nil, err
	}
	restore := env.Bind(n.Name, rt)
	defer restore()
	return n.Body.Infer(ctx, env)
}

func (n *Let) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	val, err := n.Right.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	restore := env.Bind(n.Name, val)
	defer restore()
	return n.Body.Eval(ctx, env)
}

// Function is a single-parameter function literal. Param is visible only
// in Ret.
type Function struct {
	Param     string
	ParamType TypeNode
	Ret       Node
	ParamLoc  *SourceLocation
	Loc       *SourceLocation
}

func (n *Function) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *Function) Children() []Node                   { return []Node{n.Ret} }
func (n *Function) isNode()                            {}

func (n *Function) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return WithInferErrorHandling(n, func() (hm.Type, error) {
		pt, err := n.ParamType.Infer(ctx, env)
		if err != nil {
			return nil, err
		}
		restore := env.Bind(n.Param, pt)
		defer restore()
		rt, err := n.Ret.Infer(ctx, env)
		if err != nil {
			return nil, err
		}
		return hm.NewFnType(pt, rt), nil
	})
}

// Eval closes over the current value of every free variable of the body.
// Capture is eager: a name that is not bound yet is an error, even if it
// would be bound by the time the function is called.
func (n *Function) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return WithEvalErrorHandling(n, func() (Value, error) {
		free := FreeVariables(n.Ret)
		free.Remove(n.Param)

		names := free.Sorted()
		captured := make(map[string]Value, len(names))
		for _, name := range names {
			val, found := env.Get(name)
			if !found {
				return nil, fmt.Errorf("%w: %s (captured by function of %s)", ErrUnbound, name, n.Param)
			}
			captured[name] = val
		}

		slog.DebugContext(ctx, "closing over", "param", n.Param, "captured", names)

		return FunctionValue{
			Param:     n.Param,
			ParamType: n.ParamType,
			Body:      n.Ret,
			Captured:  captured,
		}, nil
	})
}

// LApp applies Fun to Arg, written f < x.
type LApp struct {
	Fun Node
	Arg Node
	Loc *SourceLocation
}

func (n *LApp) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *LApp) Children() []Node                   { return []Node{n.Fun, n.Arg} }
func (n *LApp) isNode()                            {}

func (n *LApp) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return WithInferErrorHandling(n, func() (hm.Type, error) {
		return inferApply(ctx, env, n.Fun, n.Arg)
	})
}

func (n *LApp) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return WithEvalErrorHandling(n, func() (Value, error) {
		return apply(ctx, env, n.Fun, n.Arg)
	})
}

// RApp applies Fun to Arg, written x > f.
type RApp struct {
	Arg Node
	Fun Node
	Loc *SourceLocation
}

func (n *RApp) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *RApp) Children() []Node                   { return []Node{n.Arg, n.Fun} }
func (n *RApp) isNode()                            {}

func (n *RApp) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return WithInferErrorHandling(n, func() (hm.Type, error) {
		return inferApply(ctx, env, n.Fun, n.Arg)
	})
}

func (n *RApp) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return WithEvalErrorHandling(n, func() (Value, error) {
		return apply(ctx, env, n.Fun, n.Arg)
	})
}

func inferApply(ctx context.Context, env *hm.Env, fun, arg Node) (hm.Type, error) {
	ft, err := fun.Infer(ctx, env)
	if err != nil {
		return nil, err
	}
	at, err := arg.Infer(ctx, env)
	if err != nil {
		return nil, err
	}
	fnType, ok := ft.(*hm.FunctionType)
	if !ok {
		return nil, fmt.Errorf("%w: cannot apply %s", ErrNotFunction, ft)
	}
	if err := hm.CheckSubset(at, fnType.Arg()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMismatch, err)
	}
	return fnType.Ret(), nil
}

// apply evaluates the function before the argument, whichever side of the
// operator each is written on.
func apply(ctx context.Context, env *EvalEnv, fun, arg Node) (Value, error) {
	fv, err := fun.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	av, err := arg.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	fn, ok := fv.(FunctionValue)
	if !ok {
		return nil, fmt.Errorf("%w: cannot apply %s", ErrNotFunction, fv.Kind())
	}
	return fn.Call(ctx, av)
}
