package lil

import (
	"context"

	"github.com/vito/lil/pkg/hm"
)

// TypeNode is a type annotation as written in source. Infer translates it
// structurally into an hm.Type.
type TypeNode interface {
	SourceLocatable
	Infer(ctx context.Context, env *hm.Env) (hm.Type, error)
	String() string
	isTypeNode()
}

var _ TypeNode = (*IntTypeNode)(nil)
var _ TypeNode = (*BoolTypeNode)(nil)
var _ TypeNode = (*FunTypeNode)(nil)
var _ TypeNode = (*ParenTypeNode)(nil)

type IntTypeNode struct {
	Loc *SourceLocation
}

func (t *IntTypeNode) GetSourceLocation() *SourceLocation { return t.Loc }
func (t *IntTypeNode) String() string                     { return "int" }
func (t *IntTypeNode) isTypeNode()                        {}

func (t *IntTypeNode) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return hm.Int, nil
}

type BoolTypeNode struct {
	Loc *SourceLocation
}

func (t *BoolTypeNode) GetSourceLocation() *SourceLocation { return t.Loc }
func (t *BoolTypeNode) String() string                     { return "bool" }
func (t *BoolTypeNode) isTypeNode()                        {}

func (t *BoolTypeNode) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return hm.Bool, nil
}

// FunTypeNode is an arrow type, Arg -> Ret.
type FunTypeNode struct {
	Arg TypeNode
	Ret TypeNode
	Loc *SourceLocation
}

func (t *FunTypeNode) GetSourceLocation() *SourceLocation { return t.Loc }
func (t *FunTypeNode) isTypeNode()                        {}

func (t *FunTypeNode) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	arg, err := t.Arg.Infer(ctx, env)
	if err != nil {
		return nil, err
	}
	ret, err := t.Ret.Infer(ctx, env)
	if err != nil {
		return nil, err
	}
	return hm.NewFnType(arg, ret), nil
}

// String parenthesizes a bare arrow on the left, since arrows associate to
// the right.
func (t *FunTypeNode) String() string {
	arg := t.Arg.String()
	if _, ok := t.Arg.(*FunTypeNode); ok {
		arg = "(" + arg + ")"
	}
	return arg + " -> " + t.Ret.String()
}

type ParenTypeNode struct {
	Type TypeNode
	Loc  *SourceLocation
}

func (t *ParenTypeNode) GetSourceLocation() *SourceLocation { return t.Loc }
func (t *ParenTypeNode) String() string                     { return "(" + t.Type.String() + ")" }
func (t *ParenTypeNode) isTypeNode()                        {}

func (t *ParenTypeNode) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return t.Type.Infer(ctx, env)
}
