package lil

import (
	"context"
	"strconv"

	"github.com/vito/lil/pkg/hm"
)

type IntLiteral struct {
	Value int32
	Loc   *SourceLocation
}

func (n *IntLiteral) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *IntLiteral) Children() []Node                   { return nil }
func (n *IntLiteral) isNode()                            {}

func (n *IntLiteral) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return hm.Int, nil
}

func (n *IntLiteral) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return IntValue{Val: n.Value}, nil
}

func (n *IntLiteral) String() string {
	return strconv.FormatInt(int64(n.Value), 10)
}

type BoolLiteral struct {
	Value bool
	Loc   *SourceLocation
}

func (n *BoolLiteral) GetSourceLocation() *SourceLocation { return n.Loc }
func (n *BoolLiteral) Children() []Node                   { return nil }
func (n *BoolLiteral) isNode()                            {}

func (n *BoolLiteral) Infer(ctx context.Context, env *hm.Env) (hm.Type, error) {
	return hm.Bool, nil
}

func (n *BoolLiteral) Eval(ctx context.Context, env *EvalEnv) (Value, error) {
	return BoolValue{Val: n.Value}, nil
}

func (n *BoolLiteral) String() string {
	return strconv.FormatBool(n.Value)
}
