package lil

import (
	"context"

	"github.com/vito/lil/pkg/hm"
)

// Node is an expression in the AST. The set of nodes is closed: every
// implementation lives in this package, and each one carries its own
// typing and evaluation rules so that a new node cannot be added without
// both.
type Node interface {
	SourceLocatable

	// Infer returns the node's type in env.
	Infer(ctx context.Context, env *hm.Env) (hm.Type, error)

	// Eval evaluates the node in env.
	Eval(ctx context.Context, env *EvalEnv) (Value, error)

	// Children returns the node's immediate sub-expressions, in source
	// order.
	Children() []Node

	isNode()
}

var _ Node = (*Paren)(nil)
var _ Node = (*Var)(nil)
var _ Node = (*IntLiteral)(nil)
var _ Node = (*BoolLiteral)(nil)
var _ Node = (*Add)(nil)
var _ Node = (*Eq)(nil)
var _ Node = (*And)(nil)
var _ Node = (*Let)(nil)
var _ Node = (*Function)(nil)
var _ Node = (*LApp)(nil)
var _ Node = (*RApp)(nil)

// precedence levels, lowest first; the formatter uses these to decide
// where parentheses are needed.
const (
	precBinder = iota // let, function
	precApply         // < and >
	precAnd
	precEq
	precAdd
	precAtom
)

func precedence(node Node) int {
	switch node.(type) {
	case *Let, *Function:
		return precBinder
	case *LApp, *RApp:
		return precApply
	case *And:
		return precAnd
	case *Eq:
		return precEq
	case *Add:
		return precAdd
	default:
		return precAtom
	}
}
