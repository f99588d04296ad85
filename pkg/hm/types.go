package hm

import (
	"fmt"
)

// Type represents all possible type constructors
type Type interface {
	Name() string
	Eq(Type) bool
	fmt.Stringer
	isType()
}

// TypeConst is a nullary type constructor, like int or bool
type TypeConst string

const (
	Int  TypeConst = "int"
	Bool TypeConst = "bool"
)

func (tc TypeConst) Name() string   { return string(tc) }
func (tc TypeConst) String() string { return string(tc) }
func (tc TypeConst) isType()        {}

func (tc TypeConst) Eq(other Type) bool {
	if ot, ok := other.(TypeConst); ok {
		return tc == ot
	}
	return false
}

func (tc TypeConst) Format(s fmt.State, c rune) {
	_, _ = fmt.Fprintf(s, "%s", string(tc))
}

// FunctionType represents a function type. Values are never mutated after
// construction, so nested function types are freely shared.
type FunctionType struct {
	arg Type
	ret Type
}

func NewFnType(arg, ret Type) *FunctionType {
	return &FunctionType{arg: arg, ret: ret}
}

func (ft *FunctionType) Name() string {
	return ft.String()
}

func (ft *FunctionType) Eq(other Type) bool {
	if ot, ok := other.(*FunctionType); ok {
		if ft == ot {
			return true
		}
		return ft.arg.Eq(ot.arg) && ft.ret.Eq(ot.ret)
	}
	return false
}

func (ft *FunctionType) isType() {}

// String renders the arrow right-associatively, so only a function-typed
// argument needs parentheses.
func (ft *FunctionType) String() string {
	arg := ft.arg.String()
	if _, ok := ft.arg.(*FunctionType); ok {
		arg = "(" + arg + ")"
	}
	return fmt.Sprintf("%s -> %s", arg, ft.ret)
}

func (ft *FunctionType) Format(s fmt.State, c rune) {
	_, _ = fmt.Fprintf(s, "%s", ft.String())
}

// Arg returns the argument type
func (ft *FunctionType) Arg() Type {
	return ft.arg
}

// Ret returns the return type
func (ft *FunctionType) Ret() Type {
	return ft.ret
}
