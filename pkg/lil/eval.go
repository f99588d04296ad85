package lil

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Value represents a runtime value. The set of values is closed.
type Value interface {
	// Kind names the value's variant: int, bool or function.
	Kind() string
	String() string
	isValue()
}

var _ Value = IntValue{}
var _ Value = BoolValue{}
var _ Value = FunctionValue{}

// IntValue represents an integer value
type IntValue struct {
	Val int32
}

func (i IntValue) Kind() string   { return "int" }
func (i IntValue) String() string { return strconv.FormatInt(int64(i.Val), 10) }
func (i IntValue) isValue()       {}

func (i IntValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Val)
}

// BoolValue represents a boolean value
type BoolValue struct {
	Val bool
}

func (b BoolValue) Kind() string   { return "bool" }
func (b BoolValue) String() string { return strconv.FormatBool(b.Val) }
func (b BoolValue) isValue()       {}

func (b BoolValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Val)
}

// FunctionValue is a closure: a function body together with a snapshot of
// every variable the body refers to besides its parameter. AST nodes are
// never mutated, so the body is shared with the tree it came from.
type FunctionValue struct {
	Param     string
	ParamType TypeNode
	Body      Node
	Captured  map[string]Value
}

func (f FunctionValue) Kind() string { return "function" }
func (f FunctionValue) isValue()     {}

func (f FunctionValue) String() string {
	return fmt.Sprintf("(%s: %s -> %s)", f.Param, formatParamType(f.ParamType), Format(f.Body))
}

func (f FunctionValue) MarshalJSON() ([]byte, error) {
	return nil, fmt.Errorf("cannot marshal function value")
}

// Call evaluates the body in a fresh environment holding only the captured
// variables and the parameter. The caller's environment is never touched.
func (f FunctionValue) Call(ctx context.Context, arg Value) (Value, error) {
	fnEnv := NewEvalEnvWith(f.Captured)
	fnEnv.Set(f.Param, arg)
	return f.Body.Eval(ctx, fnEnv)
}

// EvalEnv is the evaluator's environment: a single mutable mapping from
// names to values, scoped with Bind and its restore func.
type EvalEnv struct {
	vars map[string]Value
}

func NewEvalEnv() *EvalEnv {
	return &EvalEnv{vars: make(map[string]Value)}
}

// NewEvalEnvWith creates an environment holding a copy of the given
// bindings.
func NewEvalEnvWith(vars map[string]Value) *EvalEnv {
	env := NewEvalEnv()
	maps.Copy(env.vars, vars)
	return env
}

func (e *EvalEnv) Get(name string) (Value, bool) {
	val, found := e.vars[name]
	return val, found
}

// Set binds a name with no way back; used to populate environments that
// are discarded as a whole.
func (e *EvalEnv) Set(name string, value Value) {
	e.vars[name] = value
}

// Bind binds name to value and returns a func that restores the previous
// binding, or removes the name if there was none. Callers defer the
// restore so no binding outlives its scope, even on error.
func (e *EvalEnv) Bind(name string, value Value) (restore func()) {
	prev, had := e.vars[name]
	e.vars[name] = value
	return func() {
		if had {
			e.vars[name] = prev
		} else {
			delete(e.vars, name)
		}
	}
}

func (e *EvalEnv) Len() int {
	return len(e.vars)
}

// Names returns the bound names in sorted order.
func (e *EvalEnv) Names() []string {
	return slices.Sorted(maps.Keys(e.vars))
}

// EvalNode evaluates node in env.
func EvalNode(ctx context.Context, env *EvalEnv, node Node) (Value, error) {
	return node.Eval(ctx, env)
}

// Eval evaluates a closed program in an empty environment.
func Eval(ctx context.Context, node Node) (Value, error) {
	return EvalNode(ctx, NewEvalEnv(), node)
}

func formatParamType(t TypeNode) string {
	if _, ok := t.(*FunTypeNode); ok {
		return "(" + t.String() + ")"
	}
	return t.String()
}
