package lil

import (
	"iter"
	"maps"
	"slices"
)

// DirectChildren returns the immediate sub-expressions of a node.
func DirectChildren(node Node) []Node {
	return node.Children()
}

// AllChildren yields node and then every node beneath it, in pre-order,
// left to right.
func AllChildren(node Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(node, yield)
	}
}

func walk(node Node, yield func(Node) bool) bool {
	if !yield(node) {
		return false
	}
	for _, child := range node.Children() {
		if !walk(child, yield) {
			return false
		}
	}
	return true
}

// NameSet is a set of variable names.
type NameSet map[string]struct{}

func NewNameSet(names ...string) NameSet {
	set := make(NameSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

func (s NameSet) Remove(name string) {
	delete(s, name)
}

func (s NameSet) Union(other NameSet) {
	for name := range other {
		s[name] = struct{}{}
	}
}

// Sorted returns the names in lexical order.
func (s NameSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// FreeVariables returns the names referenced in node that are not bound
// within it. A let's own name is free in its right-hand side, since lets
// are not recursive.
func FreeVariables(node Node) NameSet {
	switch n := node.(type) {
	case *Var:
		return NewNameSet(n.Name)
	case *Let:
		free := FreeVariables(n.Body)
		free.Remove(n.Name)
		free.Union(FreeVariables(n.Right))
		return free
	case *Function:
		free := FreeVariables(n.Ret)
		free.Remove(n.Param)
		return free
	default:
		free := NameSet{}
		for _, child := range n.Children() {
			free.Union(FreeVariables(child))
		}
		return free
	}
}

// NodeAt returns the innermost node whose source range contains the given
// 1-based line and column, or nil.
func NodeAt(root Node, line, col int) Node {
	var found Node
	for node := range AllChildren(root) {
		if node.GetSourceLocation().Contains(line, col) {
			found = node
		}
	}
	return found
}

// PathTo returns the chain of nodes from root down to target, both
// included, or nil if target is not in the tree.
func PathTo(root, target Node) []Node {
	if root == target {
		return []Node{root}
	}
	for _, child := range root.Children() {
		if path := PathTo(child, target); path != nil {
			return append([]Node{root}, path...)
		}
	}
	return nil
}

// BindingOf returns the Let or Function that binds v, or nil if v is free
// in root.
func BindingOf(root Node, v *Var) Node {
	path := PathTo(root, v)
	for i := len(path) - 2; i >= 0; i-- {
		switch n := path[i].(type) {
		case *Let:
			if n.Name == v.Name && path[i+1] == n.Body {
				return n
			}
		case *Function:
			if n.Param == v.Name {
				return n
			}
		}
	}
	return nil
}
