package lil

import (
	"strings"
)

// Format renders a node as canonical source: single spaces around
// operators, everything on one line. Parentheses in the tree are kept, and
// more are added only where a tree built by hand would otherwise print
// ambiguously.
func Format(node Node) string {
	var b strings.Builder
	formatNode(&b, node)
	return b.String()
}

// FormatFile parses and formats a source file.
func FormatFile(source []byte) (string, error) {
	node, err := Parse("", source)
	if err != nil {
		return "", err
	}
	return Format(node) + "\n", nil
}

func formatNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case *IntLiteral:
		b.WriteString(n.String())
	case *BoolLiteral:
		b.WriteString(n.String())
	case *Var:
		b.WriteString(n.Name)
	case *Paren:
		b.WriteString("(")
		formatNode(b, n.Expr)
		b.WriteString(")")
	case *Let:
		b.WriteString("let ")
		b.WriteString(n.Name)
		b.WriteString(" = ")
		formatNode(b, n.Right)
		b.WriteString(" in ")
		formatNode(b, n.Body)
	case *Function:
		b.WriteString(n.Param)
		b.WriteString(": ")
		b.WriteString(formatParamType(n.ParamType))
		b.WriteString(" -> ")
		formatNode(b, n.Ret)
	case *Add:
		formatBinary(b, precAdd, n.Left, "+", n.Right)
	case *Eq:
		formatBinary(b, precEq, n.Left, "=", n.Right)
	case *And:
		formatBinary(b, precAnd, n.Left, "and", n.Right)
	case *LApp:
		formatBinary(b, precApply, n.Fun, "<", n.Arg)
	case *RApp:
		formatBinary(b, precApply, n.Arg, ">", n.Fun)
	}
}

// formatBinary prints a left-associative operator: the left operand may
// sit at the same level, the right one must bind tighter.
func formatBinary(b *strings.Builder, prec int, left Node, op string, right Node) {
	formatOperand(b, left, precedence(left) < prec)
	b.WriteString(" ")
	b.WriteString(op)
	b.WriteString(" ")
	formatOperand(b, right, precedence(right) <= prec)
}

func formatOperand(b *strings.Builder, node Node, wrap bool) {
	if wrap {
		b.WriteString("(")
	}
	formatNode(b, node)
	if wrap {
		b.WriteString(")")
	}
}
