package lil

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Error kinds shared by the type checker and the evaluator. Errors returned
// by Infer and EvalNode wrap exactly one of these.
var (
	ErrUnbound     = errors.New("unbound variable")
	ErrMismatch    = errors.New("type mismatch")
	ErrNotFunction = errors.New("not a function")
)

// SourceLocation represents a location in source code
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
	Length   int             // Length of the syntax node, in bytes
	End      *SourcePosition // End position of the node
	Offset   int             // Byte offset of the start of the node
}

// SourcePosition represents a position in source code
type SourcePosition struct {
	Line   int
	Column int
}

// Contains reports whether the 1-based line and column fall within the
// location's range.
func (loc *SourceLocation) Contains(line, col int) bool {
	if loc == nil || loc.End == nil {
		return false
	}
	if line < loc.Line || line > loc.End.Line {
		return false
	}
	if line == loc.Line && col < loc.Column {
		return false
	}
	if line == loc.End.Line && col >= loc.End.Column {
		return false
	}
	return true
}

func (loc *SourceLocation) String() string {
	if loc == nil {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", loc.Filename, loc.Line, loc.Column)
}

type SourceLocatable interface {
	GetSourceLocation() *SourceLocation
}

// SourceError represents an error with source location information
type SourceError struct {
	Inner    error
	Location *SourceLocation
	Source   string // The source code of the file
}

// NewSourceError creates a new SourceError
func NewSourceError(inner error, location *SourceLocation, source string) *SourceError {
	return &SourceError{
		Inner:    inner,
		Location: location,
		Source:   source,
	}
}

func (e *SourceError) Unwrap() error {
	return e.Inner
}

func (e *SourceError) Error() string {
	if e.Location == nil {
		return e.Inner.Error()
	}

	return e.FormatWithHighlighting()
}

// FormatWithHighlighting returns a nicely formatted error with syntax highlighting
func (e *SourceError) FormatWithHighlighting() string {
	if e.Location == nil {
		return e.Inner.Error()
	}

	if e.Source == "" && e.Location.Filename != "" {
		contents, err := os.ReadFile(e.Location.Filename)
		if err == nil {
			e.Source = string(contents)
		}
	}

	lines := strings.Split(e.Source, "\n")
	if e.Location.Line < 1 || e.Location.Line > len(lines) {
		return e.Inner.Error()
	}

	// Colors for terminal output
	const (
		red   = "\033[31m"
		blue  = "\033[34m"
		bold  = "\033[1m"
		reset = "\033[0m"
		dim   = "\033[2m"
	)

	var result strings.Builder

	result.WriteString(fmt.Sprintf("%s%sError:%s %s\n", bold, red, reset, e.Inner))
	result.WriteString(fmt.Sprintf("  %s%s--> %s:%d:%d%s\n", dim, blue, e.Location.Filename, e.Location.Line, e.Location.Column, reset))
	result.WriteString(fmt.Sprintf(" %s%s |%s\n", dim, padLeft("", 3), reset))

	startLine := max(1, e.Location.Line-2)
	endLine := min(len(lines), e.Location.Line+2)

	for i := startLine; i <= endLine; i++ {
		paddedLineStr := padLeft(fmt.Sprintf("%d", i), 3)
		if i == e.Location.Line {
			result.WriteString(fmt.Sprintf(" %s%s%s%s | %s%s\n",
				dim, blue, bold, paddedLineStr, reset, lines[i-1]))

			// 1 space + 3 for line number + " | " + column - 1
			padding := strings.Repeat(" ", 1+3+3+e.Location.Column-1)
			length := e.Location.Length
			if e.Location.End != nil && e.Location.End.Line != e.Location.Line {
				length = len(lines[i-1]) - (e.Location.Column - 1)
			}
			underline := strings.Repeat("^", max(1, length))
			result.WriteString(fmt.Sprintf("%s%s%s%s%s\n",
				dim, padding, red, underline, reset))
		} else {
			result.WriteString(fmt.Sprintf(" %s%s | %s%s\n",
				dim, paddedLineStr, lines[i-1], reset))
		}
	}

	result.WriteString(fmt.Sprintf(" %s%s |%s\n", dim, padLeft("", 3), reset))

	return result.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// InferError is a type error raised by the type checker
type InferError struct {
	Inner    error
	Location *SourceLocation
	Node     Node
}

func (e *InferError) Error() string {
	return "type error: " + e.Inner.Error()
}

func (e *InferError) Unwrap() error {
	return e.Inner
}

// EvalError is a runtime error raised by the evaluator
type EvalError struct {
	Inner    error
	Location *SourceLocation
	Node     Node
}

func (e *EvalError) Error() string {
	return "runtime error: " + e.Inner.Error()
}

func (e *EvalError) Unwrap() error {
	return e.Inner
}

func locationOf(node Node) *SourceLocation {
	if node == nil {
		return nil
	}
	return node.GetSourceLocation()
}

// WithInferErrorHandling wraps an Infer implementation so that errors carry
// the location of the innermost node that raised them.
func WithInferErrorHandling[T any](node Node, fn func() (T, error)) (T, error) {
	res, err := fn()
	if err != nil {
		var inferErr *InferError
		if errors.As(err, &inferErr) {
			return res, err
		}
		return res, &InferError{
			Inner:    err,
			Location: locationOf(node),
			Node:     node,
		}
	}
	return res, nil
}

// WithEvalErrorHandling is the evaluator's counterpart to
// WithInferErrorHandling.
func WithEvalErrorHandling(node Node, fn func() (Value, error)) (Value, error) {
	val, err := fn()
	if err != nil {
		var evalErr *EvalError
		if errors.As(err, &evalErr) {
			return nil, err
		}
		return nil, &EvalError{
			Inner:    err,
			Location: locationOf(node),
			Node:     node,
		}
	}
	return val, nil
}

// ConvertError turns a located parse, type or runtime error into a
// SourceError carrying the source text, for display. Other errors are
// returned unchanged.
func ConvertError(err error, source string) error {
	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return err
	}

	var location *SourceLocation
	var parseErr *ParseError
	var inferErr *InferError
	var evalErr *EvalError
	switch {
	case errors.As(err, &parseErr):
		location = parseErr.Location
	case errors.As(err, &inferErr):
		location = inferErr.Location
	case errors.As(err, &evalErr):
		location = evalErr.Location
	}
	if location == nil {
		return err
	}
	return NewSourceError(err, location, source)
}
