package lil

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrSyntax is wrapped by every ParseError.
var ErrSyntax = errors.New("syntax error")

var keywords = map[string]bool{
	"in":    true,
	"let":   true,
	"int":   true,
	"bool":  true,
	"and":   true,
	"true":  true,
	"false": true,
}

// ParseError is a syntax error at a location.
type ParseError struct {
	Msg      string
	Location *SourceLocation
}

func (e *ParseError) Error() string {
	return "syntax error: " + e.Msg
}

func (e *ParseError) Unwrap() error {
	return ErrSyntax
}

func (e *ParseError) ParseErrorLocation() *SourceLocation {
	return e.Location
}

// Parse parses a whole program. Leading and trailing whitespace is
// allowed; anything else left over is an error.
func Parse(filename string, src []byte) (Node, error) {
	p := newParser(filename, string(src))
	p.skipSpace()
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf(p.pos, "unexpected %s", p.describe())
	}
	return node, nil
}

// ParseType parses a type expression, like int -> (bool -> int).
func ParseType(filename string, src []byte) (TypeNode, error) {
	p := newParser(filename, string(src))
	p.skipSpace()
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf(p.pos, "unexpected %s", p.describe())
	}
	return t, nil
}

type parser struct {
	filename   string
	src        string
	pos        int
	lineStarts []int
}

func newParser(filename, src string) *parser {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &parser{
		filename:   filename,
		src:        src,
		lineStarts: starts,
	}
}

func (p *parser) position(offset int) SourcePosition {
	line := sort.Search(len(p.lineStarts), func(i int) bool {
		return p.lineStarts[i] > offset
	}) - 1
	return SourcePosition{
		Line:   line + 1,
		Column: offset - p.lineStarts[line] + 1,
	}
}

func (p *parser) loc(start, end int) *SourceLocation {
	from := p.position(start)
	to := p.position(end)
	return &SourceLocation{
		Filename: p.filename,
		Line:     from.Line,
		Column:   from.Column,
		Length:   end - start,
		End:      &to,
		Offset:   start,
	}
}

func (p *parser) errorf(offset int, format string, args ...any) *ParseError {
	end := offset
	if end < len(p.src) {
		end++
	}
	return &ParseError{
		Msg:      fmt.Sprintf(format, args...),
		Location: p.loc(offset, end),
	}
}

func (p *parser) describe() string {
	if p.eof() {
		return "end of input"
	}
	if isIdentStart(p.src[p.pos]) {
		start := p.pos
		end := start
		for end < len(p.src) && isIdentChar(p.src[end]) {
			end++
		}
		word := p.src[start:end]
		if keywords[word] {
			return fmt.Sprintf("keyword %q", word)
		}
		return fmt.Sprintf("identifier %q", word)
	}
	return fmt.Sprintf("%q", p.src[p.pos])
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c == '_' || c == '?' || c == '!'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// atWord reports whether the input continues with word as a whole word.
func (p *parser) atWord(word string) bool {
	if !strings.HasPrefix(p.src[p.pos:], word) {
		return false
	}
	next := p.pos + len(word)
	return next >= len(p.src) || !isIdentChar(p.src[next])
}

func (p *parser) atSymbol(sym string) bool {
	return strings.HasPrefix(p.src[p.pos:], sym)
}

func (p *parser) expectWord(word string) error {
	if !p.atWord(word) {
		return p.errorf(p.pos, "expected %q, found %s", word, p.describe())
	}
	p.pos += len(word)
	return nil
}

func (p *parser) expectSymbol(sym string) error {
	if !p.atSymbol(sym) {
		return p.errorf(p.pos, "expected %q, found %s", sym, p.describe())
	}
	p.pos += len(sym)
	return nil
}

func (p *parser) parseIdent() (string, error) {
	if p.eof() || !isIdentStart(p.src[p.pos]) {
		return "", p.errorf(p.pos, "expected identifier, found %s", p.describe())
	}
	start := p.pos
	end := start
	for end < len(p.src) && isIdentChar(p.src[end]) {
		end++
	}
	name := p.src[start:end]
	if keywords[name] {
		return "", p.errorf(start, "unexpected keyword %q", name)
	}
	p.pos = end
	return name, nil
}

// atFunction looks ahead for "ident :" without consuming anything.
func (p *parser) atFunction() bool {
	save := p.pos
	defer func() { p.pos = save }()
	if _, err := p.parseIdent(); err != nil {
		return false
	}
	p.skipSpace()
	return p.peek() == ':'
}

func (p *parser) parseExpr() (Node, error) {
	switch {
	case p.atWord("let"):
		return p.parseLet()
	case p.atFunction():
		return p.parseFunction()
	default:
		return p.parseApply()
	}
}

func (p *parser) parseLet() (Node, error) {
	start := p.pos
	if err := p.expectWord("let"); err != nil {
		return nil, err
	}
	p.skipSpace()
	nameStart := p.pos
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	nameLoc := p.loc(nameStart, p.pos)
	p.skipSpace()
	if err := p.expectSymbol("="); err != nil {
		return nil, err
	}
	p.skipSpace()
	right, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if err := p.expectWord("in"); err != nil {
		return nil, err
	}
	p.skipSpace()
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Let{
		Name:    name,
		Right:   right,
		Body:    body,
		NameLoc: nameLoc,
		Loc:     p.loc(start, p.pos),
	}, nil
}

func (p *parser) parseFunction() (Node, error) {
	start := p.pos
	param, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	paramLoc := p.loc(start, p.pos)
	p.skipSpace()
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	p.skipSpace()
	paramType, err := p.parseTypeAtom()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if err := p.expectSymbol("->"); err != nil {
		return nil, err
	}
	p.skipSpace()
	ret, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Function{
		Param:     param,
		ParamType: paramType,
		Ret:       ret,
		ParamLoc:  paramLoc,
		Loc:       p.loc(start, p.pos),
	}, nil
}

// binaryLevel parses a left-associative chain of operands at one
// precedence level. op reports the length of an operator at the current
// position and builds the node for it, or returns 0.
func (p *parser) binaryLevel(
	operand func() (Node, error),
	op func() (int, func(l, r Node, loc *SourceLocation) Node),
) (Node, error) {
	start := p.pos
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		p.skipSpace()
		n, build := op()
		if n == 0 {
			p.pos = save
			return left, nil
		}
		p.pos += n
		p.skipSpace()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = build(left, right, p.loc(start, p.pos))
	}
}

func (p *parser) parseApply() (Node, error) {
	return p.binaryLevel(p.parseAnd, func() (int, func(l, r Node, loc *SourceLocation) Node) {
		switch p.peek() {
		case '<':
			return 1, func(l, r Node, loc *SourceLocation) Node {
				return &LApp{Fun: l, Arg: r, Loc: loc}
			}
		case '>':
			return 1, func(l, r Node, loc *SourceLocation) Node {
				return &RApp{Arg: l, Fun: r, Loc: loc}
			}
		}
		return 0, nil
	})
}

func (p *parser) parseAnd() (Node, error) {
	return p.binaryLevel(p.parseEq, func() (int, func(l, r Node, loc *SourceLocation) Node) {
		if !p.atWord("and") {
			return 0, nil
		}
		return len("and"), func(l, r Node, loc *SourceLocation) Node {
			return &And{Left: l, Right: r, Loc: loc}
		}
	})
}

func (p *parser) parseEq() (Node, error) {
	return p.binaryLevel(p.parseAdd, func() (int, func(l, r Node, loc *SourceLocation) Node) {
		if p.peek() != '=' {
			return 0, nil
		}
		return 1, func(l, r Node, loc *SourceLocation) Node {
			return &Eq{Left: l, Right: r, Loc: loc}
		}
	})
}

func (p *parser) parseAdd() (Node, error) {
	return p.binaryLevel(p.parseAtom, func() (int, func(l, r Node, loc *SourceLocation) Node) {
		if p.peek() != '+' {
			return 0, nil
		}
		return 1, func(l, r Node, loc *SourceLocation) Node {
			return &Add{Left: l, Right: r, Loc: loc}
		}
	})
}

func (p *parser) parseAtom() (Node, error) {
	start := p.pos
	c := p.peek()
	switch {
	case c == '-' || c == '+' || isDigit(c):
		return p.parseInt()
	case p.atWord("true"):
		p.pos += len("true")
		return &BoolLiteral{Value: true, Loc: p.loc(start, p.pos)}, nil
	case p.atWord("false"):
		p.pos += len("false")
		return &BoolLiteral{Value: false, Loc: p.loc(start, p.pos)}, nil
	case c == '(':
		p.pos++
		p.skipSpace()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return &Paren{Expr: inner, Loc: p.loc(start, p.pos)}, nil
	case isIdentStart(c):
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		return &Var{Name: name, Loc: p.loc(start, p.pos)}, nil
	default:
		return nil, p.errorf(p.pos, "expected expression, found %s", p.describe())
	}
}

// parseInt parses a run of signs followed by digits. Each - negates; + is
// allowed and ignored. The result must fit in 32 bits.
func (p *parser) parseInt() (Node, error) {
	start := p.pos
	negative := false
	for p.peek() == '-' || p.peek() == '+' {
		if p.peek() == '-' {
			negative = !negative
		}
		p.pos++
	}
	digitsStart := p.pos
	for !p.eof() && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == digitsStart {
		return nil, p.errorf(p.pos, "expected number, found %s", p.describe())
	}

	var mag int64
	for _, d := range p.src[digitsStart:p.pos] {
		mag = mag*10 + int64(d-'0')
		if mag > -math.MinInt32 {
			return nil, p.errorf(start, "integer literal %s out of range", p.src[start:p.pos])
		}
	}
	if negative {
		mag = -mag
	}
	if mag > math.MaxInt32 {
		return nil, p.errorf(start, "integer literal %s out of range", p.src[start:p.pos])
	}
	return &IntLiteral{Value: int32(mag), Loc: p.loc(start, p.pos)}, nil
}

// parseType parses an arrow type. Arrows associate to the right.
func (p *parser) parseType() (TypeNode, error) {
	start := p.pos
	arg, err := p.parseTypeAtom()
	if err != nil {
		return nil, err
	}
	save := p.pos
	p.skipSpace()
	if !p.atSymbol("->") {
		p.pos = save
		return arg, nil
	}
	p.pos += len("->")
	p.skipSpace()
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &FunTypeNode{Arg: arg, Ret: ret, Loc: p.loc(start, p.pos)}, nil
}

func (p *parser) parseTypeAtom() (TypeNode, error) {
	start := p.pos
	switch {
	case p.atWord("int"):
		p.pos += len("int")
		return &IntTypeNode{Loc: p.loc(start, p.pos)}, nil
	case p.atWord("bool"):
		p.pos += len("bool")
		return &BoolTypeNode{Loc: p.loc(start, p.pos)}, nil
	case p.peek() == '(':
		p.pos++
		p.skipSpace()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return &ParenTypeNode{Type: inner, Loc: p.loc(start, p.pos)}, nil
	default:
		return nil, p.errorf(p.pos, "expected type, found %s", p.describe())
	}
}
