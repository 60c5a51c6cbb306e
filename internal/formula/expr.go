// Package formula generates baseline work items and materials from a job definition
// and recomputes quote totals from line items.
package formula

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode"
)

// Vars are the only names a formula may reference
type Vars struct {
	UnitQty  float64
	Quantity float64
	Area     float64
}

func (v Vars) lookup(name string) (float64, bool) {
	switch name {
	case "unitQty":
		return v.UnitQty, true
	case "quantity":
		return v.Quantity, true
	case "area":
		return v.Area, true
	default:
		return 0, false
	}
}

// functions whitelisted in formulas
var functions = map[string]func(float64) float64{
	"ceil":  math.Ceil,
	"round": math.Round,
}

// Expr is a parsed material formula
type Expr struct {
	source string
	root   node
}

// String returns the source text
func (e *Expr) String() string {
	return e.source
}

// Eval evaluates the formula against vars
func (e *Expr) Eval(vars Vars) (float64, error) {
	v, err := e.root.eval(vars)
	if err != nil {
		return 0, &EvalError{Expr: e.source, Message: "evaluation failed", Cause: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &EvalError{Expr: e.source, Message: "result is not a finite number"}
	}
	return v, nil
}

// Evaluate parses and evaluates src in one step
func Evaluate(src string, vars Vars) (float64, error) {
	e, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return e.Eval(vars)
}

type node interface {
	eval(vars Vars) (float64, error)
}

type numberNode float64

func (n numberNode) eval(Vars) (float64, error) { return float64(n), nil }

type varNode string

func (n varNode) eval(vars Vars) (float64, error) {
	v, _ := vars.lookup(string(n))
	return v, nil
}

type negNode struct{ operand node }

func (n negNode) eval(vars Vars) (float64, error) {
	v, err := n.operand.eval(vars)
	return -v, err
}

type callNode struct {
	name string
	arg  node
}

func (n callNode) eval(vars Vars) (float64, error) {
	v, err := n.arg.eval(vars)
	if err != nil {
		return 0, err
	}
	return functions[n.name](v), nil
}

type binaryNode struct {
	op          byte
	left, right node
}

// ErrDivisionByZero is the cause of an EvalError for a zero divisor
var ErrDivisionByZero = errors.New("division by zero")

func (n binaryNode) eval(vars Vars) (float64, error) {
	l, err := n.left.eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(vars)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	default:
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return l / r, nil
	}
}

// Parse compiles src using the grammar
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = "-" unary | primary
//	primary = number | variable | function "(" expr ")" | "(" expr ")"
//
// Variables are unitQty, quantity and area; functions are ceil and round.
func Parse(src string) (*Expr, error) {
	p := &parser{src: src, runes: []rune(src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	root, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return &Expr{source: src, root: root}, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

type parser struct {
	src   string
	runes []rune
	pos   int
	tok   token
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Expr: p.src, Pos: p.tok.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) next() error {
	for p.pos < len(p.runes) && unicode.IsSpace(p.runes[p.pos]) {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.runes) {
		p.tok = token{kind: tokEOF, pos: start}
		return nil
	}

	r := p.runes[p.pos]
	switch {
	case unicode.IsDigit(r) || r == '.':
		for p.pos < len(p.runes) && (unicode.IsDigit(p.runes[p.pos]) || p.runes[p.pos] == '.') {
			p.pos++
		}
		text := string(p.runes[start:p.pos])
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return &SyntaxError{Expr: p.src, Pos: start, Message: "invalid number " + strconv.Quote(text)}
		}
		p.tok = token{kind: tokNumber, text: text, num: v, pos: start}
	case unicode.IsLetter(r):
		for p.pos < len(p.runes) && (unicode.IsLetter(p.runes[p.pos]) || unicode.IsDigit(p.runes[p.pos])) {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: string(p.runes[start:p.pos]), pos: start}
	case r == '+' || r == '-' || r == '*' || r == '/':
		p.pos++
		p.tok = token{kind: tokOp, text: string(r), pos: start}
	case r == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case r == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	default:
		return &SyntaxError{Expr: p.src, Pos: start, Message: "unexpected character " + strconv.QuoteRune(r)}
	}
	return nil
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text[0]
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) term() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text[0]
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.tok.kind == tokOp && p.tok.text == "-" {
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negNode{operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	switch p.tok.kind {
	case tokNumber:
		n := numberNode(p.tok.num)
		return n, p.next()
	case tokIdent:
		name := p.tok.text
		if _, ok := functions[name]; ok {
			if err := p.next(); err != nil {
				return nil, err
			}
			arg, err := p.parenthesized()
			if err != nil {
				return nil, err
			}
			return callNode{name: name, arg: arg}, nil
		}
		if _, ok := (Vars{}).lookup(name); !ok {
			return nil, p.errorf("unknown identifier %q", name)
		}
		return varNode(name), p.next()
	case tokLParen:
		return p.parenthesized()
	case tokEOF:
		return nil, p.errorf("unexpected end of formula")
	default:
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
}

func (p *parser) parenthesized() (node, error) {
	if p.tok.kind != tokLParen {
		return nil, p.errorf("expected %q", "(")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	inner, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokRParen {
		return nil, p.errorf("expected %q", ")")
	}
	return inner, p.next()
}
