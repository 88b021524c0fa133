// Package mathexpr compiles a deliberately small expression language: one
// variable x, the functions sin cos tan exp log sqrt abs, the constants pi
// and e, arithmetic with ^ or ** for powers. Anything else is rejected, so
// model-supplied expressions can be evaluated without an interpreter escape.
package mathexpr

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"vizify/internal/spec"
)

// Func evaluates a compiled expression at x.
type Func func(x float64) float64

var functions = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"exp":  math.Exp,
	"log":  math.Log,
	"sqrt": math.Sqrt,
	"abs":  math.Abs,
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Compile parses expr and returns an evaluator for it.
func Compile(expr string) (Func, error) {
	return CompileWith(expr, nil)
}

// FreeNames lists the identifiers in expr that are neither built-in
// functions nor constants, sorted and deduplicated. The caller decides
// which of them is the variable and which are parameters for CompileWith.
func FreeNames(expr string) []string {
	src := strings.ToLower(strings.ReplaceAll(expr, "**", "^"))
	seen := map[string]bool{}
	var names []string
	for i := 0; i < len(src); {
		c := src[i]
		if c < 'a' || c > 'z' {
			i++
			continue
		}
		start := i
		for i < len(src) {
			c := src[i]
			if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' {
				i++
				continue
			}
			break
		}
		name := src[start:i]
		if _, ok := functions[name]; ok {
			continue
		}
		if _, ok := constants[name]; ok {
			continue
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// CompileWith additionally binds named parameters to fixed values, so
// "m*x + b" works once m and b are supplied.
func CompileWith(expr string, params map[string]float64) (Func, error) {
	src := strings.ToLower(strings.TrimSpace(expr))
	src = strings.ReplaceAll(src, "**", "^")
	if src == "" {
		return nil, fmt.Errorf("mathexpr: empty expression")
	}
	p := &parser{src: src, params: params}
	fn, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, fmt.Errorf("mathexpr: unexpected %q at offset %d", p.src[p.pos], p.pos)
	}
	return fn, nil
}

type parser struct {
	src    string
	pos    int
	params map[string]float64
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// expr := term (('+' | '-') term)*
func (p *parser) parseExpr() (Func, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			l := left
			left = func(x float64) float64 { return l(x) + right(x) }
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			l := left
			left = func(x float64) float64 { return l(x) - right(x) }
		default:
			return left, nil
		}
	}
}

// term := unary (('*' | '/') unary)*
func (p *parser) parseTerm() (Func, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			l := left
			left = func(x float64) float64 { return l(x) * right(x) }
		case '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			l := left
			left = func(x float64) float64 { return l(x) / right(x) }
		default:
			return left, nil
		}
	}
}

// unary := '-' unary | power. Power binds tighter than unary minus, so
// -x^2 means -(x^2).
func (p *parser) parseUnary() (Func, error) {
	if p.peek() == '-' {
		p.pos++
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return func(x float64) float64 { return -inner(x) }, nil
	}
	return p.parsePower()
}

// power := atom ('^' unary)?, right associative.
func (p *parser) parsePower() (Func, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return func(x float64) float64 { return math.Pow(base(x), exp(x)) }, nil
}

func (p *parser) parseAtom() (Func, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, fmt.Errorf("mathexpr: missing ) at offset %d", p.pos)
		}
		p.pos++
		return inner, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	case c >= 'a' && c <= 'z' || c == '_':
		return p.parseIdent()
	case c == 0:
		return nil, fmt.Errorf("mathexpr: unexpected end of expression")
	default:
		return nil, fmt.Errorf("mathexpr: unexpected %q at offset %d", c, p.pos)
	}
}

func (p *parser) parseNumber() (Func, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' || c == '.' {
			p.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, fmt.Errorf("mathexpr: bad number %q", p.src[start:p.pos])
	}
	return func(float64) float64 { return v }, nil
}

func (p *parser) parseIdent() (Func, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' {
			p.pos++
			continue
		}
		break
	}
	name := p.src[start:p.pos]
	if name == "x" {
		return func(x float64) float64 { return x }, nil
	}
	if v, ok := constants[name]; ok {
		return func(float64) float64 { return v }, nil
	}
	if v, ok := p.params[name]; ok {
		return func(float64) float64 { return v }, nil
	}
	if fn, ok := functions[name]; ok {
		if p.peek() != '(' {
			return nil, fmt.Errorf("mathexpr: %s needs an argument", name)
		}
		p.pos++
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, fmt.Errorf("mathexpr: missing ) after %s at offset %d", name, p.pos)
		}
		p.pos++
		return func(x float64) float64 { return fn(arg(x)) }, nil
	}
	return nil, fmt.Errorf("mathexpr: unknown name %q", name)
}

// Canvas defaults shared with the renderer: origin at (400, 260), 40 px per
// unit, y growing downwards.
const (
	CanvasCX    = 400
	CanvasCY    = 260
	CanvasScale = 40.0
)

// Sample evaluates fn at n evenly spaced points across [x0, x1] and maps
// them onto the canvas. Non-finite values flatten to the axis so one pole
// does not break the whole polyline.
func Sample(fn Func, x0, x1 float64, n int) []spec.Point {
	if n < 1 {
		n = 1
	}
	step := (x1 - x0) / float64(max(n-1, 1))
	pts := make([]spec.Point, 0, n)
	for i := 0; i < n; i++ {
		x := x0 + float64(i)*step
		y := fn(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			y = 0
		}
		pts = append(pts, spec.Point{
			X: int(CanvasCX + x*CanvasScale),
			Y: int(CanvasCY - y*CanvasScale),
		})
	}
	return pts
}
