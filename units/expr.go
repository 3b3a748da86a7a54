package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// quantity is the resolved value of a unit expression: a scale and offset
// into base units plus a dimensionality. Offsets survive only on a bare
// reference to an offset unit such as "degC"; any arithmetic drops them,
// giving difference semantics for composed temperature units.
type quantity struct {
	scale  float64
	offset float64
	dims   Dimensionality
}

func (q quantity) mul(o quantity) quantity {
	return quantity{scale: q.scale * o.scale, dims: q.dims.combine(o.dims, 1)}
}

func (q quantity) div(o quantity) quantity {
	return quantity{scale: q.scale / o.scale, dims: q.dims.combine(o.dims, -1)}
}

func (q quantity) pow(n int) quantity {
	return quantity{scale: math.Pow(q.scale, float64(n)), dims: q.dims.pow(n)}
}

func (q quantity) equal(o quantity) bool {
	return q.scale == o.scale && q.offset == o.offset && q.dims.Equal(o.dims)
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenMul
	tokenDiv
	tokenPow
	tokenMinus
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexUnitExpr splits a unit expression into tokens. Hyphens join into the
// surrounding name when both neighbours are name characters ("HFC-134a")
// and otherwise lex as a minus, which the parser accepts only in exponents
// ("m^-2").
func lexUnitExpr(input string) ([]token, error) {
	runes := []rune(input)
	var tokens []token
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				tokens = append(tokens, token{kind: tokenPow, text: "**", pos: i})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenMul, text: "*", pos: i})
				i++
			}
		case r == '/':
			tokens = append(tokens, token{kind: tokenDiv, text: "/", pos: i})
			i++
		case r == '^':
			tokens = append(tokens, token{kind: tokenPow, text: "^", pos: i})
			i++
		case r == '-':
			tokens = append(tokens, token{kind: tokenMinus, text: "-", pos: i})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					i = j
					for i < len(runes) && unicode.IsDigit(runes[i]) {
						i++
					}
				}
			}
			tokens = append(tokens, token{kind: tokenNumber, text: string(runes[start:i]), pos: start})
		case isNameStart(r):
			start := i
			i++
			for i < len(runes) && (isNamePart(runes[i]) ||
				(runes[i] == '-' && i+1 < len(runes) && isNamePart(runes[i+1]))) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: string(runes[start:i]), pos: start})
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
		}
	}
	return tokens, nil
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isNamePart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// exprParser evaluates a token stream against a registry. Grammar:
//
//	expr   := factor { ("*" | "/" | juxtaposition) factor }
//	factor := atom [ ("^" | "**") ["-"] integer ]
//	atom   := number | name | "(" expr ")"
//
// Juxtaposed factors multiply, so "Mt CO2 / yr" parses as (Mt * CO2) / yr.
type exprParser struct {
	tokens []token
	pos    int
	input  string
	reg    *Registry
}

// evalUnitExpr resolves a unit expression to a quantity. Unknown names
// yield an UndefinedUnitError, malformed input an ErrExpression.
func (r *Registry) evalUnitExpr(input string) (quantity, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return quantity{}, fmt.Errorf("%w: empty unit", ErrExpression)
	}
	tokens, err := lexUnitExpr(trimmed)
	if err != nil {
		return quantity{}, fmt.Errorf("%w %q: %v", ErrExpression, input, err)
	}
	p := &exprParser{tokens: tokens, input: input, reg: r}
	q, err := p.parseExpr()
	if err != nil {
		return quantity{}, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return quantity{}, fmt.Errorf("%w %q: unexpected %q at position %d", ErrExpression, input, tok.text, tok.pos)
	}
	return q, nil
}

func (p *exprParser) parseExpr() (quantity, error) {
	q, err := p.parseFactor()
	if err != nil {
		return quantity{}, err
	}
	for {
		switch {
		case p.accept(tokenMul):
			rhs, err := p.parseFactor()
			if err != nil {
				return quantity{}, err
			}
			q = q.mul(rhs)
		case p.accept(tokenDiv):
			rhs, err := p.parseFactor()
			if err != nil {
				return quantity{}, err
			}
			q = q.div(rhs)
		case p.peekFactorStart():
			rhs, err := p.parseFactor()
			if err != nil {
				return quantity{}, err
			}
			q = q.mul(rhs)
		default:
			return q, nil
		}
	}
}

func (p *exprParser) parseFactor() (quantity, error) {
	q, err := p.parseAtom()
	if err != nil {
		return quantity{}, err
	}
	if p.accept(tokenPow) {
		n, err := p.parseExponent()
		if err != nil {
			return quantity{}, err
		}
		q = q.pow(n)
	}
	return q, nil
}

func (p *exprParser) parseAtom() (quantity, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return quantity{}, fmt.Errorf("%w %q: bad number %q", ErrExpression, p.input, tok.text)
		}
		return quantity{scale: f, dims: Dimensionality{}}, nil
	case tokenIdent:
		q, ok := p.reg.lookup(tok.text)
		if !ok {
			return quantity{}, &UndefinedUnitError{Unit: tok.text}
		}
		return q, nil
	case tokenLParen:
		q, err := p.parseExpr()
		if err != nil {
			return quantity{}, err
		}
		if !p.accept(tokenRParen) {
			return quantity{}, fmt.Errorf("%w %q: missing closing parenthesis", ErrExpression, p.input)
		}
		return q, nil
	default:
		return quantity{}, fmt.Errorf("%w %q: unexpected %q at position %d", ErrExpression, p.input, tok.text, tok.pos)
	}
}

func (p *exprParser) parseExponent() (int, error) {
	sign := 1
	if p.accept(tokenMinus) {
		sign = -1
	}
	tok := p.next()
	if tok.kind != tokenNumber {
		return 0, fmt.Errorf("%w %q: expected integer exponent at position %d", ErrExpression, p.input, tok.pos)
	}
	n, err := strconv.Atoi(tok.text)
	if err != nil {
		return 0, fmt.Errorf("%w %q: non-integer exponent %q", ErrExpression, p.input, tok.text)
	}
	return sign * n, nil
}

func (p *exprParser) peek() token {
	if p.pos >= len(p.tokens) {
		return token{kind: tokenEOF, pos: len(p.input)}
	}
	return p.tokens[p.pos]
}

func (p *exprParser) next() token {
	tok := p.peek()
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *exprParser) accept(kind tokenKind) bool {
	if p.peek().kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) peekFactorStart() bool {
	switch p.peek().kind {
	case tokenNumber, tokenIdent, tokenLParen:
		return true
	default:
		return false
	}
}
