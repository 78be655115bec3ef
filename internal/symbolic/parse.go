package symbolic

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/njchilds90/gosymbol"
)

var ErrSyntax = errors.New("invalid expression")

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokQuantity
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(src string) ([]token, error) {
	var tokens []token
	runes := []rune(src)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			i = scanNumber(runes, i)
			kind := tokNumber
			if i < len(runes) && isIdentStart(runes[i]) {
				// 10mm, 1.5GHz: the host resolves units, so the literal stays opaque.
				for i < len(runes) && isIdentPart(runes[i]) {
					i++
				}
				kind = tokQuantity
			}
			tokens = append(tokens, token{kind: kind, text: string(runes[start:i]), pos: start})
		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		case r == '*' && i+1 < len(runes) && runes[i+1] == '*':
			tokens = append(tokens, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case strings.ContainsRune("+-*/^", r):
			tokens = append(tokens, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, r, i)
		}
	}

	return append(tokens, token{kind: tokEOF, pos: len(runes)}), nil
}

func scanNumber(runes []rune, i int) int {
	for i < len(runes) && unicode.IsDigit(runes[i]) {
		i++
	}
	if i < len(runes) && runes[i] == '.' {
		i++
		for i < len(runes) && unicode.IsDigit(runes[i]) {
			i++
		}
	}
	if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
		j := i + 1
		if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
			j++
		}
		if j < len(runes) && unicode.IsDigit(runes[j]) {
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

type parser struct {
	src    string
	tokens []token
	pos    int
}

// Parse reads a host expression into a gosymbol tree. Variable names become
// symbols; quantities with units and function calls become opaque symbols that
// render back verbatim.
func Parse(src string) (gosymbol.Expr, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{src: src, tokens: tokens}
	if p.peek().kind == tokEOF {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	expr, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, tok.text, tok.pos)
	}

	return expr, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseSum() (gosymbol.Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.kind != tokOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.next()

		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if tok.text == "-" {
			right = gosymbol.MulOf(gosymbol.N(-1), right)
		}
		left = gosymbol.AddOf(left, right)
	}
}

func (p *parser) parseProduct() (gosymbol.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.kind != tokOp || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.next()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if tok.text == "/" {
			right = gosymbol.PowOf(right, gosymbol.N(-1))
		}
		left = gosymbol.MulOf(left, right)
	}
}

func (p *parser) parseUnary() (gosymbol.Expr, error) {
	tok := p.peek()
	if tok.kind == tokOp && (tok.text == "-" || tok.text == "+") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if tok.text == "-" {
			return gosymbol.MulOf(gosymbol.N(-1), operand), nil
		}
		return operand, nil
	}

	return p.parsePower()
}

// parsePower is right associative and binds tighter than unary minus, so
// -a^2 is -(a^2).
func (p *parser) parsePower() (gosymbol.Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	if tok.kind != tokOp || tok.text != "^" {
		return base, nil
	}
	p.next()

	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return gosymbol.PowOf(base, exp), nil
}

func (p *parser) parseAtom() (gosymbol.Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return number(tok.text)
	case tokQuantity:
		return gosymbol.S(tok.text), nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.parseCall(tok)
		}
		return gosymbol.S(tok.text), nil
	case tokLParen:
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ')' at offset %d", ErrSyntax, closing.pos)
		}
		return inner, nil
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	default:
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, tok.text, tok.pos)
	}
}

// parseCall keeps a function application as written, arguments included.
func (p *parser) parseCall(name token) (gosymbol.Expr, error) {
	depth := 0
	start := p.peek().pos
	for {
		tok := p.next()
		switch tok.kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
			if depth == 0 {
				args := strings.TrimSpace(string([]rune(p.src)[start+1 : tok.pos]))
				return gosymbol.S(name.text + "(" + args + ")"), nil
			}
		case tokEOF:
			return nil, fmt.Errorf("%w: unterminated call to %s", ErrSyntax, name.text)
		}
	}
}

func number(text string) (gosymbol.Expr, error) {
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, text)
	}
	if !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return gosymbol.S(text), nil
	}
	if r.IsInt() {
		return gosymbol.N(r.Num().Int64()), nil
	}
	return gosymbol.F(r.Num().Int64(), r.Denom().Int64()), nil
}
