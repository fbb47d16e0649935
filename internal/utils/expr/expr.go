// Package expr implements a small arithmetic evaluator for compound journal
// value expressions: +, -, *, /, parentheses and decimal literals, with
// {key} placeholders substituted from an execution context beforehand.
package expr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// Substitute replaces every {key} placeholder in text with the matching
// context value. Keys are matched exactly first, then case-insensitively;
// a missing key substitutes the literal "0".
func Substitute(text string, execCtx map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		key := match[1 : len(match)-1]
		if v, ok := execCtx[key]; ok {
			return strings.TrimSpace(v)
		}
		if v, ok := execCtx[strings.ToLower(key)]; ok {
			return strings.TrimSpace(v)
		}
		return "0"
	})
}

// Evaluate parses and evaluates an arithmetic expression over decimals.
// Placeholders must already be substituted.
func Evaluate(text string) (decimal.Decimal, error) {
	p := &parser{input: text}
	result, err := p.parseExpression()
	if err != nil {
		return decimal.Zero, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return decimal.Zero, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return result, nil
}

// parser is a recursive-descent parser over the expression grammar:
//
//	expression := term (('+' | '-') term)*
//	term       := factor (('*' | '/') factor)*
//	factor     := number | '(' expression ')' | '-' factor
type parser struct {
	input string
	pos   int
}

func (p *parser) parseExpression() (decimal.Decimal, error) {
	result, err := p.parseTerm()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.peek() == '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			result = result.Add(rhs)
		case p.peek() == '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			result = result.Sub(rhs)
		default:
			return result, nil
		}
	}
}

func (p *parser) parseTerm() (decimal.Decimal, error) {
	result, err := p.parseFactor()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.peek() == '*':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return decimal.Zero, err
			}
			result = result.Mul(rhs)
		case p.peek() == '/':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return decimal.Zero, err
			}
			if rhs.IsZero() {
				return decimal.Zero, fmt.Errorf("division by zero")
			}
			result = result.Div(rhs)
		default:
			return result, nil
		}
	}
}

func (p *parser) parseFactor() (decimal.Decimal, error) {
	p.skipSpaces()
	switch {
	case p.peek() == '(':
		p.pos++
		inner, err := p.parseExpression()
		if err != nil {
			return decimal.Zero, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return decimal.Zero, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
		p.pos++
		return inner, nil
	case p.peek() == '-':
		p.pos++
		inner, err := p.parseFactor()
		if err != nil {
			return decimal.Zero, err
		}
		return inner.Neg(), nil
	default:
		return p.parseNumber()
	}
}

func (p *parser) parseNumber() (decimal.Decimal, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		if p.pos >= len(p.input) {
			return decimal.Zero, fmt.Errorf("unexpected end of expression")
		}
		return decimal.Zero, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	value, err := decimal.NewFromString(p.input[start:p.pos])
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", p.input[start:p.pos], err)
	}
	return value, nil
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}
