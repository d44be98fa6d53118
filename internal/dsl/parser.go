package dsl

import (
	"fmt"
	"sort"
	"strconv"
)

// SyntaxError reports malformed source text.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Msg)
}

type parser struct {
	lex  *lexer
	tok  token
	seen map[string]bool
}

// Parse parses a complete model source.
func Parse(src string) (*Model, error) {
	p := &parser{lex: newLexer(src), seen: map[string]bool{}}
	if err := p.advance(); err != nil {
		return nil, err
	}

	m := &Model{}
	for p.tok.kind != tokEOF {
		switch {
		case p.tok.kind == tokParam:
			spec, err := p.paramSpec()
			if err != nil {
				return nil, err
			}
			m.Params = append(m.Params, spec)
		case p.tok.kind == tokIdent && (p.tok.text == string(Mean) || p.tok.text == string(Variance)):
			lik, err := p.likelihood()
			if err != nil {
				return nil, err
			}
			m.Likelihoods = append(m.Likelihoods, lik)
		default:
			return nil, p.errorf("expected parameter declaration or likelihood statement, found %s", p.tok)
		}
	}
	return m, nil
}

// ParseExpr parses a single expression.
func ParseExpr(src string) (Expr, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s after expression", p.tok)
	}
	return e, nil
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) isPunct(s string) bool {
	return p.tok.kind == tokPunct && p.tok.text == s
}

func (p *parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.errorf("expected %q, found %s", s, p.tok)
	}
	return p.advance()
}

func (p *parser) expectIdent() (token, error) {
	t := p.tok
	if t.kind != tokIdent {
		return t, p.errorf("expected identifier, found %s", t)
	}
	return t, p.advance()
}

// paramSpec := PARAM [':' IDENT] ['~' IDENT '(' [arg (',' arg)*] ')'] ';'
func (p *parser) paramSpec() (*ParamSpec, error) {
	spec := &ParamSpec{Pos: p.tok.pos, Name: p.tok.text, DataType: "real", Args: map[string]string{}}
	if p.seen[spec.Name] {
		return nil, p.errorf("parameter $%s declared more than once", spec.Name)
	}
	p.seen[spec.Name] = true
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.isPunct(":") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		dt, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		spec.DataType = dt.text
	}

	if p.isPunct("~") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		kind, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		spec.Kind = kind.text
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		for !p.isPunct(")") {
			if len(spec.Args) > 0 {
				if err := p.expectPunct(","); err != nil {
					return nil, err
				}
			}
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if _, dup := spec.Args[name.text]; dup {
				return nil, &SyntaxError{Pos: name.pos, Msg: fmt.Sprintf("argument %q given more than once", name.text)}
			}
			if err := p.expectPunct("="); err != nil {
				return nil, err
			}
			switch p.tok.kind {
			case tokIdent, tokString, tokNumber:
				spec.Args[name.text] = p.tok.text
			default:
				return nil, p.errorf("expected argument value, found %s", p.tok)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return spec, p.expectPunct(";")
}

// likelihood := ('mean' | 'variance') '(' IDENT ')' '=' expr ';'
func (p *parser) likelihood() (*Likelihood, error) {
	lik := &Likelihood{Pos: p.tok.pos, Aspect: Aspect(p.tok.text)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	v, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	lik.Variable = v.text
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	if lik.Value, err = p.expr(); err != nil {
		return nil, err
	}
	return lik, p.expectPunct(";")
}

func (p *parser) binary(next func() (Expr, error), ops ...string) (Expr, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := ""
		for _, op := range ops {
			if p.isPunct(op) {
				matched = op
			}
		}
		if matched == "" {
			return lhs, nil
		}
		pos := p.tok.pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := next()
		if err != nil {
			return nil, err
		}
		lhs = &Operation{Pos: pos, Operator: matched, Operands: []Expr{lhs, rhs}}
	}
}

func (p *parser) expr() (Expr, error) { return p.binary(p.term, "+", "-") }
func (p *parser) term() (Expr, error) { return p.binary(p.unary, "*", "/") }

func (p *parser) unary() (Expr, error) {
	if p.isPunct("-") {
		pos := p.tok.pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Operation{Pos: pos, Operator: "-", Operands: []Expr{operand}}, nil
	}
	return p.power()
}

// power is left associative. Its right operand may carry a sign, so
// "x ^ -1" parses while "-x ^ 2" stays "-(x ^ 2)".
func (p *parser) power() (Expr, error) {
	lhs, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.isPunct("^") {
		pos := p.tok.pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.exponent()
		if err != nil {
			return nil, err
		}
		lhs = &Operation{Pos: pos, Operator: "^", Operands: []Expr{lhs, rhs}}
	}
	return lhs, nil
}

func (p *parser) exponent() (Expr, error) {
	if !p.isPunct("-") {
		return p.primary()
	}
	pos := p.tok.pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.exponent()
	if err != nil {
		return nil, err
	}
	return &Operation{Pos: pos, Operator: "-", Operands: []Expr{operand}}, nil
}

func (p *parser) primary() (Expr, error) {
	t := p.tok
	switch {
	case t.kind == tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errorf("malformed number %q", t.text)
		}
		return &Literal{Pos: t.pos, Value: v}, p.advance()
	case t.kind == tokParam:
		return &ParameterRef{Pos: t.pos, Name: t.text}, p.advance()
	case p.isPunct("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		return e, p.expectPunct(")")
	case t.kind == tokIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isPunct("(") {
			if !Functions[t.text] {
				return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unknown function %q", t.text)}
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			return &Call{Pos: t.pos, Function: t.text, Arg: arg}, p.expectPunct(")")
		}
		return p.variable(t)
	default:
		return nil, p.errorf("expected expression, found %s", t)
	}
}

func (p *parser) variable(name token) (Expr, error) {
	ref := &VariableRef{Pos: name.pos, Name: name.text}
	if !p.isPunct("[") {
		return ref, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	for {
		m, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		switch Modifier(m.text) {
		case PrevDev, PrevExp:
			ref.Modifiers = append(ref.Modifiers, Modifier(m.text))
		default:
			return nil, &SyntaxError{Pos: m.pos, Msg: fmt.Sprintf("unknown modifier %q", m.text)}
		}
		if p.isPunct("]") {
			break
		}
		if err := p.expectPunct(","); err != nil {
			return nil, err
		}
	}
	sort.Slice(ref.Modifiers, func(i, j int) bool { return ref.Modifiers[i] < ref.Modifiers[j] })
	return ref, p.advance()
}
