package stem

import (
	"fmt"
	"strings"
)

// Error reports a template that cannot be parsed or expanded.
type Error struct {
	Template string
	Line     int
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("template %s:%d: %s", e.Template, e.Line, msg)
	}
	return fmt.Sprintf("template %s: %s", e.Template, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// node is either a literal line or a conditional block.
type node struct {
	line int
	text string
	arms []arm
}

// arm is one branch of a conditional. An empty cond marks #else.
type arm struct {
	line int
	cond string
	body []node
}

// Template is a parsed template.
type Template struct {
	name  string
	nodes []node
}

const (
	dirIf    = "#if "
	dirElif  = "#elif "
	dirElse  = "#else"
	dirEndif = "#endif"
)

func directive(trimmed string) string {
	for _, d := range []string{dirIf, dirElif, dirEndif, dirElse} {
		if strings.HasPrefix(trimmed, d) || trimmed == strings.TrimSpace(d) {
			return strings.TrimSpace(d)
		}
	}
	return ""
}

// Parse splits a template into literal lines and conditional blocks.
func Parse(name, source string) (*Template, error) {
	p := &templateParser{name: name, lines: strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")}
	nodes, stop, err := p.block()
	if err != nil {
		return nil, err
	}
	if stop != "" {
		return nil, &Error{Template: name, Line: p.pos, Msg: fmt.Sprintf("%s without matching #if", stop)}
	}
	return &Template{name: name, nodes: nodes}, nil
}

type templateParser struct {
	name  string
	lines []string
	pos   int
}

// block consumes lines up to and including the directive that ends the
// current arm, and returns that directive ("" at end of input).
func (p *templateParser) block() ([]node, string, error) {
	var nodes []node
	for p.pos < len(p.lines) {
		raw := p.lines[p.pos]
		trimmed := strings.TrimSpace(raw)
		switch directive(trimmed) {
		case "#if":
			cond, err := p.conditional()
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, cond)
		case "#elif", "#else", "#endif":
			p.pos++
			return nodes, directive(trimmed), nil
		default:
			p.pos++
			nodes = append(nodes, node{line: p.pos, text: raw})
		}
	}
	return nodes, "", nil
}

func (p *templateParser) conditional() (node, error) {
	start := p.pos + 1
	cond := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p.lines[p.pos]), "#if"))
	p.pos++
	if cond == "" {
		return node{}, &Error{Template: p.name, Line: start, Msg: "#if requires a condition"}
	}

	n := node{line: start}
	seenElse := false
	for {
		armLine := p.pos
		body, stop, err := p.block()
		if err != nil {
			return node{}, err
		}
		n.arms = append(n.arms, arm{line: armLine, cond: cond, body: body})

		switch stop {
		case "":
			return node{}, &Error{Template: p.name, Line: start, Msg: "reached end of template before a matching #endif"}
		case "#endif":
			return n, nil
		case "#elif", "#else":
			if seenElse {
				return node{}, &Error{Template: p.name, Line: p.pos, Msg: "#else cannot be followed by " + stop}
			}
			trimmed := strings.TrimSpace(p.lines[p.pos-1])
			if stop == "#else" {
				seenElse = true
				cond = ""
				if rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "#else")); rest != "" {
					return node{}, &Error{Template: p.name, Line: p.pos, Msg: "#else takes no condition"}
				}
			} else {
				cond = strings.TrimSpace(strings.TrimPrefix(trimmed, "#elif"))
			}
			if stop == "#elif" && cond == "" {
				return node{}, &Error{Template: p.name, Line: p.pos, Msg: "#elif requires a condition"}
			}
		}
	}
}

// selectLines flattens the template, keeping only the first true arm of
// each conditional.
func (t *Template) selectLines(nodes []node, ev *evaluator, out []node) ([]node, error) {
	for _, n := range nodes {
		if n.arms == nil {
			out = append(out, n)
			continue
		}
		for _, a := range n.arms {
			ok := true
			if a.cond != "" {
				var err error
				ok, err = ev.condition(a.cond)
				if err != nil {
					return nil, &Error{Template: t.name, Line: a.line, Msg: "bad condition", Err: err}
				}
			}
			if ok {
				var err error
				if out, err = t.selectLines(a.body, ev, out); err != nil {
					return nil, err
				}
				break
			}
		}
	}
	return out, nil
}
