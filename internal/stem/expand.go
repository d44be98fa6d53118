package stem

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/stapes/internal/config"
	"github.com/specialistvlad/stapes/internal/datatype"
)

var (
	interpolationRe = regexp.MustCompile(`@(\{[^}]*\}|[a-z][a-z0-9_]*)`)
	namespaceRe     = regexp.MustCompile(`\.(@?[a-z][a-z0-9_]*)`)
	spanRe          = regexp.MustCompile(`@\{[^}]*\}`)
)

const (
	configSentinel  = "$config "
	coreSentinel    = "$core "
	definitionsMark = "// !definitions"
)

var headers = map[string]Bucket{
	"data {":                   Data,
	"transformed data {":       TransDataDecl,
	"parameters {":             ParamDecl,
	"transformed parameters {": TransDecl,
	"model {":                  ModelDecl,
	"}":                        -1,
}

var definitions = map[Bucket]Bucket{
	TransDataDecl: TransDataDef,
	TransDecl:     TransDef,
	ModelDecl:     ModelDef,
}

// Result is the outcome of expanding a template.
type Result struct {
	Fragment         Fragment
	ConfigParameters []config.Parameter
	// CoreParameters are the bare names of sampled quantities.
	CoreParameters []string
}

// Expand parses and expands a template in one step.
func Expand(name, source, namespace string, env Env) (*Result, error) {
	t, err := Parse(name, source)
	if err != nil {
		return nil, err
	}
	return t.Expand(namespace, env)
}

// Expand selects conditional arms, resolves symbols and sorts the resulting
// lines into buckets. It is a pure function of its inputs.
func (t *Template) Expand(namespace string, env Env) (*Result, error) {
	ev, err := newEvaluator(env)
	if err != nil {
		return nil, &Error{Template: t.name, Msg: "bad environment", Err: err}
	}
	lines, err := t.selectLines(t.nodes, ev, nil)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	current := Bucket(-1)
	for _, n := range lines {
		resolved, err := resolve(n.text, namespace, ev)
		if err != nil {
			return nil, &Error{Template: t.name, Line: n.line, Msg: "cannot resolve line", Err: err}
		}

		if b, ok := headers[strings.TrimRight(resolved, " \t")]; ok {
			current = b
			continue
		}
		text := dedent(resolved)
		line := strings.TrimLeft(text, " ")
		margin := text[:len(text)-len(line)]
		if line == definitionsMark {
			if def, ok := definitions[current]; ok {
				current = def
			}
			continue
		}
		if current < 0 || line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, configSentinel):
			p, decl, err := configParameter(line)
			if err != nil {
				return nil, &Error{Template: t.name, Line: n.line, Msg: "bad $config line", Err: err}
			}
			res.ConfigParameters = append(res.ConfigParameters, p)
			line = decl
		case strings.HasPrefix(line, coreSentinel):
			line = strings.TrimSpace(strings.TrimPrefix(line, coreSentinel))
			name := coreName(line)
			if name == "" {
				return nil, &Error{Template: t.name, Line: n.line, Msg: "empty $core declaration"}
			}
			res.CoreParameters = append(res.CoreParameters, name)
		}
		res.Fragment.Append(current, margin+line)
	}
	return res, nil
}

// blockIndent is the indentation of a line directly inside a program block.
const blockIndent = "    "

// dedent removes one block level of indentation from a template line and
// keeps any deeper nesting. Tabs count as one level each.
func dedent(line string) string {
	line = strings.TrimRight(line, " \t")
	body := strings.TrimLeft(line, " \t")
	lead := strings.ReplaceAll(line[:len(line)-len(body)], "\t", blockIndent)
	if len(lead) <= len(blockIndent) {
		return body
	}
	return lead[len(blockIndent):] + body
}

// resolve rewrites relative references, then interpolations, then the bare
// namespace. Relative references inside @{...} are left alone.
func resolve(line, namespace string, ev *evaluator) (string, error) {
	var sb strings.Builder
	last := 0
	for _, span := range spanRe.FindAllStringIndex(line, -1) {
		sb.WriteString(namespaceRe.ReplaceAllString(line[last:span[0]], namespace+"__$1"))
		sb.WriteString(line[span[0]:span[1]])
		last = span[1]
	}
	sb.WriteString(namespaceRe.ReplaceAllString(line[last:], namespace+"__$1"))
	line = sb.String()

	var firstErr error
	line = interpolationRe.ReplaceAllStringFunc(line, func(m string) string {
		src := strings.TrimPrefix(m, "@")
		if strings.HasPrefix(src, "{") {
			src = src[1 : len(src)-1]
		}
		s, err := ev.interpolate(src)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return s
	})
	if firstErr != nil {
		return "", firstErr
	}

	return strings.ReplaceAll(line, "..", namespace), nil
}

func configParameter(line string) (config.Parameter, string, error) {
	fields := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(line, configSentinel), ";"))
	if len(fields) != 2 {
		return config.Parameter{}, "", fmt.Errorf("expected '$config <type> <name>;', got %q", line)
	}
	p, err := config.NewParameter(fields[1], fields[0])
	if err != nil {
		return config.Parameter{}, "", err
	}
	dt, err := datatype.Lookup(p.DataType)
	if err != nil {
		return config.Parameter{}, "", err
	}
	return p, dt.StanType + " " + p.Name + ";", nil
}

func coreName(decl string) string {
	fields := strings.Fields(strings.TrimSuffix(decl, ";"))
	if len(fields) == 0 {
		return ""
	}
	name := fields[len(fields)-1]
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	return name
}
