package stem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Env binds template names to strings, bools, numbers or string lists.
type Env map[string]any

var functions = map[string]function.Function{
	"contains": stdlib.ContainsFunc,
}

var comparisons = map[*hclsyntax.Operation]bool{
	hclsyntax.OpEqual:              true,
	hclsyntax.OpNotEqual:           true,
	hclsyntax.OpLogicalAnd:         true,
	hclsyntax.OpLogicalOr:          true,
	hclsyntax.OpGreaterThan:        true,
	hclsyntax.OpGreaterThanOrEqual: true,
	hclsyntax.OpLessThan:           true,
	hclsyntax.OpLessThanOrEqual:    true,
}

// evaluator evaluates the small expression language used by directives and
// interpolations. Expressions are parsed as HCL, then rejected unless they
// only use literals, bound names, comparisons, boolean logic, tuples and
// contains().
type evaluator struct {
	vars map[string]cty.Value
}

func newEvaluator(env Env) (*evaluator, error) {
	vars := make(map[string]cty.Value, len(env))
	for name, v := range env {
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", name, err)
		}
		val, err := gocty.ToCtyValue(v, ty)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", name, err)
		}
		vars[name] = val
	}
	return &evaluator{vars: vars}, nil
}

func (e *evaluator) check(node hclsyntax.Node) hcl.Diagnostics {
	reject := func(format string, args ...any) hcl.Diagnostics {
		return hcl.Diagnostics{{Severity: hcl.DiagError, Summary: fmt.Sprintf(format, args...)}}
	}

	switch n := node.(type) {
	case *hclsyntax.LiteralValueExpr, *hclsyntax.ParenthesesExpr, *hclsyntax.TupleConsExpr:
		return nil
	case *hclsyntax.TemplateExpr:
		for _, part := range n.Parts {
			if _, ok := part.(*hclsyntax.LiteralValueExpr); !ok {
				return reject("string templates are not allowed")
			}
		}
	case *hclsyntax.ScopeTraversalExpr:
		if len(n.Traversal) != 1 {
			return reject("attribute and index access are not allowed")
		}
		if _, ok := e.vars[n.Traversal.RootName()]; !ok {
			return reject("unresolved name %q", n.Traversal.RootName())
		}
	case *hclsyntax.UnaryOpExpr:
		if n.Op != hclsyntax.OpLogicalNot && n.Op != hclsyntax.OpNegate {
			return reject("operator not allowed")
		}
	case *hclsyntax.BinaryOpExpr:
		if !comparisons[n.Op] {
			return reject("arithmetic is not allowed")
		}
	case *hclsyntax.FunctionCallExpr:
		if _, ok := functions[n.Name]; !ok || len(n.Args) != 2 || n.ExpandFinal {
			return reject("call to %s() is not allowed", n.Name)
		}
	default:
		return reject("expression of type %T is not allowed", node)
	}
	return nil
}

func (e *evaluator) eval(src string) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("invalid expression %q: %s", src, diags.Error())
	}
	if diags := hclsyntax.VisitAll(expr, e.check); diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("expression %q: %s", src, diags[0].Summary)
	}
	val, diags := expr.Value(&hcl.EvalContext{Variables: e.vars, Functions: functions})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluating %q: %s", src, diags.Error())
	}
	return val, nil
}

func (e *evaluator) condition(src string) (bool, error) {
	val, err := e.eval(src)
	if err != nil {
		return false, err
	}
	if val.IsNull() || val.Type() != cty.Bool {
		return false, fmt.Errorf("condition %q is not a bool", src)
	}
	return val.True(), nil
}

func (e *evaluator) interpolate(src string) (string, error) {
	val, err := e.eval(src)
	if err != nil {
		return "", err
	}
	return formatValue(val)
}

func formatValue(val cty.Value) (string, error) {
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("cannot interpolate a null value")
	}
	switch {
	case val.Type() == cty.String:
		return val.AsString(), nil
	case val.Type() == cty.Bool:
		if val.True() {
			return "true", nil
		}
		return "false", nil
	case val.Type() == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int(nil)
			return i.String(), nil
		}
		return bf.Text('g', -1), nil
	case val.Type().IsListType() || val.Type().IsTupleType():
		var parts []string
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			s, err := formatValue(ev)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", "), nil
	}
	return "", fmt.Errorf("cannot interpolate a value of type %s", val.Type().FriendlyName())
}

// Names lists the bound names, sorted.
func (env Env) Names() []string {
	names := make([]string, 0, len(env))
	for n := range env {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
