package likelihood

import (
	"fmt"

	"github.com/specialistvlad/stapes/internal/dsl"
	"github.com/specialistvlad/stapes/internal/parameter"
)

// Code renders an expression as the program text evaluated inside the loop
// over core cells n.
func Code(e dsl.Expr, params map[string]parameter.Parameter) (string, error) {
	switch n := e.(type) {
	case *dsl.Literal:
		return dsl.FormatNumber(n.Value), nil
	case *dsl.VariableRef:
		o := n.Offset()
		if o.IsZero() {
			return n.Name + "[n]", nil
		}
		return n.Name + "[" + o.Name() + "[n]]", nil
	case *dsl.ParameterRef:
		p, ok := params[n.Name]
		if !ok {
			return "", fmt.Errorf("%s: %w $%s", n.Pos, ErrUnknownParameter, n.Name)
		}
		return n.Name + p.LikelihoodIndex(), nil
	case *dsl.Call:
		arg, err := Code(n.Arg, params)
		if err != nil {
			return "", err
		}
		return n.Function + "(" + arg + ")", nil
	case *dsl.Operation:
		operands := make([]string, len(n.Operands))
		for i, op := range n.Operands {
			s, err := Code(op, params)
			if err != nil {
				return "", err
			}
			operands[i] = s
		}
		if len(operands) == 1 {
			return "(" + n.Operator + operands[0] + ")", nil
		}
		return "(" + operands[0] + " " + n.Operator + " " + operands[1] + ")", nil
	}
	return "", fmt.Errorf("unsupported expression %T", e)
}
