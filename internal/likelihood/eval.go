package likelihood

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/dsl"
	"github.com/specialistvlad/stapes/internal/numeric"
	"github.com/specialistvlad/stapes/internal/parameter"
)

// Data is what the evaluator reads variables from.
type Data interface {
	parameter.Lookup
	Resolve(name string, c dataset.Cell) (numeric.Value, error)
}

// Evaluate computes an expression at a cell. Parameters contribute one value
// per posterior draw and single numbers broadcast over them.
func Evaluate(e dsl.Expr, params map[string]parameter.Parameter, src rand.Source, data Data, at dataset.Cell) (numeric.Value, error) {
	switch n := e.(type) {
	case *dsl.Literal:
		return numeric.Scalar(n.Value), nil
	case *dsl.VariableRef:
		v, err := data.Resolve(n.Name, at.Shift(n.Offset()))
		if errors.Is(err, dataset.ErrMissingValue) || errors.Is(err, dataset.ErrUnrealizedValue) {
			return numeric.Value{}, fmt.Errorf("%w: %w", ErrMissingValue, err)
		}
		return v, err
	case *dsl.ParameterRef:
		p, ok := params[n.Name]
		if !ok {
			return numeric.Value{}, fmt.Errorf("%w $%s", ErrUnknownParameter, n.Name)
		}
		return p.Forecast(src, data, at)
	case *dsl.Call:
		arg, err := Evaluate(n.Arg, params, src, data, at)
		if err != nil {
			return numeric.Value{}, err
		}
		return numeric.Apply(n.Function, arg)
	case *dsl.Operation:
		a, err := Evaluate(n.Operands[0], params, src, data, at)
		if err != nil {
			return numeric.Value{}, err
		}
		if len(n.Operands) == 1 {
			return numeric.Apply(n.Operator, a)
		}
		b, err := Evaluate(n.Operands[1], params, src, data, at)
		if err != nil {
			return numeric.Value{}, err
		}
		return numeric.Binary(n.Operator, a, b)
	}
	return numeric.Value{}, fmt.Errorf("unsupported expression %T", e)
}
