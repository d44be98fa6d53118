// Package numeric implements the values the runtime evaluator computes with:
// either a single number or one number per posterior draw. Operations
// broadcast a single number over draws.
package numeric

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var ErrDrawMismatch = errors.New("draw count mismatch")

// Value is a scalar or a per-draw array.
type Value struct {
	scalar float64
	draws  []float64
}

// Scalar wraps a single number.
func Scalar(v float64) Value { return Value{scalar: v} }

// Draws wraps one number per draw. The slice is not copied.
func Draws(d []float64) Value {
	if d == nil {
		d = []float64{}
	}
	return Value{draws: d}
}

// IsScalar reports whether v holds a single number.
func (v Value) IsScalar() bool { return v.draws == nil }

// Len is the number of draws, or 1 for a scalar.
func (v Value) Len() int {
	if v.IsScalar() {
		return 1
	}
	return len(v.draws)
}

// Float returns the scalar value.
func (v Value) Float() float64 { return v.scalar }

// Slice returns the value expanded to n draws.
func (v Value) Slice(n int) []float64 {
	if !v.IsScalar() {
		return v.draws
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = v.scalar
	}
	return out
}

// At returns draw i, or the scalar.
func (v Value) At(i int) float64 {
	if v.IsScalar() {
		return v.scalar
	}
	return v.draws[i]
}

func (v Value) String() string {
	if v.IsScalar() {
		return fmt.Sprintf("%g", v.scalar)
	}
	return fmt.Sprintf("%d draws", len(v.draws))
}

// Binary applies +, -, *, / or ^.
func Binary(op string, a, b Value) (Value, error) {
	if a.IsScalar() && b.IsScalar() {
		r, err := scalarOp(op, a.scalar, b.scalar)
		return Scalar(r), err
	}
	n := a.Len()
	if a.IsScalar() {
		n = b.Len()
	}
	if !a.IsScalar() && !b.IsScalar() && a.Len() != b.Len() {
		return Value{}, fmt.Errorf("%w: %d vs %d", ErrDrawMismatch, a.Len(), b.Len())
	}

	dst := make([]float64, n)
	switch op {
	case "+":
		floats.AddTo(dst, a.Slice(n), b.Slice(n))
	case "-":
		floats.SubTo(dst, a.Slice(n), b.Slice(n))
	case "*":
		floats.MulTo(dst, a.Slice(n), b.Slice(n))
	case "/":
		floats.DivTo(dst, a.Slice(n), b.Slice(n))
	case "^":
		for i := range dst {
			dst[i] = math.Pow(a.At(i), b.At(i))
		}
	default:
		return Value{}, fmt.Errorf("unknown operator %q", op)
	}
	return Draws(dst), nil
}

func scalarOp(op string, a, b float64) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		return a / b, nil
	case "^":
		return math.Pow(a, b), nil
	}
	return 0, fmt.Errorf("unknown operator %q", op)
}

var functions = map[string]func(float64) float64{
	"-":         func(x float64) float64 { return -x },
	"log":       math.Log,
	"sqrt":      math.Sqrt,
	"exp":       math.Exp,
	"logit":     func(x float64) float64 { return math.Log(x / (1 - x)) },
	"inv_logit": func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
}

// Apply applies unary minus or a built-in function element-wise.
func Apply(fn string, a Value) (Value, error) {
	f, ok := functions[fn]
	if !ok {
		return Value{}, fmt.Errorf("unknown function %q", fn)
	}
	return Map(a, f), nil
}

// Map applies f element-wise.
func Map(a Value, f func(float64) float64) Value {
	if a.IsScalar() {
		return Scalar(f(a.scalar))
	}
	out := make([]float64, len(a.draws))
	for i, x := range a.draws {
		out[i] = f(x)
	}
	return Draws(out)
}
