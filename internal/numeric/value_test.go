// internal/numeric/value_test.go
package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinary_Broadcasting(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		op       string
		a, b     Value
		expected []float64
		scalar   bool
	}{
		{name: "scalar scalar", op: "+", a: Scalar(1), b: Scalar(2), expected: []float64{3}, scalar: true},
		{name: "scalar draws", op: "-", a: Scalar(10), b: Draws([]float64{1, 2, 3}), expected: []float64{9, 8, 7}},
		{name: "draws scalar", op: "*", a: Draws([]float64{1, 2, 3}), b: Scalar(2), expected: []float64{2, 4, 6}},
		{name: "draws draws", op: "/", a: Draws([]float64{4, 9}), b: Draws([]float64{2, 3}), expected: []float64{2, 3}},
		{name: "power", op: "^", a: Draws([]float64{2, 3}), b: Scalar(2), expected: []float64{4, 9}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Binary(tc.op, tc.a, tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.scalar, got.IsScalar())
			assert.Equal(t, tc.expected, got.Slice(len(tc.expected)))
		})
	}
}

func TestBinary_Errors(t *testing.T) {
	t.Parallel()

	_, err := Binary("+", Draws([]float64{1, 2}), Draws([]float64{1}))
	assert.ErrorContains(t, err, "mismatch")

	_, err = Binary("%", Scalar(1), Scalar(2))
	assert.ErrorContains(t, err, "unknown operator")
}

func TestApply(t *testing.T) {
	t.Parallel()

	got, err := Apply("inv_logit", Scalar(0))
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Float())

	got, err = Apply("logit", Draws([]float64{0.5}))
	require.NoError(t, err)
	assert.InDelta(t, 0, got.At(0), 1e-12)

	got, err = Apply("-", Draws([]float64{1, -2}))
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 2}, got.Slice(2))

	got, err = Apply("sqrt", Scalar(-1))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Float()))

	_, err = Apply("cosh", Scalar(1))
	assert.Error(t, err)
}
