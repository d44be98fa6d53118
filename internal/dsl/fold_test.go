// internal/dsl/fold_test.go
package dsl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustExpr(t *testing.T, src string) Expr {
	t.Helper()
	e, err := ParseExpr(src)
	require.NoError(t, err)
	return e
}

func TestOffsets(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		src      string
		expected []Offset
	}{
		{name: "literal only", src: "1 + 2", expected: []Offset{}},
		{name: "zero offset", src: "paid", expected: []Offset{{}}},
		{name: "one dev step", src: "paid[prev_dev]", expected: []Offset{{Development: 1}}},
		{name: "two dev steps are cumulative", src: "paid[prev_dev, prev_dev]", expected: []Offset{{Development: 2}}},
		{
			name:     "distinct and sorted",
			src:      "exp(paid[prev_dev]) * paid[prev_exp] + paid[prev_dev] - inc",
			expected: []Offset{{}, {Development: 1}, {Experience: 1}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Offsets(mustExpr(t, tc.src))
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("Offsets() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParametersAndVariables(t *testing.T) {
	t.Parallel()

	e := mustExpr(t, "$b * log(paid[prev_dev]) + $a * premium - $b / sqrt(premium)")

	assert.Equal(t, []string{"a", "b"}, Parameters(e))
	assert.Equal(t, []string{"paid", "premium"}, Variables(e))
}

func TestOffset_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Lag", Offset{}.Name())
	assert.Equal(t, "LagD", Offset{Development: 1}.Name())
	assert.Equal(t, "LagTDD", Offset{Experience: 1, Development: 2}.Name())
	assert.True(t, Offset{}.IsZero())
}
