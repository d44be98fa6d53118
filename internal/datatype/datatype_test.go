// internal/datatype/datatype_test.go
package datatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		stanType    string
		bounds      string
		baseDefault float64
	}{
		{name: "real", stanType: "real", bounds: "", baseDefault: 0},
		{name: "pos", stanType: "real<lower=0>", bounds: "<lower=0>", baseDefault: 0},
		{name: "scale", stanType: "real<lower=0>", bounds: "<lower=0>", baseDefault: 1},
		{name: "unit", stanType: "real<lower=0, upper=1>", bounds: "<lower=0, upper=1>", baseDefault: 0},
		{name: "int", stanType: "int<lower=1>", bounds: "<lower=1, upper=999999>", baseDefault: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dt, err := Lookup(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.stanType, dt.StanType)
			assert.Equal(t, tc.bounds, dt.Bounds())
			assert.Equal(t, tc.baseDefault, dt.BaseDefault)
		})
	}

	_, err := Lookup("complex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complex")
}

func TestApply_InversePairs(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"pos", "unit"} {
		dt, err := Lookup(name)
		require.NoError(t, err)

		x := 0.25
		y, err := Apply(dt.InvTransform, x)
		require.NoError(t, err)
		back, err := Apply(dt.Transform, y)
		require.NoError(t, err)
		assert.InDelta(t, x, back, 1e-12, name)
	}

	_, err := Apply("cube", 1)
	require.Error(t, err)
}
