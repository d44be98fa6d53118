// internal/likelihood/likelihood_test.go
package likelihood

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/dsl"
	"github.com/specialistvlad/stapes/internal/numeric"
	"github.com/specialistvlad/stapes/internal/parameter"
	"github.com/specialistvlad/stapes/internal/posterior"
	"github.com/specialistvlad/stapes/internal/registry"
	"github.com/specialistvlad/stapes/internal/stem"
)

func mustExpr(t *testing.T, src string) dsl.Expr {
	t.Helper()
	e, err := dsl.ParseExpr(src)
	require.NoError(t, err)
	return e
}

func mustParam(t *testing.T, spec *dsl.ParamSpec) parameter.Parameter {
	t.Helper()
	p, err := parameter.New(spec)
	require.NoError(t, err)
	return p
}

func chainLadder(t *testing.T) (*Likelihood, map[string]parameter.Parameter) {
	t.Helper()
	l := &Likelihood{
		Variable: "paid",
		Mean:     mustExpr(t, "$alpha * paid[prev_dev]"),
		Variance: mustExpr(t, "$sigma ^ 2 * paid[prev_dev]"),
	}
	params := map[string]parameter.Parameter{
		"alpha": mustParam(t, &dsl.ParamSpec{Name: "alpha", DataType: "pos", Kind: "vector", Args: map[string]string{"group": "DevLagId"}}),
		"sigma": mustParam(t, &dsl.ParamSpec{Name: "sigma", DataType: "scale"}),
	}
	return l, params
}

func TestOffsets_TwoPreviousDevelopmentModifiers(t *testing.T) {
	t.Parallel()

	l := &Likelihood{
		Variable: "paid",
		Mean:     mustExpr(t, "paid[prev_dev, prev_dev] + paid[prev_dev]"),
		Variance: mustExpr(t, "1"),
	}

	assert.Equal(t, []dsl.Offset{{Development: 1}, {Development: 2}}, l.Offsets())
	assert.Equal(t, "LagDD", l.Offsets()[1].Name())
}

func TestCode(t *testing.T) {
	t.Parallel()

	_, params := chainLadder(t)
	testCases := []struct {
		src      string
		expected string
	}{
		{src: "$alpha * paid[prev_dev]", expected: "(alpha[DevLagId[n]] * paid[LagD[n]])"},
		{src: "$sigma ^ 2", expected: "(sigma ^ 2.0)"},
		{src: "-log(premium[prev_exp, prev_dev])", expected: "(-log(premium[LagTD[n]]))"},
		{src: "premium * 0.5", expected: "(premium[n] * 0.5)"},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			got, err := Code(mustExpr(t, tc.src), params)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := Code(mustExpr(t, "$beta"), params)
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestStem(t *testing.T) {
	t.Parallel()

	l, params := chainLadder(t)

	res, err := l.Stem(params)

	require.NoError(t, err)
	assert.Equal(t, []string{"int<lower=1> paid__family;"}, res.Fragment.Lines(stem.Data))
	require.Len(t, res.ConfigParameters, 1)
	assert.Equal(t, "paid__family", res.ConfigParameters[0].Name)
	assert.Equal(t, 1.0, res.ConfigParameters[0].Default)
	assert.Contains(t, res.Fragment.Lines(stem.TransDef), "    paid__mean[n] = (alpha[DevLagId[n]] * paid[LagD[n]]);")
	assert.Contains(t, res.Fragment.Lines(stem.TransDef), "    paid__variance[n] = ((sigma ^ 2.0) * paid[LagD[n]]);")
	assert.Equal(t, []string{"target += sum(mean_variance_log_lik(paid[1:N], paid__mean, paid__variance, paid__family));"}, res.Fragment.Lines(stem.ModelDecl))
	assert.Equal(t, []string{"paid"}, l.Variables())
	assert.Equal(t, []string{"alpha", "sigma"}, l.Parameters())
}

func fitted(t *testing.T, params map[string]parameter.Parameter, samples posterior.SampleSet) map[string]parameter.Parameter {
	t.Helper()
	out := map[string]parameter.Parameter{}
	for name, p := range params {
		f, err := p.WithSamples(samples)
		require.NoError(t, err)
		out[name] = f
	}
	return out
}

func TestEvaluate_BroadcastsOverDraws(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	l, params := chainLadder(t)
	params = fitted(t, params, posterior.SampleSet{
		"alpha": {{9, 1.5}, {9, 2.0}, {9, 2.5}},
		"sigma": {{1}, {2}, {3}},
	})
	ds := dataset.New()
	ds.Set(dataset.Coordinate{Variable: "paid", Cell: dataset.Cell{Slice: 1, Experience: 1, Development: 1}}, dataset.Observed(100))
	at := dataset.Cell{Slice: 1, Experience: 1, Development: 2}

	// --- Act ---
	mean, err := Evaluate(l.Mean, params, nil, ds, at)
	require.NoError(t, err)
	variance, err := Evaluate(l.Variance, params, nil, ds, at)
	require.NoError(t, err)

	// --- Assert ---
	assert.Equal(t, []float64{150, 200, 250}, mean.Slice(3))
	assert.Equal(t, []float64{100, 400, 900}, variance.Slice(3))
}

func TestEvaluate_Errors(t *testing.T) {
	t.Parallel()

	ds := dataset.New()
	ds.Set(dataset.Coordinate{Variable: "paid", Cell: dataset.Cell{Slice: 1, Experience: 1, Development: 1}}, dataset.Unrealized())
	at := dataset.Cell{Slice: 1, Experience: 1, Development: 2}

	_, err := Evaluate(mustExpr(t, "paid[prev_dev]"), nil, nil, ds, at)
	assert.ErrorIs(t, err, ErrMissingValue)
	assert.ErrorIs(t, err, dataset.ErrUnrealizedValue)

	_, err = Evaluate(mustExpr(t, "premium"), nil, nil, ds, at)
	assert.ErrorIs(t, err, ErrMissingValue)

	_, err = Evaluate(mustExpr(t, "$alpha"), nil, nil, ds, at)
	assert.ErrorIs(t, err, ErrUnknownParameter)

	v, err := Evaluate(mustExpr(t, "2 * DevLagId"), nil, nil, ds, at)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.Float())
}

func TestPredict(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	l := &Likelihood{
		Variable: "paid",
		Mean:     mustExpr(t, "$alpha * paid[prev_dev]"),
		Variance: mustExpr(t, "0 * paid[prev_dev]"),
	}
	params := fitted(t, map[string]parameter.Parameter{"alpha": parameter.Implicit("alpha")},
		posterior.SampleSet{"alpha": {{1.5}, {2}}})
	ds := dataset.New()
	ds.Set(dataset.Coordinate{Variable: "paid", Cell: dataset.Cell{Slice: 1, Experience: 1, Development: 1}}, dataset.Observed(100))
	at := dataset.Cell{Slice: 1, Experience: 1, Development: 2}
	src := rand.NewPCG(1, 1)

	// --- Act ---
	got, err := l.Predict(params, src, 2, "normal", registry.Default(), ds, at)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []float64{150, 200}, got)

	_, err = l.Predict(params, src, 2, "weibull", registry.Default(), ds, at)
	assert.ErrorIs(t, err, registry.ErrUnknownFamily)

	_, err = l.Predict(params, src, 3, "normal", registry.Default(), ds, at)
	assert.ErrorIs(t, err, numeric.ErrDrawMismatch)
}

func TestPredict_BroadcastsScalarAspects(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	l := &Likelihood{
		Variable: "paid",
		Mean:     mustExpr(t, "2 * paid[prev_dev]"),
		Variance: mustExpr(t, "0"),
	}
	ds := dataset.New()
	ds.Set(dataset.Coordinate{Variable: "paid", Cell: dataset.Cell{Slice: 1, Experience: 1, Development: 1}}, dataset.Observed(100))
	at := dataset.Cell{Slice: 1, Experience: 1, Development: 2}

	// --- Act ---
	got, err := l.Predict(nil, rand.NewPCG(1, 1), 4, "normal", registry.Default(), ds, at)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []float64{200, 200, 200, 200}, got)
}
