// internal/templates/templates_test.go
package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stapes/internal/stem"
)

func TestAllTemplatesParse(t *testing.T) {
	t.Parallel()

	for _, name := range []string{Preamble, Offset, Index, Value, Scalar, Vector, Factor, Likelihood} {
		t.Run(name, func(t *testing.T) {
			_, err := Get(name)
			require.NoError(t, err)
		})
	}

	_, err := Get("missing")
	require.Error(t, err)
}

func TestScalar(t *testing.T) {
	t.Parallel()

	t.Run("transformed", func(t *testing.T) {
		res, err := Expand(Scalar, "alpha", stem.Env{"transform": "exp", "bounds": "<lower=0>", "raw_bounds": ""})
		require.NoError(t, err)

		f := res.Fragment
		assert.Equal(t, []string{"real alpha__prior_mean;", "real<lower=0> alpha__prior_sd;"}, f.Lines(stem.Data))
		assert.Equal(t, []string{"real alpha__raw;"}, f.Lines(stem.ParamDecl))
		assert.Equal(t, []string{"real<lower=0> alpha;"}, f.Lines(stem.TransDecl))
		assert.Equal(t, []string{"alpha = exp(alpha__raw);"}, f.Lines(stem.TransDef))
		assert.Equal(t, []string{"alpha__raw ~ normal(alpha__prior_mean, alpha__prior_sd);"}, f.Lines(stem.ModelDecl))
		assert.Equal(t, []string{"alpha"}, res.CoreParameters)
		require.Len(t, res.ConfigParameters, 2)
	})

	t.Run("constrained", func(t *testing.T) {
		res, err := Expand(Scalar, "sigma", stem.Env{"transform": "", "bounds": "<lower=0>", "raw_bounds": "<lower=0>"})
		require.NoError(t, err)

		f := res.Fragment
		assert.Equal(t, []string{"real<lower=0> sigma;"}, f.Lines(stem.ParamDecl))
		assert.Empty(t, f.Lines(stem.TransDecl))
		assert.Equal(t, []string{"sigma ~ normal(sigma__prior_mean, sigma__prior_sd);"}, f.Lines(stem.ModelDecl))
		assert.Equal(t, []string{"sigma"}, res.CoreParameters)
	})
}

func TestVector_Anchors(t *testing.T) {
	t.Parallel()

	base := stem.Env{"transform": "exp", "bounds": "<lower=0>", "raw_bounds": "", "group": "DevLagId", "anchor_value": 0}

	testCases := []struct {
		anchor   string
		params   []string
		transDef []string
	}{
		{
			anchor:   "none",
			params:   []string{"vector[DevLagId__count] a__raw;"},
			transDef: []string{"a = exp(a__raw);"},
		},
		{
			anchor:   "first",
			params:   []string{"vector[DevLagId__count - 1] a__free;"},
			transDef: []string{"a__raw = append_row(rep_vector(0, 1), a__free);", "a = exp(a__raw);"},
		},
		{
			anchor:   "last",
			params:   []string{"vector[DevLagId__count - 1] a__free;"},
			transDef: []string{"a__raw = append_row(a__free, rep_vector(0, 1));", "a = exp(a__raw);"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.anchor, func(t *testing.T) {
			env := stem.Env{"anchor": tc.anchor}
			for k, v := range base {
				env[k] = v
			}
			res, err := Expand(Vector, "a", env)
			require.NoError(t, err)
			assert.Equal(t, tc.params, res.Fragment.Lines(stem.ParamDecl))
			assert.Equal(t, tc.transDef, res.Fragment.Lines(stem.TransDef))
			assert.Equal(t, []string{"a"}, res.CoreParameters)
		})
	}
}

func TestFactor_Centering(t *testing.T) {
	t.Parallel()

	for _, centered := range []bool{true, false} {
		res, err := Expand(Factor, "b", stem.Env{"transform": "", "bounds": "", "group": "ExpPeriodId", "is_centered": centered})
		require.NoError(t, err)
		assert.Equal(t, []string{"b__mu", "b__sigma", "b"}, res.CoreParameters)

		model := res.Fragment.Lines(stem.ModelDecl)
		if centered {
			assert.Contains(t, model, "b__raw ~ normal(b__mu, b__sigma);")
			assert.NotContains(t, res.Fragment.Lines(stem.TransDef), "b__raw = b__mu + b__sigma * b__z;")
		} else {
			assert.Contains(t, model, "b__z ~ std_normal();")
			assert.Contains(t, res.Fragment.Lines(stem.TransDef), "b__raw = b__mu + b__sigma * b__z;")
		}
	}
}

func TestLikelihood(t *testing.T) {
	t.Parallel()

	res, err := Expand(Likelihood, "paid", stem.Env{"mean": "(a * paid[LagD[n]])", "variance": "(s ^ 2.0)"})
	require.NoError(t, err)

	f := res.Fragment
	assert.Equal(t, []string{"int<lower=1> paid__family;"}, f.Lines(stem.Data))
	assert.Equal(t, []string{
		"for (n in 1:N) {",
		"    paid__mean[n] = (a * paid[LagD[n]]);",
		"    paid__variance[n] = (s ^ 2.0);",
		"}",
	}, f.Lines(stem.TransDef))
	assert.Equal(t, []string{
		"target += sum(mean_variance_log_lik(paid[1:N], paid__mean, paid__variance, paid__family));",
	}, f.Lines(stem.ModelDecl))
	require.Len(t, res.ConfigParameters, 1)
	assert.Equal(t, 1.0, res.ConfigParameters[0].Default)
}

func TestValueAndIndex(t *testing.T) {
	t.Parallel()

	res, err := Expand(Value, "paid", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"array[T] real paid__raw;",
		"int<lower=0> paid__num_missing;",
		"array[paid__num_missing] int<lower=1, upper=T> paid__missing_ids;",
	}, res.Fragment.Lines(stem.Data))
	assert.Equal(t, []string{"paid = paid__raw;", "paid[paid__missing_ids] = paid__missing;"}, res.Fragment.Lines(stem.TransDef))
	assert.Equal(t, []string{"paid__missing"}, res.CoreParameters)

	res, err = Expand(Index, "DevLagId", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"array[N] int<lower=1> DevLagId;", "int<lower=1> DevLagId__count;"}, res.Fragment.Lines(stem.Data))
}

func TestFunctions(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Functions(), "mean_variance_log_lik")
}
