// internal/registry/registry_test.go
package registry

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestDefault_Codes(t *testing.T) {
	t.Parallel()

	f := Default()
	for name, want := range map[string]int{"normal": 1, "lognormal": 2, "gamma": 3} {
		code, ok := f.Code(name)
		require.True(t, ok, name)
		assert.Equal(t, want, code, name)

		fam, err := f.ByCode(want)
		require.NoError(t, err)
		assert.Equal(t, name, fam.Name)
	}
	assert.Equal(t, []string{"gamma", "lognormal", "normal"}, f.Names())

	_, err := f.Lookup("weibull")
	assert.ErrorIs(t, err, ErrUnknownFamily)
	_, err = f.ByCode(9)
	assert.ErrorIs(t, err, ErrUnknownFamily)
}

func TestDraw_MatchesMoments(t *testing.T) {
	t.Parallel()

	const n = 20000
	for _, name := range []string{"normal", "lognormal", "gamma"} {
		t.Run(name, func(t *testing.T) {
			// --- Arrange ---
			mean := make([]float64, n)
			variance := make([]float64, n)
			for i := range mean {
				mean[i] = 50
				variance[i] = 25
			}
			src := rand.NewPCG(1, 2)

			// --- Act ---
			draws, err := Default().Draw(name, mean, variance, src)

			// --- Assert ---
			require.NoError(t, err)
			m, sd := stat.MeanStdDev(draws, nil)
			assert.InDelta(t, 50, m, 0.5)
			assert.InDelta(t, 5, sd, 0.5)
		})
	}
}

func TestDraw_GammaZeroMeanIsFloored(t *testing.T) {
	t.Parallel()

	f := Default()
	draws, err := f.Draw("gamma", []float64{0, 0, 1e-12}, []float64{1, 0, 3}, rand.NewPCG(7, 7))
	require.NoError(t, err)
	for _, d := range draws {
		assert.False(t, math.IsNaN(d))
		assert.GreaterOrEqual(t, d, f.Floor())
	}
}

func TestDraw_Errors(t *testing.T) {
	t.Parallel()

	f := Default()

	_, err := f.Draw("normal", []float64{1}, []float64{-1}, rand.NewPCG(1, 1))
	assert.ErrorIs(t, err, ErrNegativeVariance)

	_, err = f.Draw("cauchy", []float64{1}, []float64{1}, rand.NewPCG(1, 1))
	assert.ErrorIs(t, err, ErrUnknownFamily)

	_, err = f.Draw("normal", []float64{1, 2}, []float64{1}, rand.NewPCG(1, 1))
	assert.Error(t, err)
}

func TestWithClamps(t *testing.T) {
	t.Parallel()

	base := Default()
	custom := base.WithClamps(1e-3, 5)

	draws, err := custom.Draw("normal", []float64{0}, []float64{0}, rand.NewPCG(1, 1))
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, draws)
	assert.Equal(t, DefaultFloor, base.Floor(), "the original table is unchanged")
	assert.Equal(t, 1e-3, custom.MinPositiveMean())
}

func TestNew_RejectsDuplicateCodes(t *testing.T) {
	t.Parallel()

	_, err := New(
		Family{Name: "a", Code: 1, Sample: sampleNormal},
		Family{Name: "b", Code: 1, Sample: sampleNormal},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one-to-one")

	_, err = New(Family{Name: "c", Code: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
	assert.Contains(t, err.Error(), "missing sampler")
}
