package forecast

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/specialistvlad/stapes/internal/dataset"
)

// Summary describes the forecast draws of one cell.
type Summary struct {
	Slice       int     `yaml:"slice"`
	Experience  int     `yaml:"experience"`
	Development int     `yaml:"development"`
	Mean        float64 `yaml:"mean"`
	SD          float64 `yaml:"sd"`
	P05         float64 `yaml:"p05"`
	P50         float64 `yaml:"p50"`
	P95         float64 `yaml:"p95"`
	// After names the forecast cells this cell was predicted from.
	After []string `yaml:"after,omitempty"`
}

// Summarize computes the mean, standard deviation and 5/50/95% quantiles of
// draws.
func Summarize(c dataset.Cell, draws []float64) Summary {
	s := Summary{Slice: c.Slice, Experience: c.Experience, Development: c.Development}
	if len(draws) == 0 {
		return s
	}
	sorted := append([]float64(nil), draws...)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.SD = stat.StdDev(sorted, nil)
	}
	s.P05 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	s.P50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return s
}

// Report is the serialisable outcome of a forecast run.
type Report struct {
	FitID    string    `yaml:"fit_id"`
	Variable string    `yaml:"variable"`
	Family   string    `yaml:"family"`
	Draws    int       `yaml:"draws"`
	Cells    []Summary `yaml:"cells"`
}
