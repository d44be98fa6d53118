package registry

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrUnknownFamily    = errors.New("unknown distribution family")
	ErrNegativeVariance = errors.New("negative variance")
)

const (
	// DefaultMinPositiveMean is the mean below which the gamma family pins
	// its rate to 1.
	DefaultMinPositiveMean = 1e-8
	// DefaultFloor is the smallest value a forecast draw may take.
	DefaultFloor = 1e-4
)

// Sampler draws one variate with the given mean and variance.
type Sampler func(mean, variance, minPositiveMean float64, src rand.Source) float64

// Family is one row of the table.
type Family struct {
	Name   string
	Code   int
	Sample Sampler
}

// Families is an immutable name/code/sampler table.
type Families struct {
	byName          map[string]Family
	byCode          map[int]Family
	minPositiveMean float64
	floor           float64
}

// New builds a table from the given families.
func New(families ...Family) (*Families, error) {
	f := &Families{
		byName:          make(map[string]Family, len(families)),
		byCode:          make(map[int]Family, len(families)),
		minPositiveMean: DefaultMinPositiveMean,
		floor:           DefaultFloor,
	}
	for _, fam := range families {
		f.byName[fam.Name] = fam
		f.byCode[fam.Code] = fam
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Default returns the normal (1), lognormal (2) and gamma (3) table.
func Default() *Families {
	f, err := New(
		Family{Name: "normal", Code: 1, Sample: sampleNormal},
		Family{Name: "lognormal", Code: 2, Sample: sampleLogNormal},
		Family{Name: "gamma", Code: 3, Sample: sampleGamma},
	)
	if err != nil {
		panic(err)
	}
	return f
}

// WithClamps returns a copy of the table using the given constants.
func (f *Families) WithClamps(minPositiveMean, floor float64) *Families {
	cp := *f
	cp.minPositiveMean = minPositiveMean
	cp.floor = floor
	return &cp
}

func (f *Families) MinPositiveMean() float64 { return f.minPositiveMean }
func (f *Families) Floor() float64           { return f.floor }

// Code returns the integer code of the named family.
func (f *Families) Code(name string) (int, bool) {
	fam, ok := f.byName[name]
	return fam.Code, ok
}

// Names lists the family names, sorted.
func (f *Families) Names() []string {
	names := make([]string, 0, len(f.byName))
	for n := range f.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a family by name.
func (f *Families) Lookup(name string) (Family, error) {
	fam, ok := f.byName[name]
	if !ok {
		return Family{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownFamily, name, f.Names())
	}
	return fam, nil
}

// ByCode finds a family by its integer code.
func (f *Families) ByCode(code int) (Family, error) {
	fam, ok := f.byCode[code]
	if !ok {
		return Family{}, fmt.Errorf("%w: code %d", ErrUnknownFamily, code)
	}
	return fam, nil
}

// Draw samples one variate per (mean, variance) pair from the named family
// and floors every result at the table's floor.
func (f *Families) Draw(name string, mean, variance []float64, src rand.Source) ([]float64, error) {
	fam, err := f.Lookup(name)
	if err != nil {
		return nil, err
	}
	if len(mean) != len(variance) {
		return nil, fmt.Errorf("mean has %d draws, variance has %d", len(mean), len(variance))
	}
	out := make([]float64, len(mean))
	for i := range mean {
		m, v := mean[i], variance[i]
		if math.IsNaN(m) || math.IsNaN(v) {
			return nil, fmt.Errorf("family %q: draw %d has NaN moments", name, i)
		}
		if v < 0 {
			return nil, fmt.Errorf("family %q: draw %d: %w %g", name, i, ErrNegativeVariance, v)
		}
		out[i] = math.Max(fam.Sample(m, v, f.minPositiveMean, src), f.floor)
	}
	return out, nil
}

func sampleNormal(mean, variance, _ float64, src rand.Source) float64 {
	return distuv.Normal{Mu: mean, Sigma: math.Sqrt(variance), Src: src}.Rand()
}

func sampleLogNormal(mean, variance, _ float64, src rand.Source) float64 {
	if mean <= 0 {
		return 0
	}
	if variance == 0 {
		return mean
	}
	m2 := mean * mean
	return distuv.LogNormal{
		Mu:    math.Log(m2 / math.Sqrt(m2+variance)),
		Sigma: math.Sqrt(math.Log(1 + variance/m2)),
		Src:   src,
	}.Rand()
}

func sampleGamma(mean, variance, minPositiveMean float64, src rand.Source) float64 {
	if variance == 0 {
		return mean
	}
	shape := mean * mean / variance
	rate := mean / variance
	if mean < minPositiveMean {
		rate = 1
	}
	if !(shape > 0) || math.IsInf(shape, 0) {
		return 0
	}
	return distuv.Gamma{Alpha: shape, Beta: rate, Src: src}.Rand()
}
