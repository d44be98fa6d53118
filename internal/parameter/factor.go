package parameter

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/datatype"
	"github.com/specialistvlad/stapes/internal/numeric"
	"github.com/specialistvlad/stapes/internal/posterior"
	"github.com/specialistvlad/stapes/internal/stem"
	"github.com/specialistvlad/stapes/internal/templates"
)

// Factor is a partially pooled vector: group values are drawn around a
// shared mean with a shared spread. Unseen group ids are drawn from that
// population once per fitted instance and reused afterwards.
type Factor struct {
	base
	group      string
	isCentered bool

	mu    sync.Mutex
	drawn map[int][]float64
}

func newFactor(b base, args map[string]string) (Parameter, error) {
	if err := checkArgs(args, "group", "is_centered"); err != nil {
		return nil, err
	}
	if b.dtype.Name == "scale" {
		return nil, fmt.Errorf("%w: a factor cannot use data type %q", ErrInvalidArgument, b.dtype.Name)
	}
	group, err := groupArg(args)
	if err != nil {
		return nil, err
	}
	centered := false
	if v, ok := args["is_centered"]; ok {
		centered, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: is_centered must be true or false, got %q", ErrInvalidArgument, v)
		}
	}
	return &Factor{base: b, group: group, isCentered: centered}, nil
}

func (p *Factor) Stem() (*stem.Result, error) {
	env := p.env()
	env["group"] = p.group
	env["is_centered"] = p.isCentered
	return templates.Expand(templates.Factor, p.name, env)
}

func (p *Factor) LikelihoodIndex() string { return "[" + p.group + "[n]]" }

func (p *Factor) Variables() []string { return []string{p.group} }

func (p *Factor) Forecast(src rand.Source, data Lookup, at dataset.Cell) (numeric.Value, error) {
	s, err := p.primary()
	if err != nil {
		return numeric.Value{}, err
	}
	id, err := data.IndexAt(p.group, at)
	if err != nil {
		return numeric.Value{}, fmt.Errorf("parameter %q: %w", p.name, err)
	}
	if id < 1 {
		return numeric.Value{}, fmt.Errorf("parameter %q: invalid %s = %d", p.name, p.group, id)
	}
	if id <= s.Width() {
		return numeric.Draws(s.Column(id - 1)), nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.drawn[id]; ok {
		return numeric.Draws(d), nil
	}
	d, err := p.drawNew(src, s.Draws())
	if err != nil {
		return numeric.Value{}, err
	}
	p.drawn[id] = d
	return numeric.Draws(d), nil
}

// drawNew draws a value for an unseen group from the population of each
// posterior draw.
func (p *Factor) drawNew(src rand.Source, n int) ([]float64, error) {
	sigma := p.samples[".sigma"]
	mu, hasMu := p.samples[".mu"]
	out := make([]float64, n)
	for i := range out {
		dist := distuv.Normal{Sigma: sigma[i][0], Src: src}
		if hasMu {
			dist.Mu = mu[i][0]
		}
		v, err := datatype.Apply(p.dtype.Transform, dist.Rand())
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.name, err)
		}
		out[i] = v
	}
	return out, nil
}

func (p *Factor) WithSamples(samples posterior.SampleSet) (Parameter, error) {
	scoped, err := p.fit(samples, ".sigma")
	if err != nil {
		return nil, err
	}
	if w := scoped[".sigma"].Draws(); w != scoped[posterior.PrimaryKey].Draws() {
		return nil, fmt.Errorf("%q: %w: %d draws of %s, expected %d", p.name, ErrMissingSamples, w, posterior.Munge(p.name, ".sigma"), scoped[posterior.PrimaryKey].Draws())
	}
	return &Factor{
		base:       base{name: p.name, dtype: p.dtype, samples: scoped},
		group:      p.group,
		isCentered: p.isCentered,
		drawn:      map[int][]float64{},
	}, nil
}
