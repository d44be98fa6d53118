package parameter

import (
	"math/rand/v2"

	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/numeric"
	"github.com/specialistvlad/stapes/internal/posterior"
	"github.com/specialistvlad/stapes/internal/stem"
	"github.com/specialistvlad/stapes/internal/templates"
)

// Scalar is a single number shared by every cell.
type Scalar struct {
	base
}

func newScalar(b base, args map[string]string) (Parameter, error) {
	if err := checkArgs(args); err != nil {
		return nil, err
	}
	return &Scalar{base: b}, nil
}

func (p *Scalar) Stem() (*stem.Result, error) {
	return templates.Expand(templates.Scalar, p.name, p.env())
}

func (p *Scalar) LikelihoodIndex() string { return "" }

func (p *Scalar) Variables() []string { return nil }

func (p *Scalar) Forecast(_ rand.Source, _ Lookup, _ dataset.Cell) (numeric.Value, error) {
	s, err := p.primary()
	if err != nil {
		return numeric.Value{}, err
	}
	return numeric.Draws(s.Column(0)), nil
}

func (p *Scalar) WithSamples(samples posterior.SampleSet) (Parameter, error) {
	scoped, err := p.fit(samples)
	if err != nil {
		return nil, err
	}
	fitted := *p
	fitted.samples = scoped
	return &fitted, nil
}
