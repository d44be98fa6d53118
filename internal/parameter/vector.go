package parameter

import (
	"fmt"
	"math/rand/v2"

	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/numeric"
	"github.com/specialistvlad/stapes/internal/posterior"
	"github.com/specialistvlad/stapes/internal/stem"
	"github.com/specialistvlad/stapes/internal/templates"
)

// Anchor positions for Vector.
const (
	AnchorNone  = "none"
	AnchorFirst = "first"
	AnchorLast  = "last"
)

// Vector holds one independent value per group id. One end may be pinned
// to the data type's base value. Ids beyond the fitted range cannot be
// forecast.
type Vector struct {
	base
	group  string
	anchor string
}

func newVector(b base, args map[string]string) (Parameter, error) {
	if err := checkArgs(args, "group", "anchor"); err != nil {
		return nil, err
	}
	group, err := groupArg(args)
	if err != nil {
		return nil, err
	}
	anchor := AnchorNone
	if a, ok := args["anchor"]; ok {
		anchor = a
	}
	switch anchor {
	case AnchorNone, AnchorFirst, AnchorLast:
	default:
		return nil, fmt.Errorf("%w: anchor must be one of none, first, last; got %q", ErrInvalidArgument, anchor)
	}
	return &Vector{base: b, group: group, anchor: anchor}, nil
}

func (p *Vector) Stem() (*stem.Result, error) {
	env := p.env()
	env["group"] = p.group
	env["anchor"] = p.anchor
	return templates.Expand(templates.Vector, p.name, env)
}

func (p *Vector) LikelihoodIndex() string { return "[" + p.group + "[n]]" }

func (p *Vector) Variables() []string { return []string{p.group} }

func (p *Vector) Forecast(_ rand.Source, data Lookup, at dataset.Cell) (numeric.Value, error) {
	s, err := p.primary()
	if err != nil {
		return numeric.Value{}, err
	}
	id, err := data.IndexAt(p.group, at)
	if err != nil {
		return numeric.Value{}, fmt.Errorf("parameter %q: %w", p.name, err)
	}
	if id < 1 || id > s.Width() {
		return numeric.Value{}, &ExtrapolationError{Parameter: p.name, Group: p.group, Index: id, Max: s.Width()}
	}
	return numeric.Draws(s.Column(id - 1)), nil
}

func (p *Vector) WithSamples(samples posterior.SampleSet) (Parameter, error) {
	scoped, err := p.fit(samples)
	if err != nil {
		return nil, err
	}
	fitted := *p
	fitted.samples = scoped
	return &fitted, nil
}
