// Package likelihood holds the assembled likelihood of one target variable:
// an expression for its mean and one for its variance. It renders both into
// generated program text and evaluates them over posterior draws.
package likelihood

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/dsl"
	"github.com/specialistvlad/stapes/internal/numeric"
	"github.com/specialistvlad/stapes/internal/parameter"
	"github.com/specialistvlad/stapes/internal/registry"
	"github.com/specialistvlad/stapes/internal/stem"
	"github.com/specialistvlad/stapes/internal/templates"
)

var (
	ErrMissingValue     = errors.New("missing value")
	ErrUnknownParameter = errors.New("unknown parameter")
)

// Likelihood is the mean/variance pair of a target variable.
type Likelihood struct {
	Variable string
	Mean     dsl.Expr
	Variance dsl.Expr
}

// Offsets returns the distinct offsets used by either expression, sorted.
func (l *Likelihood) Offsets() []dsl.Offset {
	seen := map[dsl.Offset]struct{}{}
	var out []dsl.Offset
	for _, e := range l.exprs() {
		for _, o := range dsl.Offsets(e) {
			if _, ok := seen[o]; !ok {
				seen[o] = struct{}{}
				out = append(out, o)
			}
		}
	}
	return dsl.SortOffsets(out)
}

// Variables returns the data variables read by either expression, sorted.
func (l *Likelihood) Variables() []string {
	return union(dsl.Variables(l.Mean), dsl.Variables(l.Variance))
}

// Parameters returns the parameters referenced by either expression, sorted.
func (l *Likelihood) Parameters() []string {
	return union(dsl.Parameters(l.Mean), dsl.Parameters(l.Variance))
}

func (l *Likelihood) exprs() []dsl.Expr { return []dsl.Expr{l.Mean, l.Variance} }

// Stem expands the likelihood template for the target variable.
func (l *Likelihood) Stem(params map[string]parameter.Parameter) (*stem.Result, error) {
	mean, err := Code(l.Mean, params)
	if err != nil {
		return nil, fmt.Errorf("mean(%s): %w", l.Variable, err)
	}
	variance, err := Code(l.Variance, params)
	if err != nil {
		return nil, fmt.Errorf("variance(%s): %w", l.Variable, err)
	}
	return templates.Expand(templates.Likelihood, l.Variable, stem.Env{
		"mean":     mean,
		"variance": variance,
	})
}

// Predict draws forecast variates of the target variable at a cell, one per
// posterior draw, from the named family. Aspects that reference no
// parameter evaluate to scalars and are broadcast to draws.
func (l *Likelihood) Predict(params map[string]parameter.Parameter, src rand.Source, draws int, family string, families *registry.Families, data Data, at dataset.Cell) ([]float64, error) {
	mean, err := Evaluate(l.Mean, params, src, data, at)
	if err != nil {
		return nil, fmt.Errorf("mean(%s) at %s: %w", l.Variable, at, err)
	}
	variance, err := Evaluate(l.Variance, params, src, data, at)
	if err != nil {
		return nil, fmt.Errorf("variance(%s) at %s: %w", l.Variable, at, err)
	}
	for _, v := range []numeric.Value{mean, variance} {
		if !v.IsScalar() && v.Len() != draws {
			return nil, fmt.Errorf("%s at %s: %w: got %d, want %d", l.Variable, at, numeric.ErrDrawMismatch, v.Len(), draws)
		}
	}
	out, err := families.Draw(family, mean.Slice(draws), variance.Slice(draws), src)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", l.Variable, at, err)
	}
	return out, nil
}

func union(a, b []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range append(a, b...) {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
