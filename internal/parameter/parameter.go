// Package parameter implements the three parameter constructions of the
// model language: plain scalars, group-indexed vectors and partially pooled
// factors.
package parameter

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/datatype"
	"github.com/specialistvlad/stapes/internal/dsl"
	"github.com/specialistvlad/stapes/internal/numeric"
	"github.com/specialistvlad/stapes/internal/posterior"
	"github.com/specialistvlad/stapes/internal/stem"
)

var (
	ErrUnknownKind     = errors.New("unknown parameter kind")
	ErrNotFitted       = errors.New("parameter has no samples")
	ErrMissingSamples  = errors.New("samples missing")
	ErrInvalidArgument = errors.New("invalid parameter argument")
)

// Lookup resolves index variables at a cell.
type Lookup interface {
	IndexAt(name string, c dataset.Cell) (int, error)
}

// Parameter is a model parameter of any construction.
type Parameter interface {
	Name() string
	// Stem expands the parameter's program template.
	Stem() (*stem.Result, error)
	// LikelihoodIndex is appended to the parameter's name when it is used
	// inside a likelihood loop over n.
	LikelihoodIndex() string
	// Variables lists the data variables the parameter is indexed by.
	Variables() []string
	// Forecast returns the parameter's value, one per draw, at a cell.
	Forecast(src rand.Source, data Lookup, at dataset.Cell) (numeric.Value, error)
	// WithSamples returns a fitted copy of the parameter. The copy owns a
	// fresh forecast cache.
	WithSamples(samples posterior.SampleSet) (Parameter, error)
}

// ExtrapolationError reports a group index outside the fitted range of a
// parameter that cannot extrapolate.
type ExtrapolationError struct {
	Parameter string
	Group     string
	Index     int
	Max       int
}

func (e *ExtrapolationError) Error() string {
	return fmt.Sprintf("parameter %q: %s = %d is outside the fitted range 1..%d", e.Parameter, e.Group, e.Index, e.Max)
}

type base struct {
	name    string
	dtype   datatype.DataType
	samples posterior.SampleSet
}

func (b *base) Name() string { return b.name }

func (b *base) env() stem.Env {
	rawBounds := ""
	if b.dtype.Transform == "" {
		rawBounds = b.dtype.Bounds()
	}
	return stem.Env{
		"transform":    b.dtype.Transform,
		"bounds":       b.dtype.Bounds(),
		"raw_bounds":   rawBounds,
		"anchor_value": b.dtype.BaseDefault,
	}
}

func (b *base) primary() (posterior.Samples, error) {
	if b.samples == nil {
		return nil, fmt.Errorf("%q: %w", b.name, ErrNotFitted)
	}
	return b.samples[posterior.PrimaryKey], nil
}

func (b *base) fit(samples posterior.SampleSet, required ...string) (posterior.SampleSet, error) {
	scoped := samples.Scoped(b.name)
	for _, key := range append([]string{posterior.PrimaryKey}, required...) {
		if _, ok := scoped[key]; !ok {
			return nil, fmt.Errorf("%q: %w: %s", b.name, ErrMissingSamples, posterior.Munge(b.name, key))
		}
	}
	return scoped, nil
}

type constructor func(b base, args map[string]string) (Parameter, error)

var kinds = map[string]constructor{
	"scalar": newScalar,
	"vector": newVector,
	"factor": newFactor,
}

// Kinds lists the known constructions, sorted.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// New builds a parameter from its declaration.
func New(spec *dsl.ParamSpec) (Parameter, error) {
	dt, err := datatype.Lookup(spec.DataType)
	if err != nil {
		return nil, fmt.Errorf("parameter $%s: %w", spec.Name, err)
	}
	if dt.IsInteger() {
		return nil, fmt.Errorf("parameter $%s: %w: data type %q cannot be sampled", spec.Name, ErrInvalidArgument, dt.Name)
	}

	kind := spec.Kind
	if kind == "" {
		kind = "scalar"
	}
	ctor, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("parameter $%s: %w %q (known: %v)", spec.Name, ErrUnknownKind, kind, Kinds())
	}
	p, err := ctor(base{name: spec.Name, dtype: dt}, spec.Args)
	if err != nil {
		return nil, fmt.Errorf("parameter $%s: %w", spec.Name, err)
	}
	return p, nil
}

// Implicit builds the unconstrained scalar used for parameters that are
// referenced but never declared.
func Implicit(name string) Parameter {
	p, err := New(&dsl.ParamSpec{Name: name, DataType: "real"})
	if err != nil {
		panic(err)
	}
	return p
}

func checkArgs(args map[string]string, allowed ...string) error {
	ok := map[string]bool{}
	for _, a := range allowed {
		ok[a] = true
	}
	names := make([]string, 0, len(args))
	for n := range args {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if !ok[n] {
			return fmt.Errorf("%w: unknown argument %q (allowed: %v)", ErrInvalidArgument, n, allowed)
		}
	}
	return nil
}

func groupArg(args map[string]string) (string, error) {
	g, ok := args["group"]
	if !ok || g == "" {
		return "", fmt.Errorf("%w: missing required argument \"group\"", ErrInvalidArgument)
	}
	if !dataset.IsIndexVariable(g) {
		return "", fmt.Errorf("%w: group %q must be an index variable (name ending in Id)", ErrInvalidArgument, g)
	}
	return g, nil
}
