package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/specialistvlad/stapes/internal/datatype"
)

var (
	ErrUnknownParameter = errors.New("unknown config parameter")
	ErrUnknownFamily    = errors.New("unknown distribution family")
)

// FamilySuffix marks the knob that selects a likelihood's distribution family.
const FamilySuffix = "__family"

// Parameter is one tunable knob of a compiled model.
type Parameter struct {
	Name         string
	DataType     string
	Default      float64
	Min          *float64
	Max          *float64
	InvTransform string
}

// NewParameter builds a knob of the given domain with the domain's base
// default and bounds.
func NewParameter(name, dtype string) (Parameter, error) {
	dt, err := datatype.Lookup(dtype)
	if err != nil {
		return Parameter{}, err
	}
	return Parameter{
		Name:         name,
		DataType:     dt.Name,
		Default:      dt.BaseDefault,
		Min:          dt.Min,
		Max:          dt.Max,
		InvTransform: dt.InvTransform,
	}, nil
}

// BoundsError reports a config value outside its declared domain.
type BoundsError struct {
	Name  string
	Value float64
	Min   *float64
	Max   *float64
}

func (e *BoundsError) Error() string {
	lo, hi := "-inf", "inf"
	if e.Min != nil {
		lo = fmt.Sprintf("%g", *e.Min)
	}
	if e.Max != nil {
		hi = fmt.Sprintf("%g", *e.Max)
	}
	return fmt.Sprintf("config parameter %q: value %g outside [%s, %s]", e.Name, e.Value, lo, hi)
}

// Resolve validates user values against schema and returns the value of
// every knob, ready to be passed to the sampler. Supplied values are mapped
// through the knob's inverse transform; defaults are used as-is.
func Resolve(schema []Parameter, values map[string]any, families FamilyIndex) (map[string]float64, error) {
	byName := make(map[string]Parameter, len(schema))
	for _, p := range schema {
		byName[p.Name] = p
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]float64, len(schema))
	for _, p := range schema {
		out[p.Name] = p.Default
	}

	for _, name := range names {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		v, err := p.resolve(values[name], families)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func (p Parameter) resolve(raw any, families FamilyIndex) (float64, error) {
	var v float64
	switch x := raw.(type) {
	case string:
		if !strings.HasSuffix(p.Name, FamilySuffix) || families == nil {
			return 0, fmt.Errorf("config parameter %q: expected a number, got %q", p.Name, x)
		}
		code, ok := families.Code(x)
		if !ok {
			return 0, fmt.Errorf("%w: %q for %q (known: %v)", ErrUnknownFamily, x, p.Name, families.Names())
		}
		return float64(code), nil
	case float64:
		v = x
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	default:
		return 0, fmt.Errorf("config parameter %q: unsupported value type %T", p.Name, raw)
	}

	if (p.Min != nil && v < *p.Min) || (p.Max != nil && v > *p.Max) || math.IsNaN(v) {
		return 0, &BoundsError{Name: p.Name, Value: v, Min: p.Min, Max: p.Max}
	}
	if p.DataType == "int" && v != math.Trunc(v) {
		return 0, fmt.Errorf("config parameter %q: %g is not an integer", p.Name, v)
	}
	if strings.HasSuffix(p.Name, FamilySuffix) && families != nil {
		if _, ok := nameForCode(families, int(v)); !ok {
			return 0, fmt.Errorf("%w: code %d for %q", ErrUnknownFamily, int(v), p.Name)
		}
	}

	out, err := datatype.Apply(p.InvTransform, v)
	if err != nil {
		return 0, fmt.Errorf("config parameter %q: %w", p.Name, err)
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, &BoundsError{Name: p.Name, Value: v, Min: p.Min, Max: p.Max}
	}
	return out, nil
}

func nameForCode(families FamilyIndex, code int) (string, bool) {
	for _, n := range families.Names() {
		if c, _ := families.Code(n); c == code {
			return n, true
		}
	}
	return "", false
}
