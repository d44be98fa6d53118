// Package datatype describes the numeric domains a parameter or config knob
// can live in, and how each maps onto Stan declarations.
package datatype

import (
	"fmt"
	"math"
	"sort"
)

// DataType is one domain tag.
type DataType struct {
	Name     string
	StanType string
	// Transform maps an unconstrained value into the domain; empty means
	// identity. InvTransform is its inverse.
	Transform    string
	InvTransform string
	Min          *float64
	Max          *float64
	// BaseDefault is the default value of a config knob of this type.
	BaseDefault float64
}

func bound(v float64) *float64 { return &v }

var table = map[string]DataType{
	"real": {
		Name:        "real",
		StanType:    "real",
		BaseDefault: 0,
	},
	"pos": {
		Name:         "pos",
		StanType:     "real<lower=0>",
		Transform:    "exp",
		InvTransform: "log",
		Min:          bound(0),
		BaseDefault:  0,
	},
	"scale": {
		Name:        "scale",
		StanType:    "real<lower=0>",
		Min:         bound(0),
		BaseDefault: 1,
	},
	"unit": {
		Name:         "unit",
		StanType:     "real<lower=0, upper=1>",
		Transform:    "inv_logit",
		InvTransform: "logit",
		Min:          bound(0),
		Max:          bound(1),
		BaseDefault:  0,
	},
	"int": {
		Name:        "int",
		StanType:    "int<lower=1>",
		Min:         bound(1),
		Max:         bound(999999),
		BaseDefault: 1,
	},
}

// Lookup returns the data type registered under name.
func Lookup(name string) (DataType, error) {
	dt, ok := table[name]
	if !ok {
		return DataType{}, fmt.Errorf("unknown data type %q (known: %v)", name, Names())
	}
	return dt, nil
}

// Names lists the known domain tags, sorted.
func Names() []string {
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bounds renders the Stan constraint suffix for the domain, e.g. "<lower=0>".
func (d DataType) Bounds() string {
	switch {
	case d.Min != nil && d.Max != nil:
		return fmt.Sprintf("<lower=%s, upper=%s>", formatBound(*d.Min), formatBound(*d.Max))
	case d.Min != nil:
		return fmt.Sprintf("<lower=%s>", formatBound(*d.Min))
	case d.Max != nil:
		return fmt.Sprintf("<upper=%s>", formatBound(*d.Max))
	}
	return ""
}

// IsInteger reports whether the domain holds integers.
func (d DataType) IsInteger() bool { return d.Name == "int" }

// Apply evaluates a named transform on v. An empty name is the identity.
func Apply(fn string, v float64) (float64, error) {
	switch fn {
	case "":
		return v, nil
	case "exp":
		return math.Exp(v), nil
	case "log":
		return math.Log(v), nil
	case "inv_logit":
		return 1 / (1 + math.Exp(-v)), nil
	case "logit":
		return math.Log(v / (1 - v)), nil
	case "sqrt":
		return math.Sqrt(v), nil
	}
	return 0, fmt.Errorf("unknown transform %q", fn)
}

func formatBound(v float64) string {
	return fmt.Sprintf("%g", v)
}
