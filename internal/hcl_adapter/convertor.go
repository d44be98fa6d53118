package hcl_adapter

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// attributeMap evaluates an object or map expression without variables and
// returns its attributes by name. A missing or null expression is an empty
// map.
func attributeMap(expr hcl.Expression) (map[string]cty.Value, error) {
	if expr == nil {
		return map[string]cty.Value{}, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return map[string]cty.Value{}, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("expected an object, got %s", val.Type().FriendlyName())
	}
	out := map[string]cty.Value{}
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		out[k.AsString()] = v
	}
	return out, nil
}

// toFloat converts a known cty number into a float64.
func toFloat(val cty.Value) (float64, error) {
	var f float64
	if err := gocty.FromCtyValue(val, &f); err != nil {
		return 0, err
	}
	return f, nil
}

// toConfigValue converts a config attribute into a float64 or a string.
func toConfigValue(val cty.Value) (any, error) {
	switch {
	case val.IsNull():
		return nil, fmt.Errorf("null is not a valid config value")
	case val.Type() == cty.Number:
		return toFloat(val)
	case val.Type() == cty.String:
		return val.AsString(), nil
	}
	return nil, fmt.Errorf("expected a number or a string, got %s", val.Type().FriendlyName())
}

// toObservedValue converts an observation attribute; null marks an
// unrealized value.
func toObservedValue(val cty.Value) (*float64, error) {
	if val.IsNull() {
		return nil, nil
	}
	if val.Type() != cty.Number {
		return nil, fmt.Errorf("expected a number or null, got %s", val.Type().FriendlyName())
	}
	f, err := toFloat(val)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
