// Package posterior holds fitted draws keyed by generated-program names, and
// maps those names to and from parameter-scoped keys.
//
// A sample named exactly like a parameter P is P's primary array and is
// scoped as "..". A sample named "P__field" is scoped as ".field".
package posterior

import (
	"fmt"
	"sort"
	"strings"
)

// PrimaryKey is the scoped key of a parameter's own draws.
const PrimaryKey = ".."

// Samples holds draws as [draw][component].
type Samples [][]float64

// Draws is the number of draws.
func (s Samples) Draws() int { return len(s) }

// Width is the number of components per draw.
func (s Samples) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Column returns component k (0-based) across draws.
func (s Samples) Column(k int) []float64 {
	out := make([]float64, len(s))
	for i, d := range s {
		out[i] = d[k]
	}
	return out
}

// SampleSet maps names to draws.
type SampleSet map[string]Samples

// Names returns the sample names, sorted.
func (s SampleSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Draws returns the common draw count, or an error when sets disagree.
func (s SampleSet) Draws() (int, error) {
	n := -1
	for _, name := range s.Names() {
		d := s[name].Draws()
		if n >= 0 && d != n {
			return 0, fmt.Errorf("sample %q has %d draws, expected %d", name, d, n)
		}
		n = d
	}
	return max(n, 0), nil
}

// Demunge maps a program name to the key scoped to parameter param.
func Demunge(param, name string) (string, bool) {
	if name == param {
		return PrimaryKey, true
	}
	if field, ok := strings.CutPrefix(name, param+"__"); ok && field != "" {
		return "." + field, true
	}
	return "", false
}

// Munge is the inverse of Demunge.
func Munge(param, key string) string {
	if key == PrimaryKey {
		return param
	}
	return param + "__" + strings.TrimPrefix(key, ".")
}

// Scoped returns the samples belonging to param, keyed by scoped key.
func (s SampleSet) Scoped(param string) SampleSet {
	out := SampleSet{}
	for name, samples := range s {
		if key, ok := Demunge(param, name); ok {
			out[key] = samples
		}
	}
	return out
}

// Merge concatenates the draws of several sets, e.g. one per chain. Every
// set must carry the same names.
func Merge(sets ...SampleSet) (SampleSet, error) {
	if len(sets) == 0 {
		return SampleSet{}, nil
	}
	out := SampleSet{}
	names := sets[0].Names()
	for i, set := range sets {
		if got := set.Names(); strings.Join(got, ",") != strings.Join(names, ",") {
			return nil, fmt.Errorf("sample set %d has names %v, expected %v", i, got, names)
		}
		for _, n := range names {
			out[n] = append(out[n], set[n]...)
		}
	}
	return out, nil
}
