package dataset

import (
	"fmt"

	"github.com/specialistvlad/stapes/internal/dsl"
)

// Index assigns every cell of a dataset a stable 1-based position. Core
// cells, whose every lagged cell exists, come first in sorted order,
// followed by the remaining cells in sorted order.
type Index struct {
	Core    []Cell
	Full    []Cell
	offsets []dsl.Offset
	pos     map[Cell]int
}

// BuildIndex computes the core and full index for the given offsets.
func BuildIndex(d *Dataset, offsets []dsl.Offset) *Index {
	raw := d.Cells()
	present := make(map[Cell]struct{}, len(raw))
	for _, c := range raw {
		present[c] = struct{}{}
	}

	ix := &Index{offsets: offsets, pos: make(map[Cell]int, len(raw))}
	var rest []Cell
	for _, c := range raw {
		if hasLags(c, offsets, present) {
			ix.Core = append(ix.Core, c)
		} else {
			rest = append(rest, c)
		}
	}
	ix.Full = append(append(make([]Cell, 0, len(raw)), ix.Core...), rest...)
	for i, c := range ix.Full {
		ix.pos[c] = i + 1
	}
	return ix
}

func hasLags(c Cell, offsets []dsl.Offset, present map[Cell]struct{}) bool {
	for _, o := range offsets {
		if _, ok := present[c.Shift(o)]; !ok {
			return false
		}
	}
	return true
}

// Lookup returns, for each core cell, the full position of the cell the
// offset points to. The zero offset has no table.
func (ix *Index) Lookup(o dsl.Offset) ([]int, error) {
	if o.IsZero() {
		return nil, fmt.Errorf("the zero offset has no lookup table")
	}
	out := make([]int, len(ix.Core))
	for i, c := range ix.Core {
		p, ok := ix.pos[c.Shift(o)]
		if !ok {
			return nil, fmt.Errorf("offset %s: cell %s has no lagged cell %s", o.Name(), c, c.Shift(o))
		}
		out[i] = p
	}
	return out, nil
}

// VariableArray is a value variable laid out over the full index.
type VariableArray struct {
	Raw []float64
	// Missing lists the 1-based positions without an observed value.
	Missing []int
}

// Variable lays out a value variable over the full index. Unrealized and
// forecast values are treated as missing.
func (ix *Index) Variable(d *Dataset, name string) VariableArray {
	arr := VariableArray{Raw: make([]float64, len(ix.Full)), Missing: []int{}}
	for i, c := range ix.Full {
		v, ok := d.Get(Coordinate{Variable: name, Cell: c})
		if ok && v.IsObserved() {
			arr.Raw[i] = v.Number()
			continue
		}
		arr.Missing = append(arr.Missing, i+1)
	}
	return arr
}
