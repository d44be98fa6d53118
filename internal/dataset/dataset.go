// Package dataset stores sparse triangle data and turns it into the dense,
// stably ordered arrays the generated program consumes.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/stapes/internal/dsl"
	"github.com/specialistvlad/stapes/internal/numeric"
)

var (
	ErrMissingValue    = errors.New("no value")
	ErrUnrealizedValue = errors.New("value is unrealized")
	ErrEmptyCore       = errors.New("no cell has every lag it needs")
)

// Cell is one (slice, experience period, development lag) triple.
type Cell struct {
	Slice       int
	Experience  int
	Development int
}

// Shift moves the cell back by the offset.
func (c Cell) Shift(o dsl.Offset) Cell {
	return Cell{Slice: c.Slice, Experience: c.Experience - o.Experience, Development: c.Development - o.Development}
}

// Less orders cells lexicographically by slice, experience, development.
func (c Cell) Less(o Cell) bool {
	if c.Slice != o.Slice {
		return c.Slice < o.Slice
	}
	if c.Experience != o.Experience {
		return c.Experience < o.Experience
	}
	return c.Development < o.Development
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.Slice, c.Experience, c.Development)
}

// SortCells sorts cells in place.
func SortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
}

// Coordinate identifies one data point.
type Coordinate struct {
	Variable string
	Cell
}

type valueKind int

const (
	observed valueKind = iota
	unrealized
	forecast
)

// Value is an observed number, an intentionally unrealized placeholder or
// a forecast with one number per draw.
type Value struct {
	kind  valueKind
	num   float64
	draws []float64
}

func Observed(v float64) Value       { return Value{kind: observed, num: v} }
func Unrealized() Value              { return Value{kind: unrealized} }
func Forecast(draws []float64) Value { return Value{kind: forecast, draws: draws} }

func (v Value) IsObserved() bool   { return v.kind == observed }
func (v Value) IsUnrealized() bool { return v.kind == unrealized }
func (v Value) IsForecast() bool   { return v.kind == forecast }
func (v Value) Number() float64    { return v.num }
func (v Value) Draws() []float64   { return v.draws }

// Dataset maps coordinates to values.
type Dataset struct {
	values map[Coordinate]Value
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{values: make(map[Coordinate]Value)}
}

// Set stores a value, replacing any previous one.
func (d *Dataset) Set(c Coordinate, v Value) {
	d.values[c] = v
}

// Get returns the value stored at c.
func (d *Dataset) Get(c Coordinate) (Value, bool) {
	v, ok := d.values[c]
	return v, ok
}

// Len is the number of stored values.
func (d *Dataset) Len() int { return len(d.values) }

// Clone returns a shallow copy that can be extended independently.
func (d *Dataset) Clone() *Dataset {
	out := New()
	for k, v := range d.values {
		out.values[k] = v
	}
	return out
}

// Cells returns the distinct cells of every stored coordinate, sorted.
func (d *Dataset) Cells() []Cell {
	seen := make(map[Cell]struct{}, len(d.values))
	for c := range d.values {
		seen[c.Cell] = struct{}{}
	}
	cells := make([]Cell, 0, len(seen))
	for c := range seen {
		cells = append(cells, c)
	}
	SortCells(cells)
	return cells
}

// Variables returns the distinct variable names, sorted.
func (d *Dataset) Variables() []string {
	seen := map[string]struct{}{}
	for c := range d.values {
		seen[c.Variable] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MaxSlice is the largest slice id in the dataset.
func (d *Dataset) MaxSlice() int {
	m := 0
	for c := range d.values {
		if c.Slice > m {
			m = c.Slice
		}
	}
	return m
}

// IsIndexVariable reports whether a variable name denotes integer ids.
func IsIndexVariable(name string) bool { return strings.HasSuffix(name, "Id") }

// Builtin index variables derived from the cell itself.
var builtins = map[string]func(c Cell, maxSlice int) int{
	"TriangleId":          func(c Cell, _ int) int { return c.Slice },
	"ExpPeriodId":         func(c Cell, _ int) int { return c.Experience },
	"DevLagId":            func(c Cell, _ int) int { return c.Development },
	"TriangleExpPeriodId": func(c Cell, m int) int { return m*(c.Experience-1) + c.Slice },
	"TriangleDevLagId":    func(c Cell, m int) int { return m*(c.Development-1) + c.Slice },
}

// IndexAt returns the integer id of an index variable at a cell.
func (d *Dataset) IndexAt(name string, c Cell) (int, error) {
	return d.indexAt(name, c, d.MaxSlice())
}

func (d *Dataset) indexAt(name string, c Cell, maxSlice int) (int, error) {
	if fn, ok := builtins[name]; ok {
		return fn(c, maxSlice), nil
	}
	v, ok := d.values[Coordinate{Variable: name, Cell: c}]
	switch {
	case !ok:
		return 0, fmt.Errorf("%s at %s: %w", name, c, ErrMissingValue)
	case !v.IsObserved():
		return 0, fmt.Errorf("%s at %s: index variables must be observed", name, c)
	case v.num < 1 || v.num != float64(int(v.num)):
		return 0, fmt.Errorf("%s at %s: %g is not a positive integer id", name, c, v.num)
	}
	return int(v.num), nil
}

// Resolve returns the value of a variable at a cell for evaluation.
func (d *Dataset) Resolve(name string, c Cell) (numeric.Value, error) {
	if IsIndexVariable(name) {
		id, err := d.IndexAt(name, c)
		if err != nil {
			return numeric.Value{}, err
		}
		return numeric.Scalar(float64(id)), nil
	}
	v, ok := d.values[Coordinate{Variable: name, Cell: c}]
	switch {
	case !ok:
		return numeric.Value{}, fmt.Errorf("%s at %s: %w", name, c, ErrMissingValue)
	case v.IsUnrealized():
		return numeric.Value{}, fmt.Errorf("%s at %s: %w", name, c, ErrUnrealizedValue)
	case v.IsForecast():
		return numeric.Draws(v.draws), nil
	}
	return numeric.Scalar(v.num), nil
}
