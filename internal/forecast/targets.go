package forecast

import (
	"fmt"

	"github.com/specialistvlad/stapes/internal/dag"
	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/dsl"
	"github.com/specialistvlad/stapes/internal/likelihood"
)

// CompletionTargets returns the cells of variable to forecast, sorted. For
// each (slice, experience) row holding an observation, these are the cells
// after the row's first observed lag, up to maxDevelopment, that hold no
// observed or forecast value.
func CompletionTargets(ds *dataset.Dataset, variable string, maxDevelopment int) []dataset.Cell {
	type row struct{ slice, experience int }
	first := map[row]int{}
	for _, c := range ds.Cells() {
		v, ok := ds.Get(dataset.Coordinate{Variable: variable, Cell: c})
		if !ok || !v.IsObserved() {
			continue
		}
		r := row{c.Slice, c.Experience}
		if d, seen := first[r]; !seen || c.Development < d {
			first[r] = c.Development
		}
	}

	var out []dataset.Cell
	for r, from := range first {
		for d := from + 1; d <= maxDevelopment; d++ {
			c := dataset.Cell{Slice: r.slice, Experience: r.experience, Development: d}
			v, ok := ds.Get(dataset.Coordinate{Variable: variable, Cell: c})
			if ok && !v.IsUnrealized() {
				continue
			}
			out = append(out, c)
		}
	}
	dataset.SortCells(out)
	return out
}

// selfLags returns the offsets at which a likelihood reads its own target.
func selfLags(l *likelihood.Likelihood) []dsl.Offset {
	folder := dsl.Folder[[]dsl.Offset]{
		Literal: func(*dsl.Literal) []dsl.Offset { return nil },
		Variable: func(v *dsl.VariableRef) []dsl.Offset {
			if v.Name == l.Variable {
				return []dsl.Offset{v.Offset()}
			}
			return nil
		},
		Parameter: func(*dsl.ParameterRef) []dsl.Offset { return nil },
		Merge:     func(a, b []dsl.Offset) []dsl.Offset { return append(a, b...) },
	}
	return append(dsl.Fold(l.Mean, folder), dsl.Fold(l.Variance, folder)...)
}

// step is one planned cell and the targets it reads.
type step struct {
	cell  dataset.Cell
	after []dataset.Cell
}

// order sorts targets so that every cell comes after the targets it reads.
func order(l *likelihood.Likelihood, targets []dataset.Cell) ([]step, error) {
	g := dag.New()
	cells := make(map[string]dataset.Cell, len(targets))
	for _, c := range targets {
		id := c.String()
		cells[id] = c
		g.AddNode(id)
	}

	lags := selfLags(l)
	for _, o := range lags {
		if o.IsZero() {
			return nil, fmt.Errorf("likelihood of %s reads its own value at the target cell", l.Variable)
		}
	}
	for _, c := range targets {
		for _, o := range lags {
			from := c.Shift(o).String()
			if !g.HasNode(from) {
				continue
			}
			if err := g.AddEdge(from, c.String()); err != nil {
				return nil, err
			}
		}
	}

	ids, err := g.TopologicalOrder(func(a, b string) bool { return cells[a].Less(cells[b]) })
	if err != nil {
		return nil, err
	}
	out := make([]step, len(ids))
	for i, id := range ids {
		deps, err := g.Dependencies(id)
		if err != nil {
			return nil, err
		}
		s := step{cell: cells[id]}
		for _, dep := range deps {
			s.after = append(s.after, cells[dep])
		}
		dataset.SortCells(s.after)
		out[i] = s
	}
	return out, nil
}
