package dataset

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/stapes/internal/dsl"
)

// Payload is the data handed to the sampler, keyed by the names declared
// in the generated program's data block.
type Payload map[string]any

// Names returns the payload keys, sorted.
func (p Payload) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BuildPayload lays the dataset out for the given offsets and variables.
func BuildPayload(d *Dataset, offsets []dsl.Offset, variables []string) (Payload, *Index, error) {
	ix := BuildIndex(d, offsets)
	if len(ix.Core) == 0 {
		return nil, nil, ErrEmptyCore
	}

	p := Payload{
		"N": len(ix.Core),
		"T": len(ix.Full),
	}
	for _, o := range offsets {
		if o.IsZero() {
			continue
		}
		lookup, err := ix.Lookup(o)
		if err != nil {
			return nil, nil, err
		}
		p[o.Name()] = lookup
	}

	maxSlice := d.MaxSlice()
	for _, name := range variables {
		if !IsIndexVariable(name) {
			arr := ix.Variable(d, name)
			p[name+"__raw"] = arr.Raw
			p[name+"__num_missing"] = len(arr.Missing)
			p[name+"__missing_ids"] = arr.Missing
			continue
		}

		ids := make([]int, len(ix.Core))
		count := 0
		for i, c := range ix.Core {
			id, err := d.indexAt(name, c, maxSlice)
			if err != nil {
				return nil, nil, fmt.Errorf("index variable: %w", err)
			}
			ids[i] = id
			count = max(count, id)
		}
		p[name] = ids
		p[name+"__count"] = count
	}
	return p, ix, nil
}
