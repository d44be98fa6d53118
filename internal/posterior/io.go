package posterior

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadYAML reads a mapping of name to draws. Each value is either a list of
// numbers (one component per draw) or a list of lists.
func ReadYAML(r io.Reader) (SampleSet, error) {
	var raw map[string][]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return SampleSet{}, nil
		}
		return nil, fmt.Errorf("decoding samples: %w", err)
	}

	out := make(SampleSet, len(raw))
	for name, draws := range raw {
		samples := make(Samples, len(draws))
		for i, d := range draws {
			row, err := toRow(d)
			if err != nil {
				return nil, fmt.Errorf("sample %q draw %d: %w", name, i, err)
			}
			if i > 0 && len(row) != len(samples[0]) {
				return nil, fmt.Errorf("sample %q draw %d has %d components, expected %d", name, i, len(row), len(samples[0]))
			}
			samples[i] = row
		}
		out[name] = samples
	}
	return out, nil
}

func toRow(v any) ([]float64, error) {
	if list, ok := v.([]any); ok {
		row := make([]float64, len(list))
		for i, x := range list {
			f, err := toFloat(x)
			if err != nil {
				return nil, err
			}
			row[i] = f
		}
		return row, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return []float64{f}, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case float64:
		return x, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

// WriteYAML writes samples in the format ReadYAML reads.
func WriteYAML(w io.Writer, s SampleSet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]Samples(s)); err != nil {
		return fmt.Errorf("encoding samples: %w", err)
	}
	return enc.Close()
}

// ReadStanCSV reads a CmdStan output file. Comment lines are skipped,
// columns "name" and "name.k" are grouped into one sample, and sampler
// diagnostics (names ending in "__") are dropped.
func ReadStanCSV(r io.Reader) (SampleSet, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	type column struct {
		name string
		keep bool
	}
	cols := make([]column, len(header))
	var order []string
	width := map[string]int{}
	for i, h := range header {
		name, _, _ := strings.Cut(strings.TrimSpace(h), ".")
		cols[i] = column{name: name, keep: !strings.HasSuffix(name, "__")}
		if !cols[i].keep {
			continue
		}
		if width[name] == 0 {
			order = append(order, name)
		}
		width[name]++
	}

	out := SampleSet{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}
		rows := make(map[string][]float64, len(order))
		for i, field := range rec {
			if !cols[i].keep {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", line, header[i], err)
			}
			rows[cols[i].name] = append(rows[cols[i].name], v)
		}
		for _, name := range order {
			out[name] = append(out[name], rows[name])
		}
	}
	return out, nil
}
