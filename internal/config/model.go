package config

// Run is the unified, format-agnostic representation of a run file.
type Run struct {
	Model        *ModelSource
	Observations []*Observation
	Forecast     *ForecastSpec
}

// ModelSource names a model and carries its source text.
type ModelSource struct {
	Name   string
	Path   string
	Source string
	// Config holds user supplied knob values, either float64 or string
	// (family names).
	Config map[string]any
}

// Observation is one triangle cell. A nil value marks a variable that is
// intentionally unrealized at this cell.
type Observation struct {
	Slice       int
	Experience  int
	Development int
	Values      map[string]*float64
}

// ForecastSpec asks for the triangle of Variable to be completed up to
// MaxDevelopment.
type ForecastSpec struct {
	Variable       string
	MaxDevelopment int
	Seed           uint64
}
