package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/stapes/internal/config"
	"github.com/specialistvlad/stapes/internal/ctxlog"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL run file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses a run file, reads the model source it points at (relative to
// the run file) and translates everything into the format-agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Run, error) {
	logger := ctxlog.FromContext(ctx).With("path", path)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("HCL loader started.")

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root runFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	if len(root.Models) != 1 {
		return nil, fmt.Errorf("%s: expected exactly one model block, found %d", path, len(root.Models))
	}
	if len(root.Forecasts) > 1 {
		return nil, fmt.Errorf("%s: expected at most one forecast block, found %d", path, len(root.Forecasts))
	}

	run := &config.Run{}
	var err error
	run.Model, err = l.translateModel(ctx, filepath.Dir(path), root.Models[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	seen := map[[3]int]bool{}
	for _, ob := range root.Observations {
		obs, err := l.translateObservation(ob)
		if err != nil {
			return nil, fmt.Errorf("%s: observation at %s: %w", path, ob.DeclRange, err)
		}
		key := [3]int{obs.Slice, obs.Experience, obs.Development}
		if seen[key] {
			return nil, fmt.Errorf("%s: observation at %s: cell (%d, %d, %d) given more than once", path, ob.DeclRange, key[0], key[1], key[2])
		}
		seen[key] = true
		run.Observations = append(run.Observations, obs)
	}

	if len(root.Forecasts) == 1 {
		f := root.Forecasts[0]
		if f.MaxDevelopment < 1 {
			return nil, fmt.Errorf("%s: forecast max_development must be at least 1, got %d", path, f.MaxDevelopment)
		}
		run.Forecast = &config.ForecastSpec{Variable: f.Variable, MaxDevelopment: f.MaxDevelopment, Seed: f.Seed}
	}

	logger.Debug("HCL loading complete.", "model", run.Model.Name, "observations", len(run.Observations), "forecast", run.Forecast != nil)
	return run, nil
}

func (l *Loader) translateModel(ctx context.Context, dir string, m *modelBlock) (*config.ModelSource, error) {
	srcPath := m.Source
	if !filepath.IsAbs(srcPath) {
		srcPath = filepath.Join(dir, srcPath)
	}
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("model %q: reading source: %w", m.Name, err)
	}

	out := &config.ModelSource{Name: m.Name, Path: srcPath, Source: string(src), Config: map[string]any{}}
	if !isExprDefined(ctx, m.Config, "config") {
		return out, nil
	}
	attrs, err := attributeMap(m.Config)
	if err != nil {
		return nil, fmt.Errorf("model %q: config: %w", m.Name, err)
	}
	for _, name := range sortedKeys(attrs) {
		v, err := toConfigValue(attrs[name])
		if err != nil {
			return nil, fmt.Errorf("model %q: config %q: %w", m.Name, name, err)
		}
		out.Config[name] = v
	}
	return out, nil
}

func (l *Loader) translateObservation(ob *observationBlock) (*config.Observation, error) {
	obs := &config.Observation{
		Slice:       ob.Slice,
		Experience:  ob.Experience,
		Development: ob.Development,
		Values:      map[string]*float64{},
	}
	if obs.Slice == 0 {
		obs.Slice = 1
	}
	if obs.Slice < 1 || obs.Experience < 1 || obs.Development < 1 {
		return nil, fmt.Errorf("cell coordinates must be positive")
	}
	attrs, err := attributeMap(ob.Values)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	for _, name := range sortedKeys(attrs) {
		v, err := toObservedValue(attrs[name])
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", name, err)
		}
		obs.Values[name] = v
	}
	return obs, nil
}
