package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/specialistvlad/stapes/internal/config"
	"github.com/specialistvlad/stapes/internal/ctxlog"
	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/model"
)

// Session is a loaded run file: the compiled model, the observed triangle
// and the resolved config values.
type Session struct {
	Run    *config.Run
	Model  *model.Model
	Data   *dataset.Dataset
	Config map[string]float64
}

// Load reads a run file and everything it refers to.
func (a *App) Load(ctx context.Context, runPath string) (*Session, error) {
	ctx = a.Context(ctx)
	logger := ctxlog.FromContext(ctx)

	run, err := a.loader.Load(ctx, runPath)
	if err != nil {
		return nil, err
	}
	m, err := model.Build(run.Model.Source)
	if err != nil {
		return nil, fmt.Errorf("model %q (%s): %w", run.Model.Name, run.Model.Path, err)
	}
	values, err := m.ResolveConfig(run.Model.Config, a.families)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", run.Model.Name, err)
	}

	ds := Dataset(run.Observations)
	logger.Info("Run loaded.", "model", run.Model.Name, "cells", len(ds.Cells()), "values", ds.Len())
	return &Session{Run: run, Model: m, Data: ds, Config: values}, nil
}

// Dataset converts observations into a dataset. A nil value becomes an
// unrealized placeholder.
func Dataset(observations []*config.Observation) *dataset.Dataset {
	ds := dataset.New()
	for _, obs := range observations {
		c := dataset.Cell{Slice: obs.Slice, Experience: obs.Experience, Development: obs.Development}
		for name, v := range obs.Values {
			coord := dataset.Coordinate{Variable: name, Cell: c}
			if v == nil {
				ds.Set(coord, dataset.Unrealized())
				continue
			}
			ds.Set(coord, dataset.Observed(*v))
		}
	}
	return ds
}

// DataPayload loads a run file and builds the sampler's data.
func (a *App) DataPayload(ctx context.Context, runPath string) (dataset.Payload, error) {
	s, err := a.Load(ctx, runPath)
	if err != nil {
		return nil, err
	}
	payload, ix, err := s.Model.DataPayload(s.Data, s.Config)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(a.Context(ctx)).Info("Data payload built.", "core", len(ix.Core), "full", len(ix.Full), "entries", len(payload))
	return payload, nil
}

// WriteJSON writes a payload as indented JSON.
func WriteJSON(w io.Writer, payload dataset.Payload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
