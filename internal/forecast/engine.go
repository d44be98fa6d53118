package forecast

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/specialistvlad/stapes/internal/ctxlog"
	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/model"
)

// stream is the PCG stream used for every run; the seed alone selects the
// sequence.
const stream = 0x9e3779b97f4a7c15

// Request selects what to forecast.
type Request struct {
	Variable       string
	Family         string
	MaxDevelopment int
	Seed           uint64
}

// CellForecast holds the draws predicted for one cell.
type CellForecast struct {
	Cell  dataset.Cell
	Draws []float64
	// After lists the forecast cells whose draws this cell read.
	After []dataset.Cell
}

// Result is the outcome of Engine.Run.
type Result struct {
	Request Request
	Cells   []CellForecast
	// Data is a copy of the input with every forecast written in.
	Data *dataset.Dataset
}

// Engine forecasts with one fitted model.
type Engine struct {
	fitted *model.Fitted
}

// NewEngine creates an engine for a fitted model.
func NewEngine(fitted *model.Fitted) *Engine {
	return &Engine{fitted: fitted}
}

// Run forecasts every completion target of the requested variable. The
// input dataset is not modified. Cancellation is checked between cells.
func (e *Engine) Run(ctx context.Context, data *dataset.Dataset, req Request) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	l, ok := e.fitted.Model().Likelihood(req.Variable)
	if !ok {
		return nil, fmt.Errorf("no likelihood for variable %q", req.Variable)
	}
	if _, err := e.fitted.Families().Lookup(req.Family); err != nil {
		return nil, err
	}

	plan, err := order(l, CompletionTargets(data, req.Variable, req.MaxDevelopment))
	if err != nil {
		return nil, err
	}
	logger.Info("Forecast plan ready.", "variable", req.Variable, "family", req.Family, "cells", len(plan))

	out := data.Clone()
	src := rand.NewPCG(req.Seed, stream)
	res := &Result{Request: req, Data: out}
	for _, s := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := s.cell
		draws, err := e.fitted.Predict(req.Variable, src, req.Family, out, c)
		if err != nil {
			return nil, fmt.Errorf("forecasting %s at %s: %w", req.Variable, c, err)
		}
		out.Set(dataset.Coordinate{Variable: req.Variable, Cell: c}, dataset.Forecast(draws))
		res.Cells = append(res.Cells, CellForecast{Cell: c, Draws: draws, After: s.after})
		logger.Debug("Cell forecast.", "cell", c.String(), "draws", len(draws), "after", len(s.after))
	}

	logger.Info("Forecast finished.", "variable", req.Variable, "cells", len(res.Cells))
	return res, nil
}

// Report summarises a result.
func (e *Engine) Report(res *Result) *Report {
	rep := &Report{
		FitID:    e.fitted.ID.String(),
		Variable: res.Request.Variable,
		Family:   res.Request.Family,
		Draws:    e.fitted.Draws(),
	}
	for _, c := range res.Cells {
		s := Summarize(c.Cell, c.Draws)
		for _, a := range c.After {
			s.After = append(s.After, a.String())
		}
		rep.Cells = append(rep.Cells, s)
	}
	return rep
}
