package model

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/likelihood"
	"github.com/specialistvlad/stapes/internal/parameter"
	"github.com/specialistvlad/stapes/internal/posterior"
	"github.com/specialistvlad/stapes/internal/registry"
)

// Fitted is a model bound to posterior samples. Each Fitted owns its own
// forecast caches, so draws for unseen factor levels are stable for its
// lifetime and independent of other instances.
type Fitted struct {
	ID       uuid.UUID
	model    *Model
	params   map[string]parameter.Parameter
	families *registry.Families
	draws    int
}

// AttachOption customises Attach.
type AttachOption func(*Fitted)

// WithFamilies sets the distribution family table used by Predict.
func WithFamilies(f *registry.Families) AttachOption {
	return func(fit *Fitted) { fit.families = f }
}

// Attach binds samples to every parameter.
func (m *Model) Attach(samples posterior.SampleSet, opts ...AttachOption) (*Fitted, error) {
	draws, err := samples.Draws()
	if err != nil {
		return nil, err
	}
	f := &Fitted{
		ID:       uuid.New(),
		model:    m,
		params:   make(map[string]parameter.Parameter, len(m.params)),
		families: registry.Default(),
		draws:    draws,
	}
	for _, opt := range opts {
		opt(f)
	}
	for _, p := range m.params {
		fitted, err := p.WithSamples(samples)
		if err != nil {
			return nil, err
		}
		f.params[p.Name()] = fitted
	}
	return f, nil
}

// Model returns the model the samples are bound to.
func (f *Fitted) Model() *Model { return f.model }

// Draws is the number of posterior draws.
func (f *Fitted) Draws() int { return f.draws }

// Families is the family table used by Predict.
func (f *Fitted) Families() *registry.Families { return f.families }

// Predict draws forecast variates of a target variable at a cell.
func (f *Fitted) Predict(variable string, src rand.Source, family string, data likelihood.Data, at dataset.Cell) ([]float64, error) {
	l, ok := f.model.Likelihood(variable)
	if !ok {
		return nil, fmt.Errorf("no likelihood for variable %q", variable)
	}
	return l.Predict(f.params, src, f.draws, family, f.families, data, at)
}
