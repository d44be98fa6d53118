package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/stapes/internal/config"
	"github.com/specialistvlad/stapes/internal/ctxlog"
	"github.com/specialistvlad/stapes/internal/forecast"
	"github.com/specialistvlad/stapes/internal/fsutil"
	"github.com/specialistvlad/stapes/internal/model"
	"github.com/specialistvlad/stapes/internal/posterior"
)

var (
	// ErrNoForecast is returned when a run file has no forecast block.
	ErrNoForecast = errors.New("run file has no forecast block")
	// ErrNotTarget is returned when the forecast variable has no likelihood.
	ErrNotTarget = errors.New("forecast variable is not modelled")
)

// sampleExtensions are picked up when a sample path is a directory.
var sampleExtensions = []string{".csv", ".yaml", ".yml"}

// ReadSamples reads one sample file per chain and merges them in path order.
// Files ending in .csv are read as CmdStan output, everything else as YAML.
// A directory stands for every sample file below it.
func ReadSamples(ctx context.Context, paths []string) (posterior.SampleSet, error) {
	files, err := fsutil.ExpandPaths(paths, sampleExtensions...)
	if err != nil {
		return nil, fmt.Errorf("locating samples: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no sample files given")
	}

	sets := make([]posterior.SampleSet, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			set, err := readSampleFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Samples read.", "files", len(files))
	return posterior.Merge(sets...)
}

func readSampleFile(path string) (posterior.SampleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return posterior.ReadStanCSV(f)
	}
	return posterior.ReadYAML(f)
}

// Forecast loads a run file, binds the samples and completes the triangle
// requested by the run file's forecast block. A non-nil seed overrides the
// block's seed.
func (a *App) Forecast(ctx context.Context, runPath string, samplePaths []string, seed *uint64) (*forecast.Report, error) {
	ctx = a.Context(ctx)
	logger := ctxlog.FromContext(ctx)

	s, err := a.Load(ctx, runPath)
	if err != nil {
		return nil, err
	}
	if s.Run.Forecast == nil {
		return nil, fmt.Errorf("%s: %w", runPath, ErrNoForecast)
	}
	variable := s.Run.Forecast.Variable
	if targets := s.Model.Targets(); !slices.Contains(targets, variable) {
		return nil, fmt.Errorf("%s: %w: %q, modelled: %s", runPath, ErrNotTarget, variable, strings.Join(targets, ", "))
	}
	samples, err := ReadSamples(ctx, samplePaths)
	if err != nil {
		return nil, err
	}
	fit, err := s.Model.Attach(samples, model.WithFamilies(a.families))
	if err != nil {
		return nil, err
	}
	logger.Debug("Samples attached.", "fit_id", fit.ID.String(), "draws", fit.Draws())

	family, err := a.familyOf(s, variable)
	if err != nil {
		return nil, err
	}
	req := forecast.Request{
		Variable:       variable,
		Family:         family,
		MaxDevelopment: s.Run.Forecast.MaxDevelopment,
		Seed:           s.Run.Forecast.Seed,
	}
	if seed != nil {
		req.Seed = *seed
	}

	engine := forecast.NewEngine(fit)
	res, err := engine.Run(ctx, s.Data, req)
	if err != nil {
		return nil, err
	}
	return engine.Report(res), nil
}

// familyOf reads the resolved family knob of a target variable.
func (a *App) familyOf(s *Session, variable string) (string, error) {
	code, ok := s.Config[variable+config.FamilySuffix]
	if !ok {
		return "", fmt.Errorf("variable %q is not modelled", variable)
	}
	fam, err := a.families.ByCode(int(code))
	if err != nil {
		return "", err
	}
	return fam.Name, nil
}
