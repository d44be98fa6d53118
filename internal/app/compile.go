package app

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/stapes/internal/ctxlog"
	"github.com/specialistvlad/stapes/internal/dsl"
	"github.com/specialistvlad/stapes/internal/model"
)

// Parse reads and parses a model source file.
func (a *App) Parse(ctx context.Context, path string) (*dsl.Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	ast, err := dsl.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ctxlog.FromContext(a.Context(ctx)).Debug("Model parsed.", "path", path, "params", len(ast.Params), "statements", len(ast.Likelihoods))
	return ast, nil
}

// Compile reads and compiles a model source file.
func (a *App) Compile(ctx context.Context, path string) (*model.Model, error) {
	ast, err := a.Parse(ctx, path)
	if err != nil {
		return nil, err
	}
	m, err := model.FromAST(ast)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ctxlog.FromContext(a.Context(ctx)).Info("Model compiled.",
		"path", path,
		"parameters", len(m.Parameters()),
		"variables", m.Variables(),
		"offsets", len(m.Offsets()),
	)
	return m, nil
}
