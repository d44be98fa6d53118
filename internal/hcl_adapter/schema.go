package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// runFile decodes every top-level block a run file may hold.
type runFile struct {
	Models       []*modelBlock       `hcl:"model,block"`
	Observations []*observationBlock `hcl:"observation,block"`
	Forecasts    []*forecastBlock    `hcl:"forecast,block"`
}

type modelBlock struct {
	Name   string         `hcl:"name,label"`
	Source string         `hcl:"source"`
	Config hcl.Expression `hcl:"config,optional"`
}

type observationBlock struct {
	Slice       int            `hcl:"slice,optional"`
	Experience  int            `hcl:"experience"`
	Development int            `hcl:"development"`
	Values      hcl.Expression `hcl:"values"`
	DeclRange   hcl.Range      `hcl:",def_range"`
}

type forecastBlock struct {
	Variable       string `hcl:"variable"`
	MaxDevelopment int    `hcl:"max_development"`
	Seed           uint64 `hcl:"seed,optional"`
}
