package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/stapes/internal/config"
	"github.com/specialistvlad/stapes/internal/dataset"
	"github.com/specialistvlad/stapes/internal/dsl"
	"github.com/specialistvlad/stapes/internal/likelihood"
	"github.com/specialistvlad/stapes/internal/parameter"
	"github.com/specialistvlad/stapes/internal/stem"
	"github.com/specialistvlad/stapes/internal/templates"
)

var (
	ErrMissingAspect   = errors.New("likelihood is missing an aspect")
	ErrDuplicateAspect = errors.New("likelihood aspect defined more than once")
	ErrUnusedParameter = errors.New("parameter is declared but never used")
	ErrNameClash       = errors.New("name is used more than once")
	ErrLaggedIndex     = errors.New("index variables cannot be lagged")
	ErrIndexTarget     = errors.New("index variables cannot be modelled")
)

// Model is a compiled model. It is immutable once built.
type Model struct {
	params      []parameter.Parameter
	byName      map[string]parameter.Parameter
	likelihoods []*likelihood.Likelihood
	offsets     []dsl.Offset
	variables   []string

	fragment stem.Fragment
	schema   []config.Parameter
	core     []string
}

// Build parses and assembles a model source.
func Build(src string) (*Model, error) {
	ast, err := dsl.Parse(src)
	if err != nil {
		return nil, err
	}
	return FromAST(ast)
}

// FromAST assembles a parsed model. Undeclared parameters become
// unconstrained scalars; every other inconsistency is an error.
func FromAST(ast *dsl.Model) (*Model, error) {
	m := &Model{byName: map[string]parameter.Parameter{}}

	if err := m.assembleLikelihoods(ast.Likelihoods); err != nil {
		return nil, err
	}
	if err := m.assembleParameters(ast.Params); err != nil {
		return nil, err
	}
	m.collectOffsetsAndVariables()
	if err := m.checkNames(); err != nil {
		return nil, err
	}
	if err := m.compile(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) assembleLikelihoods(stmts []*dsl.Likelihood) error {
	byVar := map[string]*likelihood.Likelihood{}
	for _, s := range stmts {
		if dataset.IsIndexVariable(s.Variable) {
			return fmt.Errorf("%s: %w: %s", s.Pos, ErrIndexTarget, s.Variable)
		}
		l, ok := byVar[s.Variable]
		if !ok {
			l = &likelihood.Likelihood{Variable: s.Variable}
			byVar[s.Variable] = l
			m.likelihoods = append(m.likelihoods, l)
		}
		slot := &l.Mean
		if s.Aspect == dsl.Variance {
			slot = &l.Variance
		}
		if *slot != nil {
			return fmt.Errorf("%s: %w: %s(%s)", s.Pos, ErrDuplicateAspect, s.Aspect, s.Variable)
		}
		*slot = s.Value

		if lagged := dsl.Fold(s.Value, laggedIndexFolder); len(lagged) > 0 {
			return fmt.Errorf("%s: %w: %s", lagged[0].Pos, ErrLaggedIndex, lagged[0])
		}
	}
	for _, l := range m.likelihoods {
		if l.Mean == nil {
			return fmt.Errorf("%w: mean(%s)", ErrMissingAspect, l.Variable)
		}
		if l.Variance == nil {
			return fmt.Errorf("%w: variance(%s)", ErrMissingAspect, l.Variable)
		}
	}
	return nil
}

var laggedIndexFolder = dsl.Folder[[]*dsl.VariableRef]{
	Literal: func(*dsl.Literal) []*dsl.VariableRef { return nil },
	Variable: func(v *dsl.VariableRef) []*dsl.VariableRef {
		if dataset.IsIndexVariable(v.Name) && !v.Offset().IsZero() {
			return []*dsl.VariableRef{v}
		}
		return nil
	},
	Parameter: func(*dsl.ParameterRef) []*dsl.VariableRef { return nil },
	Merge:     func(a, b []*dsl.VariableRef) []*dsl.VariableRef { return append(a, b...) },
}

func (m *Model) assembleParameters(specs []*dsl.ParamSpec) error {
	used := map[string]bool{}
	for _, l := range m.likelihoods {
		for _, name := range l.Parameters() {
			used[name] = true
		}
	}

	for _, spec := range specs {
		if !used[spec.Name] {
			return fmt.Errorf("%s: %w: $%s", spec.Pos, ErrUnusedParameter, spec.Name)
		}
		p, err := parameter.New(spec)
		if err != nil {
			return fmt.Errorf("%s: %w", spec.Pos, err)
		}
		m.add(p)
	}

	var implicit []string
	for name := range used {
		if _, ok := m.byName[name]; !ok {
			implicit = append(implicit, name)
		}
	}
	sort.Strings(implicit)
	for _, name := range implicit {
		m.add(parameter.Implicit(name))
	}
	return nil
}

func (m *Model) add(p parameter.Parameter) {
	m.params = append(m.params, p)
	m.byName[p.Name()] = p
}

func (m *Model) collectOffsetsAndVariables() {
	offsets := map[dsl.Offset]struct{}{{}: {}}
	vars := map[string]struct{}{}
	for _, l := range m.likelihoods {
		vars[l.Variable] = struct{}{}
		for _, o := range l.Offsets() {
			offsets[o] = struct{}{}
		}
		for _, v := range l.Variables() {
			vars[v] = struct{}{}
		}
	}
	for _, p := range m.params {
		for _, v := range p.Variables() {
			vars[v] = struct{}{}
		}
	}

	for o := range offsets {
		m.offsets = append(m.offsets, o)
	}
	dsl.SortOffsets(m.offsets)
	for v := range vars {
		m.variables = append(m.variables, v)
	}
	sort.Strings(m.variables)
}

func (m *Model) checkNames() error {
	for _, v := range m.variables {
		if _, ok := m.byName[v]; ok {
			return fmt.Errorf("%w: %q is both a variable and a parameter", ErrNameClash, v)
		}
	}
	return nil
}

// compile expands every template once, in program order.
func (m *Model) compile() error {
	var results []*stem.Result
	expand := func(name, ns string, env stem.Env) error {
		res, err := templates.Expand(name, ns, env)
		if err != nil {
			return err
		}
		results = append(results, res)
		return nil
	}

	if err := expand(templates.Preamble, "", nil); err != nil {
		return err
	}
	for _, o := range m.offsets {
		if o.IsZero() {
			continue
		}
		if err := expand(templates.Offset, o.Name(), nil); err != nil {
			return err
		}
	}
	for _, v := range m.variables {
		tmpl := templates.Value
		if dataset.IsIndexVariable(v) {
			tmpl = templates.Index
		}
		if err := expand(tmpl, v, nil); err != nil {
			return fmt.Errorf("variable %s: %w", v, err)
		}
	}
	for _, p := range m.params {
		res, err := p.Stem()
		if err != nil {
			return fmt.Errorf("parameter $%s: %w", p.Name(), err)
		}
		results = append(results, res)
	}
	for _, l := range m.likelihoods {
		res, err := l.Stem(m.byName)
		if err != nil {
			return fmt.Errorf("likelihood %s: %w", l.Variable, err)
		}
		results = append(results, res)
	}

	seen := map[string]bool{}
	fragments := make([]stem.Fragment, 0, len(results))
	for _, res := range results {
		fragments = append(fragments, res.Fragment)
		for _, c := range res.ConfigParameters {
			if seen[c.Name] {
				return fmt.Errorf("%w: %q", ErrNameClash, c.Name)
			}
			seen[c.Name] = true
			m.schema = append(m.schema, c)
		}
		for _, c := range res.CoreParameters {
			if seen[c] {
				return fmt.Errorf("%w: %q", ErrNameClash, c)
			}
			seen[c] = true
			m.core = append(m.core, c)
		}
	}
	m.fragment = stem.Compose(fragments...)
	return nil
}

// Offsets returns the lag offsets, the zero offset first.
func (m *Model) Offsets() []dsl.Offset { return m.offsets }

// Variables returns the data variables the model reads, sorted.
func (m *Model) Variables() []string { return m.variables }

// Parameters returns the parameters: declared ones in source order, then
// implicit ones by name.
func (m *Model) Parameters() []parameter.Parameter { return m.params }

// Parameter finds a parameter by name.
func (m *Model) Parameter(name string) (parameter.Parameter, bool) {
	p, ok := m.byName[name]
	return p, ok
}

// Likelihoods returns the likelihoods in order of first appearance.
func (m *Model) Likelihoods() []*likelihood.Likelihood { return m.likelihoods }

// Likelihood finds the likelihood of a target variable.
func (m *Model) Likelihood(variable string) (*likelihood.Likelihood, bool) {
	for _, l := range m.likelihoods {
		if l.Variable == variable {
			return l, true
		}
	}
	return nil, false
}

// Targets returns the modelled variables in likelihood order.
func (m *Model) Targets() []string {
	out := make([]string, len(m.likelihoods))
	for i, l := range m.likelihoods {
		out[i] = l.Variable
	}
	return out
}

// ConfigParameters is the model's config schema.
func (m *Model) ConfigParameters() []config.Parameter { return m.schema }

// CoreParameters are the sampled quantities a fit reports.
func (m *Model) CoreParameters() []string { return m.core }

// StanCode is the composed program fragment.
func (m *Model) StanCode() stem.Fragment { return m.fragment }

// Program renders the complete program text.
func (m *Model) Program() string { return m.fragment.Render(templates.Functions()) }

// ResolveConfig validates user supplied config values against the schema
// and fills in defaults.
func (m *Model) ResolveConfig(values map[string]any, families config.FamilyIndex) (map[string]float64, error) {
	return config.Resolve(m.schema, values, families)
}

// DataPayload builds the program's data from a dataset and resolved config
// values.
func (m *Model) DataPayload(ds *dataset.Dataset, values map[string]float64) (dataset.Payload, *dataset.Index, error) {
	payload, ix, err := dataset.BuildPayload(ds, m.offsets, m.variables)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range m.schema {
		v, ok := values[c.Name]
		if !ok {
			return nil, nil, fmt.Errorf("config value %q not resolved", c.Name)
		}
		if c.DataType == "int" {
			payload[c.Name] = int(v)
			continue
		}
		payload[c.Name] = v
	}
	return payload, ix, nil
}
