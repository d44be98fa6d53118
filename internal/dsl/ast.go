package dsl

import (
	"fmt"
	"sort"
	"strings"
)

// Pos is a 1-based source location.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Expr is implemented by every expression node. The set of implementations is
// closed: Literal, VariableRef, ParameterRef, Operation and Call.
type Expr interface {
	Position() Pos
	String() string
	expr()
}

// Literal is a numeric constant.
type Literal struct {
	Pos   Pos
	Value float64
}

// Modifier shifts a variable reference one step back along one axis.
type Modifier string

const (
	PrevDev Modifier = "prev_dev"
	PrevExp Modifier = "prev_exp"
)

// VariableRef reads a data variable at the target cell, shifted by its
// modifiers. Modifiers are kept sorted.
type VariableRef struct {
	Pos       Pos
	Name      string
	Modifiers []Modifier
}

// ParameterRef references a model parameter by its bare name.
type ParameterRef struct {
	Pos  Pos
	Name string
}

// Operation applies a unary (one operand) or binary (two operands) operator.
type Operation struct {
	Pos      Pos
	Operator string
	Operands []Expr
}

// Call applies one of the built-in functions to a single argument.
type Call struct {
	Pos      Pos
	Function string
	Arg      Expr
}

func (e *Literal) Position() Pos      { return e.Pos }
func (e *VariableRef) Position() Pos  { return e.Pos }
func (e *ParameterRef) Position() Pos { return e.Pos }
func (e *Operation) Position() Pos    { return e.Pos }
func (e *Call) Position() Pos         { return e.Pos }

func (*Literal) expr()      {}
func (*VariableRef) expr()  {}
func (*ParameterRef) expr() {}
func (*Operation) expr()    {}
func (*Call) expr()         {}

func (e *Literal) String() string { return formatNumber(e.Value) }

func (e *VariableRef) String() string {
	if len(e.Modifiers) == 0 {
		return e.Name
	}
	mods := make([]string, len(e.Modifiers))
	for i, m := range e.Modifiers {
		mods[i] = string(m)
	}
	return e.Name + "[" + strings.Join(mods, ", ") + "]"
}

func (e *ParameterRef) String() string { return "$" + e.Name }

func (e *Operation) String() string {
	if len(e.Operands) == 1 {
		return "(" + e.Operator + e.Operands[0].String() + ")"
	}
	return "(" + e.Operands[0].String() + " " + e.Operator + " " + e.Operands[1].String() + ")"
}

func (e *Call) String() string { return e.Function + "(" + e.Arg.String() + ")" }

// Offset returns the lag accumulated by the reference's modifiers.
func (e *VariableRef) Offset() Offset {
	var o Offset
	for _, m := range e.Modifiers {
		switch m {
		case PrevExp:
			o.Experience++
		case PrevDev:
			o.Development++
		}
	}
	return o
}

// Offset is a backwards shift along the experience and development axes.
type Offset struct {
	Experience  int
	Development int
}

// IsZero reports whether the offset is the identity shift.
func (o Offset) IsZero() bool { return o.Experience == 0 && o.Development == 0 }

// Name is the identifier of the offset's lookup array in generated code.
func (o Offset) Name() string {
	return "Lag" + strings.Repeat("T", o.Experience) + strings.Repeat("D", o.Development)
}

// Less orders offsets by experience, then development.
func (o Offset) Less(other Offset) bool {
	if o.Experience != other.Experience {
		return o.Experience < other.Experience
	}
	return o.Development < other.Development
}

// SortOffsets sorts offsets in place and returns them.
func SortOffsets(offsets []Offset) []Offset {
	sort.Slice(offsets, func(i, j int) bool { return offsets[i].Less(offsets[j]) })
	return offsets
}

// Aspect selects which moment of a variable a statement defines.
type Aspect string

const (
	Mean     Aspect = "mean"
	Variance Aspect = "variance"
)

// Likelihood binds one aspect of a target variable to an expression.
type Likelihood struct {
	Pos      Pos
	Variable string
	Aspect   Aspect
	Value    Expr
}

// ParamSpec declares a parameter's domain and construction.
type ParamSpec struct {
	Pos      Pos
	Name     string
	DataType string
	// Kind is empty for a plain scalar.
	Kind string
	Args map[string]string
}

// Model is the parsed form of a source file, in source order.
type Model struct {
	Params      []*ParamSpec
	Likelihoods []*Likelihood
}

// Functions is the set of built-in one-argument functions.
var Functions = map[string]bool{
	"log":       true,
	"sqrt":      true,
	"exp":       true,
	"logit":     true,
	"inv_logit": true,
}

func formatNumber(v float64) string {
	s := fmt.Sprintf("%g", v)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// FormatNumber renders a literal so that it is always read back as a real.
func FormatNumber(v float64) string { return formatNumber(v) }
