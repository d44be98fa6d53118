package dsl

import "sort"

// Folder supplies the leaf cases of a fold over an expression tree. Calls
// are transparent and operations combine their operands with Merge.
type Folder[T any] struct {
	Literal   func(*Literal) T
	Variable  func(*VariableRef) T
	Parameter func(*ParameterRef) T
	Merge     func(a, b T) T
}

// Fold reduces an expression tree bottom-up.
func Fold[T any](e Expr, f Folder[T]) T {
	switch n := e.(type) {
	case *Literal:
		return f.Literal(n)
	case *VariableRef:
		return f.Variable(n)
	case *ParameterRef:
		return f.Parameter(n)
	case *Call:
		return Fold(n.Arg, f)
	case *Operation:
		acc := Fold(n.Operands[0], f)
		for _, op := range n.Operands[1:] {
			acc = f.Merge(acc, Fold(op, f))
		}
		return acc
	default:
		panic("dsl: unknown expression node")
	}
}

type set[K comparable] map[K]struct{}

func union[K comparable](a, b set[K]) set[K] {
	if len(a) == 0 {
		return b
	}
	for k := range b {
		a[k] = struct{}{}
	}
	return a
}

func setFolder[K comparable](variable func(*VariableRef) set[K], parameter func(*ParameterRef) set[K]) Folder[set[K]] {
	return Folder[set[K]]{
		Literal:   func(*Literal) set[K] { return nil },
		Variable:  variable,
		Parameter: parameter,
		Merge:     union[K],
	}
}

// Offsets returns the distinct offsets used by variable references in e, sorted.
func Offsets(e Expr) []Offset {
	s := Fold(e, setFolder(
		func(v *VariableRef) set[Offset] { return set[Offset]{v.Offset(): {}} },
		func(*ParameterRef) set[Offset] { return nil },
	))
	out := make([]Offset, 0, len(s))
	for o := range s {
		out = append(out, o)
	}
	return SortOffsets(out)
}

// Parameters returns the distinct parameter names referenced in e, sorted.
func Parameters(e Expr) []string {
	return sortedKeys(Fold(e, setFolder(
		func(*VariableRef) set[string] { return nil },
		func(p *ParameterRef) set[string] { return set[string]{p.Name: {}} },
	)))
}

// Variables returns the distinct variable names referenced in e, sorted.
func Variables(e Expr) []string {
	return sortedKeys(Fold(e, setFolder(
		func(v *VariableRef) set[string] { return set[string]{v.Name: {}} },
		func(*ParameterRef) set[string] { return nil },
	)))
}

func sortedKeys(s set[string]) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
