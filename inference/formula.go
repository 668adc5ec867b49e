package inference

import (
	"github.com/cottand/jinfer/ast"
	"github.com/cottand/jinfer/jtypes"
)

// ConstraintFormula is an assertion about expressions or types that reduction
// turns into bounds
type ConstraintFormula interface {
	String() string
	isFormula()
}

var (
	_ ConstraintFormula = Const(true)
	_ ConstraintFormula = (*ArgFormula)(nil)
	_ ConstraintFormula = (*TypeFormula)(nil)
	_ ConstraintFormula = (*RelFormula)(nil)
	_ ConstraintFormula = (*EqFormula)(nil)
	_ ConstraintFormula = (*ContainsFormula)(nil)
)

// Const is the formula true or false
type Const bool

func (Const) isFormula() {}
func (c Const) String() string {
	if c {
		return "true"
	}
	return "false"
}

// ArgFormula is ‹expr → F›: the argument at the end of Path is compatible in a
// loose invocation context with the formal parameter type F
type ArgFormula struct {
	Path   ast.Path
	Formal SyntheticType
}

func (*ArgFormula) isFormula() {}
func (f *ArgFormula) String() string {
	return "‹" + f.Path.Leaf().String() + " → " + f.Formal.String() + "›"
}

// TypeFormula is ‹S → T›: S is compatible with T in a loose invocation context
type TypeFormula struct {
	S, T SyntheticType
}

func (*TypeFormula) isFormula()       {}
func (f *TypeFormula) String() string { return "‹" + f.S.String() + " → " + f.T.String() + "›" }

// RelFormula is ‹S <: T›
type RelFormula struct {
	S, T SyntheticType
}

func (*RelFormula) isFormula()       {}
func (f *RelFormula) String() string { return "‹" + f.S.String() + " <: " + f.T.String() + "›" }

// EqFormula is ‹S = T›
type EqFormula struct {
	S, T SyntheticType
}

func (*EqFormula) isFormula()       {}
func (f *EqFormula) String() string { return "‹" + f.S.String() + " = " + f.T.String() + "›" }

// ContainsFormula is ‹S <= T›: the type argument T contains S
type ContainsFormula struct {
	S, T jtypes.TypeArg
}

func (*ContainsFormula) isFormula()       {}
func (f *ContainsFormula) String() string { return "‹" + f.S.String() + " <= " + f.T.String() + "›" }

// formulaKey identifies formulas that need not be reduced twice
func formulaKey(f ConstraintFormula) string {
	switch f := f.(type) {
	case *RelFormula:
		return f.S.key() + " <: " + f.T.key()
	case *EqFormula:
		return f.S.key() + " = " + f.T.key()
	case *SimpleBound:
		return f.key()
	case *TypeFormula:
		return f.S.key() + " -> " + f.T.key()
	case *ContainsFormula:
		return argKey(f.S) + " <= " + argKey(f.T)
	case *ArgFormula:
		return f.Path.String() + " -> " + f.Formal.key()
	default:
		return f.String()
	}
}

func argKey(a jtypes.TypeArg) string {
	switch a.Kind {
	case jtypes.Unbounded:
		return "?"
	case jtypes.Extends:
		return "? extends " + jtypes.Key(a.Type)
	case jtypes.Super:
		return "? super " + jtypes.Key(a.Type)
	default:
		return jtypes.Key(a.Type)
	}
}

// keyedFormula lets formulas live in a set.HashSet
type keyedFormula struct {
	ConstraintFormula
	hash uint64
}

func keyed(f ConstraintFormula) keyedFormula {
	return keyedFormula{ConstraintFormula: f, hash: hashString(formulaKey(f))}
}

func (k keyedFormula) Hash() uint64 { return k.hash }
