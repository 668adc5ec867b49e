package inference

import (
	"strings"

	"github.com/cottand/jinfer/jtypes"
	"github.com/hashicorp/go-set/v3"
)

// Bound is a relation between inference variables and types in its simplest form
type Bound interface {
	String() string
	Hash() uint64
	Mentioned() *set.TreeSet[InferenceVariable]
	Subst(s Substitution) Bound
	key() string
	isBound()
}

var (
	_ Bound = (*SimpleBound)(nil)
	_ Bound = (*CaptureRelation)(nil)
	_ Bound = (*Resolution)(nil)

	_ ConstraintFormula = (*SimpleBound)(nil)
)

type BoundOp int

const (
	// OpSubtype is Left <: Right
	OpSubtype BoundOp = iota
	// OpEqual is Left = Right
	OpEqual
)

func (op BoundOp) String() string {
	if op == OpEqual {
		return "="
	}
	return "<:"
}

// SimpleBound is α <: T, T <: α, α = T or the same between two variables.
// It is also a constraint formula that needs no further reduction.
type SimpleBound struct {
	Left  SyntheticType
	Op    BoundOp
	Right SyntheticType
}

func NewSimpleBound(left SyntheticType, op BoundOp, right SyntheticType) *SimpleBound {
	return &SimpleBound{Left: maybeAsInferenceVariable(left), Op: op, Right: maybeAsInferenceVariable(right)}
}

func (*SimpleBound) isBound()   {}
func (*SimpleBound) isFormula() {}

func (b *SimpleBound) String() string {
	return b.Left.String() + " " + b.Op.String() + " " + b.Right.String()
}

func (b *SimpleBound) key() string {
	return b.Left.key() + " " + b.Op.String() + " " + b.Right.key()
}

func (b *SimpleBound) Hash() uint64 { return hashString(b.key()) }

func (b *SimpleBound) Mentioned() *set.TreeSet[InferenceVariable] {
	vars := b.Left.Mentioned()
	addAll(vars, b.Right.Mentioned())
	return vars
}

func (b *SimpleBound) Subst(s Substitution) Bound {
	left, right := b.Left.Subst(s), b.Right.Subst(s)
	if left == b.Left && right == b.Right {
		return b
	}
	return NewSimpleBound(left, b.Op, right)
}

// variableSide returns the inference variable of the bound and the other side
// of the relation. For a bound between two variables the left one is returned.
func (b *SimpleBound) variableSide() (v InferenceVariable, other SyntheticType, ok bool) {
	if v, ok := b.Left.(InferenceVariable); ok {
		return v, b.Right, true
	}
	if v, ok := b.Right.(InferenceVariable); ok {
		return v, b.Left, true
	}
	return InferenceVariable{}, nil, false
}

// asFormula is the constraint formula equivalent of a bound that lost its variables
func (b *SimpleBound) asFormula() ConstraintFormula {
	if b.Op == OpEqual {
		return &EqFormula{S: b.Left, T: b.Right}
	}
	return &RelFormula{S: b.Left, T: b.Right}
}

// CaptureRelation states that Alphas[i] is bound to the capture of Right[i]
type CaptureRelation struct {
	Alphas []InferenceVariable
	Right  []SyntheticType
}

func (*CaptureRelation) isBound() {}

func (b *CaptureRelation) String() string {
	alphas := make([]string, len(b.Alphas))
	rights := make([]string, len(b.Right))
	for i := range b.Alphas {
		alphas[i] = b.Alphas[i].String()
		rights[i] = b.Right[i].String()
	}
	return "<" + strings.Join(alphas, ", ") + "> = capture(<" + strings.Join(rights, ", ") + ">)"
}

func (b *CaptureRelation) key() string {
	sb := &strings.Builder{}
	sb.WriteString("capture")
	for i := range b.Alphas {
		sb.WriteString(" ")
		sb.WriteString(b.Alphas[i].key())
		sb.WriteString("=")
		sb.WriteString(b.Right[i].key())
	}
	return sb.String()
}

func (b *CaptureRelation) Hash() uint64 { return hashString(b.key()) }

func (b *CaptureRelation) Mentioned() *set.TreeSet[InferenceVariable] {
	vars := newVarSet(b.Alphas...)
	for _, r := range b.Right {
		addAll(vars, r.Mentioned())
	}
	return vars
}

func (b *CaptureRelation) Subst(s Substitution) Bound {
	right := make([]SyntheticType, len(b.Right))
	changed := false
	for i, r := range b.Right {
		right[i] = r.Subst(s)
		changed = changed || right[i] != r
	}
	if !changed {
		return b
	}
	return &CaptureRelation{Alphas: b.Alphas, Right: right}
}

func (b *CaptureRelation) captures(v InferenceVariable) bool {
	for _, a := range b.Alphas {
		if a == v {
			return true
		}
	}
	return false
}

// Resolution records that Var was instantiated to the proper type Type
type Resolution struct {
	Var  InferenceVariable
	Type jtypes.Type
}

func (*Resolution) isBound()         {}
func (r *Resolution) String() string { return r.Var.String() + " := " + r.Type.String() }
func (r *Resolution) key() string    { return r.Var.key() + " := " + jtypes.Key(r.Type) }
func (r *Resolution) Hash() uint64   { return hashString(r.key()) }

func (r *Resolution) Mentioned() *set.TreeSet[InferenceVariable] { return newVarSet(r.Var) }

// Subst does nothing: both sides of a resolution are final
func (r *Resolution) Subst(Substitution) Bound { return r }
