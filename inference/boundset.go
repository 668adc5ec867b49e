package inference

import (
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/jinfer/jtypes"
)

// BoundSet is an immutable set of bounds, in insertion order.
//
// A bound set that is not boundable has incorporated the bound "false": no
// instantiation satisfies it. Every operation preserves that.
type BoundSet struct {
	bounds    *immutable.List[Bound]
	keys      *immutable.Map[string, struct{}]
	boundable bool
	thrown    *immutable.SortedMap[int, InferenceVariable]
}

// NewBoundSet returns the empty, satisfiable bound set
func NewBoundSet() BoundSet {
	return BoundSet{
		bounds:    immutable.NewList[Bound](),
		keys:      immutable.NewMap[string, struct{}](nil),
		boundable: true,
		thrown:    immutable.NewSortedMap[int, InferenceVariable](nil),
	}
}

// FalseBoundSet returns a bound set containing "false"
func FalseBoundSet() BoundSet {
	b := NewBoundSet()
	b.boundable = false
	return b
}

func (b BoundSet) IsBoundable() bool { return b.boundable }

func (b BoundSet) Len() int { return b.bounds.Len() }

// Bounds returns the bounds in insertion order
func (b BoundSet) Bounds() []Bound {
	result := make([]Bound, 0, b.bounds.Len())
	itr := b.bounds.Iterator()
	for !itr.Done() {
		_, bound := itr.Next()
		result = append(result, bound)
	}
	return result
}

func (b BoundSet) Contains(bound Bound) bool {
	_, ok := b.keys.Get(bound.key())
	return ok
}

// With adds bounds that are not in b already
func (b BoundSet) With(bounds ...Bound) BoundSet {
	for _, bound := range bounds {
		k := bound.key()
		if _, ok := b.keys.Get(k); ok {
			continue
		}
		b.keys = b.keys.Set(k, struct{}{})
		b.bounds = b.bounds.Append(bound)
	}
	return b
}

// WithFalse incorporates "false"
func (b BoundSet) WithFalse() BoundSet {
	b.boundable = false
	return b
}

// WithThrown marks v as appearing in a throws clause
func (b BoundSet) WithThrown(v InferenceVariable) BoundSet {
	b.thrown = b.thrown.Set(v.Index, v)
	return b
}

func (b BoundSet) IsThrown(v InferenceVariable) bool {
	_, ok := b.thrown.Get(v.Index)
	return ok
}

// Thrown returns the variables marked as thrown, by index
func (b BoundSet) Thrown() []InferenceVariable {
	var result []InferenceVariable
	itr := b.thrown.Iterator()
	for !itr.Done() {
		_, v, _ := itr.Next()
		result = append(result, v)
	}
	return result
}

// Merge unions bounds and thrown marks; the result is boundable only if both are
func (b BoundSet) Merge(other BoundSet) BoundSet {
	merged := b.With(other.Bounds()...)
	merged.boundable = b.boundable && other.boundable
	for _, v := range other.Thrown() {
		merged = merged.WithThrown(v)
	}
	return merged
}

// Resolutions returns the instantiations recorded so far
func (b BoundSet) Resolutions() Substitution {
	result := make(Substitution)
	for _, bound := range b.Bounds() {
		if r, ok := bound.(*Resolution); ok {
			result[r.Var] = r.Type
		}
	}
	return result
}

// Subst applies s to every bound, keeping insertion order
func (b BoundSet) Subst(s Substitution) BoundSet {
	result := NewBoundSet()
	result.boundable = b.boundable
	result.thrown = b.thrown
	for _, bound := range b.Bounds() {
		result = result.With(bound.Subst(s))
	}
	return result
}

func (b BoundSet) String() string {
	if !b.boundable {
		return "{false}"
	}
	parts := make([]string, 0, b.bounds.Len())
	for _, bound := range b.Bounds() {
		parts = append(parts, bound.String())
	}
	for _, v := range b.Thrown() {
		parts = append(parts, "throws "+v.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// properUpperBounds are the proper T of bounds α <: T, intersections flattened
func (b BoundSet) properUpperBounds(v InferenceVariable) []jtypes.Type {
	var result []jtypes.Type
	for _, bound := range b.Bounds() {
		sb, ok := bound.(*SimpleBound)
		if !ok || sb.Op != OpSubtype || sb.Left != SyntheticType(v) {
			continue
		}
		for _, m := range members(sb.Right) {
			if IsProper(m) {
				result = append(result, AsType(m))
			}
		}
	}
	return result
}

// properLowerBounds are the proper S of bounds S <: α
func (b BoundSet) properLowerBounds(v InferenceVariable) []jtypes.Type {
	var result []jtypes.Type
	for _, bound := range b.Bounds() {
		sb, ok := bound.(*SimpleBound)
		if !ok || sb.Op != OpSubtype || sb.Right != SyntheticType(v) {
			continue
		}
		if IsProper(sb.Left) {
			result = append(result, AsType(sb.Left))
		}
	}
	return result
}

// properEqualBounds are the proper T of bounds α = T and T = α
func (b BoundSet) properEqualBounds(v InferenceVariable) []jtypes.Type {
	var result []jtypes.Type
	for _, bound := range b.Bounds() {
		sb, ok := bound.(*SimpleBound)
		if !ok || sb.Op != OpEqual {
			continue
		}
		var other SyntheticType
		switch {
		case sb.Left == SyntheticType(v):
			other = sb.Right
		case sb.Right == SyntheticType(v):
			other = sb.Left
		default:
			continue
		}
		if IsProper(other) {
			result = append(result, AsType(other))
		}
	}
	return result
}
