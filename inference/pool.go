package inference

import "github.com/cottand/jinfer/jtypes"

// TypePool is the static type model the engine consults. Implementations must
// be safe for concurrent read-only use if call sites are inferred in parallel.
//
// jtypes.Pool is the reference implementation.
type TypePool interface {
	// AssignableFrom classifies converting a source value to target in a loose invocation context
	AssignableFrom(target, source jtypes.Type) jtypes.CastOutcome
	IsSubtype(sub, sup jtypes.Type) jtypes.CastOutcome
	// AsSuper finds the supertype of t that is an invocation of className
	AsSuper(t jtypes.Type, className string) (*jtypes.Class, bool)
	// Supertypes lists t and all its supertypes, nearest first
	Supertypes(t jtypes.Type) []jtypes.Type
	IsGeneric(className string) bool
	LeastUpperBound(ts []jtypes.Type) jtypes.Type
	GreatestLowerBound(a, b jtypes.Type) jtypes.Type
	Box(p jtypes.Primitive) jtypes.Type
	Unbox(t jtypes.Type) (jtypes.Primitive, bool)
	Erasure(t jtypes.Type) jtypes.Type
	Object() *jtypes.Class
}

var _ TypePool = (*jtypes.Pool)(nil)
