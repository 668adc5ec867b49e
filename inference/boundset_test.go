package inference

import (
	"testing"

	"github.com/cottand/jinfer/jtypes"
	"github.com/stretchr/testify/assert"
)

// sampleBoundSets are small bound sets over α0 and α1, some of them false
func sampleBoundSets() []BoundSet {
	a0, a1 := InferenceVariable{Index: 0}, InferenceVariable{Index: 1}
	listOf := func(t jtypes.Type) SyntheticType { return typed(class("java.util.List", t)) }
	return []BoundSet{
		NewBoundSet(),
		FalseBoundSet(),
		NewBoundSet().With(NewSimpleBound(typed(str), OpSubtype, a0)),
		NewBoundSet().With(NewSimpleBound(a0, OpSubtype, typed(object)), NewSimpleBound(a0, OpSubtype, a1)),
		NewBoundSet().With(NewSimpleBound(a1, OpEqual, listOf(a0.AsTypeVar()))).WithThrown(a1),
		NewBoundSet().With(NewSimpleBound(typed(integer), OpSubtype, a1)).WithFalse(),
		NewBoundSet().With(&CaptureRelation{Alphas: []InferenceVariable{a0}, Right: []SyntheticType{listOf(str)}}),
	}
}

func keysOf(b BoundSet) map[string]bool {
	keys := make(map[string]bool)
	for _, bound := range b.Bounds() {
		keys[bound.key()] = true
	}
	return keys
}

func TestMergeIsCommutative(t *testing.T) {
	sets := sampleBoundSets()
	for i, a := range sets {
		for j, b := range sets {
			ab, ba := a.Merge(b), b.Merge(a)
			assert.Equal(t, keysOf(ab), keysOf(ba), "sets %d and %d", i, j)
			assert.Equal(t, ab.IsBoundable(), ba.IsBoundable(), "sets %d and %d", i, j)
			assert.Equal(t, ab.Thrown(), ba.Thrown(), "sets %d and %d", i, j)
		}
	}
}

func TestMergeWithFalseIsFalse(t *testing.T) {
	for i, b := range sampleBoundSets() {
		assert.False(t, b.Merge(FalseBoundSet()).IsBoundable(), "set %d", i)
		assert.False(t, FalseBoundSet().Merge(b).IsBoundable(), "set %d", i)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	for i, b := range sampleBoundSets() {
		merged := b.Merge(b)
		assert.Equal(t, b.Len(), merged.Len(), "set %d", i)
		assert.Equal(t, b.IsBoundable(), merged.IsBoundable(), "set %d", i)
	}
}

func TestWithIgnoresDuplicates(t *testing.T) {
	a0 := InferenceVariable{Index: 0}
	b := NewBoundSet().
		With(NewSimpleBound(typed(str), OpSubtype, a0)).
		With(NewSimpleBound(typed(class(jtypes.StringName)), OpSubtype, a0))
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, "{java.lang.String <: α0}", b.String())
}

func TestBoundSetIsPersistent(t *testing.T) {
	a0 := InferenceVariable{Index: 0}
	empty := NewBoundSet()
	one := empty.With(NewSimpleBound(a0, OpSubtype, typed(object)))
	falsified := one.WithFalse()

	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 1, one.Len())
	assert.True(t, one.IsBoundable())
	assert.False(t, falsified.IsBoundable())
}

func TestSubstIsIdempotent(t *testing.T) {
	a0, a1 := InferenceVariable{Index: 0}, InferenceVariable{Index: 1}
	substitutions := []Substitution{
		{},
		{a0: str},
		{a1: class("java.util.List", integer)},
		{a0: number, a1: object},
	}
	for _, b := range sampleBoundSets() {
		for _, s := range substitutions {
			once := b.Subst(s)
			twice := once.Subst(s)
			assert.Equal(t, once.String(), twice.String())
			assert.Equal(t, once.IsBoundable(), b.IsBoundable())
		}
	}
}

func TestSubstReturnsReceiverWhenUnchanged(t *testing.T) {
	a0, a1 := InferenceVariable{Index: 0}, InferenceVariable{Index: 1}
	types := []SyntheticType{
		typed(str),
		typed(class("java.util.List", a1.AsTypeVar())),
		IntersectionOf(typed(number), typed(class("java.lang.Comparable", a1.AsTypeVar()))),
	}
	for _, st := range types {
		assert.Same(t, st, st.Subst(Substitution{a0: str}), st.String())
	}
	assert.Equal(t, SyntheticType(a1), a1.Subst(Substitution{a0: str}))
}

func TestSubstReplacesNestedVariables(t *testing.T) {
	a0 := InferenceVariable{Index: 0}
	listOfA0 := typed(class("java.util.List", a0.AsTypeVar()))
	assert.False(t, IsProper(listOfA0))

	replaced := listOfA0.Subst(Substitution{a0: str})
	assert.True(t, IsProper(replaced))
	assert.Equal(t, "java.util.List<java.lang.String>", replaced.String())
	assert.Equal(t, SyntheticType(a0), typed(a0.AsTypeVar()))
}

func TestMentioned(t *testing.T) {
	a0, a1, a2 := InferenceVariable{Index: 0}, InferenceVariable{Index: 1}, InferenceVariable{Index: 2}
	mapType := typed(class("java.util.Map", a2.AsTypeVar(), class("java.util.List", a0.AsTypeVar())))
	bound := NewSimpleBound(a1, OpSubtype, mapType)

	assert.Equal(t, []InferenceVariable{a0, a2}, mapType.Mentioned().Slice())
	assert.Equal(t, []InferenceVariable{a0, a1, a2}, bound.Mentioned().Slice())
}

func TestResolutionsAndThrown(t *testing.T) {
	a0, a1 := InferenceVariable{Index: 0}, InferenceVariable{Index: 1}
	b := NewBoundSet().
		With(&Resolution{Var: a1, Type: str}).
		WithThrown(a1).
		WithThrown(a0)

	assert.Equal(t, Substitution{a1: str}, b.Resolutions())
	assert.Equal(t, []InferenceVariable{a0, a1}, b.Thrown())
	assert.True(t, b.IsThrown(a0))
	assert.Equal(t, "{α1 := java.lang.String, throws α0, throws α1}", b.String())
}
