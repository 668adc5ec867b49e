package inference

import (
	"testing"

	"github.com/cottand/jinfer/ast"
	"github.com/cottand/jinfer/jtypes"
	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	a0 := InferenceVariable{Index: 0}
	alpha := a0.AsTypeVar()
	list := func(arg jtypes.TypeArg) jtypes.Type {
		return &jtypes.Class{Name: "java.util.List", Args: []jtypes.TypeArg{arg}}
	}
	exact := jtypes.ExactArg
	extends := func(t jtypes.Type) jtypes.TypeArg { return jtypes.TypeArg{Kind: jtypes.Extends, Type: t} }
	super := func(t jtypes.Type) jtypes.TypeArg { return jtypes.TypeArg{Kind: jtypes.Super, Type: t} }

	// expected is the resulting bound set, "{false}" when unboundable
	cases := map[string]struct {
		formula  ConstraintFormula
		expected string
	}{
		"subtype of a variable": {
			formula:  &RelFormula{S: typed(integer), T: a0},
			expected: "{java.lang.Integer <: α0}",
		},
		"variable below a type": {
			formula:  &RelFormula{S: a0, T: typed(number)},
			expected: "{α0 <: java.lang.Number}",
		},
		"proper subtyping holds": {
			formula:  &RelFormula{S: typed(integer), T: typed(number)},
			expected: "{}",
		},
		"proper subtyping fails": {
			formula:  &RelFormula{S: typed(str), T: typed(number)},
			expected: "{false}",
		},
		"null is below everything": {
			formula:  &RelFormula{S: typed(jtypes.Null), T: a0},
			expected: "{}",
		},
		"nothing is below null": {
			formula:  &RelFormula{S: a0, T: typed(jtypes.Null)},
			expected: "{false}",
		},
		"parameterized supertype": {
			formula:  &RelFormula{S: typed(class("java.util.ArrayList", str)), T: typed(list(exact(alpha)))},
			expected: "{java.lang.String = α0}",
		},
		"no such supertype": {
			formula:  &RelFormula{S: typed(str), T: typed(list(exact(alpha)))},
			expected: "{false}",
		},
		"extends wildcard": {
			formula:  &RelFormula{S: typed(list(extends(number))), T: typed(list(extends(alpha)))},
			expected: "{java.lang.Number <: α0}",
		},
		"super wildcard": {
			formula:  &RelFormula{S: typed(list(exact(number))), T: typed(list(super(alpha)))},
			expected: "{α0 <: java.lang.Number}",
		},
		"unbounded wildcard": {
			formula:  &RelFormula{S: typed(list(exact(str))), T: typed(list(jtypes.TypeArg{Kind: jtypes.Unbounded}))},
			expected: "{}",
		},
		"wildcard is not contained by an exact argument": {
			formula:  &RelFormula{S: typed(list(extends(number))), T: typed(list(exact(alpha)))},
			expected: "{false}",
		},
		"array elements": {
			formula:  &RelFormula{S: typed(jtypes.ArrayOf(str)), T: typed(jtypes.ArrayOf(alpha))},
			expected: "{java.lang.String <: α0}",
		},
		"primitive array elements": {
			formula:  &RelFormula{S: typed(jtypes.ArrayOf(intType)), T: typed(jtypes.ArrayOf(alpha))},
			expected: "{false}",
		},
		"intersection target": {
			formula: &RelFormula{
				S: typed(integer),
				T: IntersectionOf(typed(number), typed(class("java.lang.Comparable", alpha))),
			},
			expected: "{java.lang.Integer = α0}",
		},
		"compatibility boxes primitives": {
			formula:  &TypeFormula{S: typed(intType), T: a0},
			expected: "{java.lang.Integer <: α0}",
		},
		"compatibility with a primitive target": {
			formula:  &TypeFormula{S: a0, T: typed(intType)},
			expected: "{α0 <: java.lang.Integer}",
		},
		"proper compatibility widens": {
			formula:  &TypeFormula{S: typed(intType), T: typed(jtypes.Primitive{Kind: jtypes.Long})},
			expected: "{}",
		},
		"proper compatibility rejects narrowing": {
			formula:  &TypeFormula{S: typed(jtypes.Primitive{Kind: jtypes.Long}), T: typed(intType)},
			expected: "{false}",
		},
		"equality of parameterizations": {
			formula:  &EqFormula{S: typed(list(exact(alpha))), T: typed(list(exact(str)))},
			expected: "{α0 = java.lang.String}",
		},
		"equality of different classes": {
			formula:  &EqFormula{S: typed(list(exact(alpha))), T: typed(class("java.util.Set", str))},
			expected: "{false}",
		},
		"equality of wildcards of different kinds": {
			formula:  &EqFormula{S: typed(list(extends(alpha))), T: typed(list(super(str)))},
			expected: "{false}",
		},
		"argument of standalone expression": {
			formula:  &ArgFormula{Path: ast.PathOf(named("s", str)), Formal: a0},
			expected: "{java.lang.String <: α0}",
		},
		"argument against a proper formal": {
			formula:  &ArgFormula{Path: ast.PathOf(literal("1", intType)), Formal: typed(object)},
			expected: "{}",
		},
		"parenthesized argument": {
			formula:  &ArgFormula{Path: ast.PathOf(&ast.Parens{Inner: named("i", integer)}), Formal: a0},
			expected: "{java.lang.Integer <: α0}",
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			sess := newTestSession(jtypes.NewPool())
			sess.Fresh()
			b := NewConstraintFormulaSet(c.formula).Reduce(sess, nil)
			assert.Equal(t, c.expected, b.String())
		})
	}
}

func TestReduceReportsMissingTypes(t *testing.T) {
	sess := newTestSession(jtypes.NewPool())
	a0 := sess.Fresh()
	b := NewConstraintFormulaSet(&ArgFormula{Path: ast.PathOf(named("x", nil)), Formal: a0}).Reduce(sess, nil)

	assert.False(t, b.IsBoundable())
	assert.True(t, sess.Errors().HasError())
}

func TestReduceNotifiesUncheckedConversion(t *testing.T) {
	sess := newTestSession(jtypes.NewPool())
	a0 := sess.Fresh()
	var conversions []string
	record := func(source, target jtypes.Type) {
		conversions = append(conversions, source.String()+" -> "+target.String())
	}

	raw := typed(class("java.util.ArrayList"))
	b := NewConstraintFormulaSet(
		&TypeFormula{S: raw, T: typed(class("java.util.List", a0.AsTypeVar()))},
		&TypeFormula{S: raw, T: typed(class("java.util.Collection", str))},
	).Reduce(sess, record)

	assert.True(t, b.IsBoundable())
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, []string{
		"java.util.ArrayList -> java.util.List<α0>",
		"java.util.ArrayList -> java.util.Collection<java.lang.String>",
	}, conversions)
}

func TestReduceRunsOutOfFuel(t *testing.T) {
	sess := newTestSession(jtypes.NewPool())
	sess.fuel = 2
	a0 := sess.Fresh()
	b := NewConstraintFormulaSet(
		&TypeFormula{S: typed(integer), T: a0},
		&TypeFormula{S: typed(double), T: a0},
	).Reduce(sess, nil)

	assert.False(t, b.IsBoundable())
	assert.True(t, sess.Errors().HasError())
}
