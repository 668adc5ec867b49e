package inference

import (
	"github.com/cottand/jinfer/jtypes"
	"github.com/hashicorp/go-set/v3"
)

// Incorporate adds the bounds implied by b (JLS 18.3.1) until a fixed point is
// reached or b turns out not to be boundable. Derived formulas are reduced at
// most once; the session's fuel bounds the total work.
func (b BoundSet) Incorporate(sess *Session, unchecked UncheckedFunc) BoundSet {
	logger := sess.logger.With("section", "inference.incorporate")
	seen := set.NewHashSet[keyedFormula, uint64](16)
	current := b
	for round := 0; current.IsBoundable(); round++ {
		var fresh []ConstraintFormula
		for _, f := range current.implied() {
			if seen.Insert(keyed(f)) {
				fresh = append(fresh, f)
			}
		}
		if len(fresh) == 0 {
			break
		}
		logger.Debug("incorporating", "round", round, "formulas", len(fresh), "bounds", current.Len())
		current = current.Merge(NewConstraintFormulaSet(fresh...).Reduce(sess, unchecked))
	}
	if !current.IsBoundable() {
		logger.Debug("bound set is contradictory")
	}
	return current
}

type variableBounds struct {
	lower, upper, equal []SyntheticType
}

// boundsOf collects the other side of every simple bound on v
func (b BoundSet) boundsOf(v InferenceVariable) variableBounds {
	var vb variableBounds
	self := SyntheticType(v)
	for _, bound := range b.Bounds() {
		sb, ok := bound.(*SimpleBound)
		if !ok {
			continue
		}
		switch {
		case sb.Op == OpEqual && sb.Left == self && sb.Right != self:
			vb.equal = append(vb.equal, sb.Right)
		case sb.Op == OpEqual && sb.Right == self && sb.Left != self:
			vb.equal = append(vb.equal, sb.Left)
		case sb.Op == OpSubtype && sb.Left == self && sb.Right != self:
			vb.upper = append(vb.upper, sb.Right)
		case sb.Op == OpSubtype && sb.Right == self && sb.Left != self:
			vb.lower = append(vb.lower, sb.Left)
		}
	}
	return vb
}

// variables are the inference variables mentioned by simple bounds, by index
func (b BoundSet) variables() []InferenceVariable {
	vars := newVarSet()
	for _, bound := range b.Bounds() {
		if sb, ok := bound.(*SimpleBound); ok {
			addAll(vars, sb.Mentioned())
		}
	}
	return vars.Slice()
}

// implied lists the formulas that complementary pairs of bounds entail
func (b BoundSet) implied() []ConstraintFormula {
	var formulas []ConstraintFormula
	for _, v := range b.variables() {
		vb := b.boundsOf(v)
		for _, s := range vb.lower {
			for _, t := range vb.upper {
				formulas = append(formulas, &RelFormula{S: s, T: t})
			}
		}
		for i, s := range vb.equal {
			for _, t := range vb.equal[i+1:] {
				formulas = append(formulas, &EqFormula{S: s, T: t})
			}
			for _, t := range vb.upper {
				formulas = append(formulas, &RelFormula{S: s, T: t})
			}
			for _, l := range vb.lower {
				formulas = append(formulas, &RelFormula{S: l, T: s})
			}
		}
		formulas = append(formulas, sameGenericSupertype(vb.upper)...)

		for _, u := range vb.equal {
			if IsProper(u) {
				formulas = append(formulas, b.substituted(v, u)...)
			}
		}
	}
	return formulas
}

// sameGenericSupertype equates the type arguments of two upper bounds that
// are parameterizations of the same generic class
func sameGenericSupertype(uppers []SyntheticType) []ConstraintFormula {
	var formulas []ConstraintFormula
	for i, s := range uppers {
		sc, ok := parameterized(s)
		if !ok {
			continue
		}
		for _, t := range uppers[i+1:] {
			tc, ok := parameterized(t)
			if !ok || sc.Name != tc.Name || len(sc.Args) != len(tc.Args) {
				continue
			}
			for k := range sc.Args {
				if sc.Args[k].IsWildcard() || tc.Args[k].IsWildcard() {
					continue
				}
				formulas = append(formulas, &EqFormula{S: syntheticOf(sc.Args[k].Type), T: syntheticOf(tc.Args[k].Type)})
			}
		}
	}
	return formulas
}

// substituted replaces v by the proper type u in every other simple bound
// mentioning v
func (b BoundSet) substituted(v InferenceVariable, u SyntheticType) []ConstraintFormula {
	subst := Substitution{v: AsType(u)}
	var formulas []ConstraintFormula
	for _, bound := range b.Bounds() {
		sb, ok := bound.(*SimpleBound)
		if !ok || !sb.Mentioned().Contains(v) {
			continue
		}
		if sb.Op == OpEqual && (sb.Left == SyntheticType(v) && sb.Right.key() == u.key() ||
			sb.Right == SyntheticType(v) && sb.Left.key() == u.key()) {
			continue
		}
		formulas = append(formulas, sb.Subst(subst).(*SimpleBound).asFormula())
	}
	return formulas
}

func parameterized(t SyntheticType) (*jtypes.Class, bool) {
	n, ok := t.(*Nominal)
	if !ok {
		return nil, false
	}
	c, ok := n.Type.(*jtypes.Class)
	if !ok || c.IsRaw() {
		return nil, false
	}
	return c, true
}
