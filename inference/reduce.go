package inference

import (
	"github.com/cottand/jinfer/ast"
	"github.com/cottand/jinfer/inference/infererr"
	"github.com/cottand/jinfer/jtypes"
)

// ConstraintFormulaSet is a batch of formulas reduced together
type ConstraintFormulaSet struct {
	formulas []ConstraintFormula
}

func NewConstraintFormulaSet(formulas ...ConstraintFormula) ConstraintFormulaSet {
	return ConstraintFormulaSet{formulas: formulas}
}

func (c ConstraintFormulaSet) With(formulas ...ConstraintFormula) ConstraintFormulaSet {
	all := make([]ConstraintFormula, 0, len(c.formulas)+len(formulas))
	all = append(all, c.formulas...)
	return ConstraintFormulaSet{formulas: append(all, formulas...)}
}

func (c ConstraintFormulaSet) Len() int { return len(c.formulas) }

// Reduce rewrites every formula until only bounds and constants remain (JLS
// 18.2). Expression formulas become type formulas, type formulas become
// subtype formulas, subtype formulas become bounds or constants, so the
// worklist drains. A false constant makes the result unboundable.
func (c ConstraintFormulaSet) Reduce(sess *Session, unchecked UncheckedFunc) BoundSet {
	if unchecked == nil {
		unchecked = ignoreUnchecked
	}
	r := &reducer{sess: sess, unchecked: unchecked}
	result := NewBoundSet()
	queue := make([]ConstraintFormula, len(c.formulas))
	copy(queue, c.formulas)
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if !sess.consumeFuel() {
			sess.report(infererr.NewBoundComputation{
				Positioner: sess.pos,
				Var:        f.String(),
				Reason:     "ran out of fuel while reducing constraints",
			})
			return result.WithFalse()
		}
		switch f := f.(type) {
		case Const:
			if !f {
				sess.logger.Debug("reduced to false", "section", "inference.reduce")
				return result.WithFalse()
			}
		case *SimpleBound:
			result = result.With(f)
		default:
			reduced := r.reduceOne(f)
			sess.logger.Debug("reduce", "section", "inference.reduce", "formula", f.String(), "into", len(reduced))
			queue = append(queue, reduced...)
		}
	}
	return result
}

type reducer struct {
	sess      *Session
	unchecked UncheckedFunc
}

func (r *reducer) pool() TypePool { return r.sess.pool }

func (r *reducer) reduceOne(f ConstraintFormula) []ConstraintFormula {
	switch f := f.(type) {
	case *ArgFormula:
		return r.reduceArg(f)
	case *TypeFormula:
		return r.reduceType(maybeAsInferenceVariable(f.S), maybeAsInferenceVariable(f.T))
	case *RelFormula:
		return r.reduceRel(maybeAsInferenceVariable(f.S), maybeAsInferenceVariable(f.T))
	case *EqFormula:
		return r.reduceEq(maybeAsInferenceVariable(f.S), maybeAsInferenceVariable(f.T))
	case *ContainsFormula:
		return r.reduceContains(f.S, f.T)
	default:
		panic("unexpected residual constraint formula " + f.String())
	}
}

func just(f ConstraintFormula) []ConstraintFormula { return []ConstraintFormula{f} }

func truth(b bool) []ConstraintFormula { return just(Const(b)) }

// compatibleLoose decides whether source converts to target in a loose
// invocation context
func (r *reducer) compatibleLoose(source, target jtypes.Type) bool {
	outcome := r.pool().AssignableFrom(target, source)
	if outcome == jtypes.ConfirmUnchecked {
		r.unchecked(source, target)
	}
	return outcome.Compatible()
}

// reduceArg reduces ‹expr → F› (JLS 18.2.1)
func (r *reducer) reduceArg(f *ArgFormula) []ConstraintFormula {
	e := f.Path.Leaf()
	if r.sess.isStandalone(e) {
		t, ok := r.sess.staticType(e)
		if !ok {
			r.sess.report(infererr.NewMissingType{Positioner: f.Path.Pos(), Expr: e.String()})
			return truth(false)
		}
		if IsProper(f.Formal) {
			return truth(r.compatibleLoose(t, AsType(f.Formal)))
		}
		return just(&TypeFormula{S: syntheticOf(t), T: f.Formal})
	}

	switch e := e.(type) {
	case *ast.Parens:
		return just(&ArgFormula{Path: f.Path.Child(e.Inner), Formal: f.Formal})
	case *ast.Conditional:
		return []ConstraintFormula{
			&ArgFormula{Path: f.Path.Child(e.Then), Formal: f.Formal},
			&ArgFormula{Path: f.Path.Child(e.Else), Formal: f.Formal},
		}
	case *ast.Lambda:
		infererr.Bail("lambda expression %s targeting %s", e, f.Formal)
	case *ast.MethodRef:
		infererr.Bail("method reference %s targeting %s", e, f.Formal)
	case *ast.MethodCall:
		infererr.Bail("poly invocation %s targeting %s", e, f.Formal)
	}
	infererr.Bail("expression %s of unknown shape %T", e, e)
	return nil
}

// reduceType reduces ‹S → T› (JLS 18.2.2)
func (r *reducer) reduceType(s, t SyntheticType) []ConstraintFormula {
	if IsProper(s) && IsProper(t) {
		return truth(r.compatibleLoose(AsType(s), AsType(t)))
	}
	sType, tType := AsType(s), AsType(t)
	if prim, ok := sType.(jtypes.Primitive); ok {
		return just(&TypeFormula{S: syntheticOf(r.pool().Box(prim)), T: t})
	}
	if prim, ok := tType.(jtypes.Primitive); ok {
		return just(&TypeFormula{S: s, T: syntheticOf(r.pool().Box(prim))})
	}
	if _, isVar := s.(InferenceVariable); !isVar && r.onlyRawSupertype(sType, tType) {
		r.unchecked(sType, tType)
		return truth(true)
	}
	return just(&RelFormula{S: s, T: t})
}

// onlyRawSupertype reports whether target is a parameterized G<...>, or an
// array of one, and source only has the raw G among its supertypes
func (r *reducer) onlyRawSupertype(source, target jtypes.Type) bool {
	for {
		tArr, ok := target.(*jtypes.Array)
		if !ok {
			break
		}
		sArr, ok := source.(*jtypes.Array)
		if !ok {
			return false
		}
		source, target = sArr.Elem, tArr.Elem
	}
	c, ok := target.(*jtypes.Class)
	if !ok || c.IsRaw() {
		return false
	}
	if tv, ok := source.(jtypes.TypeVar); ok {
		if _, isVar := asInferenceVariable(tv); isVar {
			return false
		}
	}
	sup, ok := r.pool().AsSuper(source, c.Name)
	return ok && sup.IsRaw() && r.pool().IsGeneric(c.Name)
}

// reduceRel reduces ‹S <: T› (JLS 18.2.3)
func (r *reducer) reduceRel(s, t SyntheticType) []ConstraintFormula {
	sType, tType := AsType(s), AsType(t)
	if IsProper(s) && IsProper(t) {
		outcome := r.pool().IsSubtype(sType, tType)
		if outcome == jtypes.ConfirmUnchecked {
			r.unchecked(sType, tType)
		}
		return truth(outcome.Compatible())
	}
	if sType == jtypes.Null {
		return truth(true)
	}
	if tType == jtypes.Null {
		return truth(false)
	}
	if _, ok := s.(InferenceVariable); ok {
		return just(NewSimpleBound(s, OpSubtype, t))
	}
	if _, ok := t.(InferenceVariable); ok {
		return just(NewSimpleBound(s, OpSubtype, t))
	}

	switch target := tType.(type) {
	case *jtypes.Class:
		sup, ok := r.pool().AsSuper(sType, target.Name)
		if target.IsRaw() {
			return truth(ok)
		}
		if !ok || sup.IsRaw() || len(sup.Args) != len(target.Args) {
			return truth(false)
		}
		formulas := make([]ConstraintFormula, 0, len(target.Args)+1)
		for i := range target.Args {
			formulas = append(formulas, &ContainsFormula{S: sup.Args[i], T: target.Args[i]})
		}
		if target.Outer != nil && sup.Outer != nil {
			formulas = append(formulas, &RelFormula{S: syntheticOf(sup.Outer), T: syntheticOf(target.Outer)})
		}
		return formulas
	case *jtypes.Array:
		source, ok := arrayComponent(sType)
		if !ok {
			return truth(false)
		}
		if jtypes.IsReference(source.Elem) && jtypes.IsReference(target.Elem) {
			return just(&RelFormula{S: syntheticOf(source.Elem), T: syntheticOf(target.Elem)})
		}
		return truth(jtypes.Equal(source.Elem, target.Elem))
	case jtypes.TypeVar:
		for _, m := range members(s) {
			if jtypes.Equal(AsType(m), target) {
				return truth(true)
			}
		}
		return truth(false)
	case *jtypes.Intersection:
		formulas := make([]ConstraintFormula, len(target.Members))
		for i, m := range target.Members {
			formulas[i] = &RelFormula{S: s, T: syntheticOf(m)}
		}
		return formulas
	case jtypes.Primitive:
		return truth(false)
	}
	infererr.Bail("subtyping %s <: %s", s, t)
	return nil
}

// arrayComponent finds the array type among t, or among the members of an intersection t
func arrayComponent(t jtypes.Type) (*jtypes.Array, bool) {
	switch t := t.(type) {
	case *jtypes.Array:
		return t, true
	case *jtypes.Intersection:
		for _, m := range t.Members {
			if arr, ok := m.(*jtypes.Array); ok {
				return arr, true
			}
		}
	}
	return nil, false
}

// reduceEq reduces ‹S = T› (JLS 18.2.4)
func (r *reducer) reduceEq(s, t SyntheticType) []ConstraintFormula {
	sType, tType := AsType(s), AsType(t)
	if IsProper(s) && IsProper(t) {
		return truth(jtypes.Equal(sType, tType))
	}
	_, sVar := s.(InferenceVariable)
	_, tVar := t.(InferenceVariable)
	if sVar || tVar {
		return just(NewSimpleBound(s, OpEqual, t))
	}
	if jtypes.IsPrimitive(sType) || jtypes.IsPrimitive(tType) || sType == jtypes.Null || tType == jtypes.Null {
		return truth(false)
	}
	switch source := sType.(type) {
	case *jtypes.Class:
		target, ok := tType.(*jtypes.Class)
		if !ok || source.Name != target.Name || len(source.Args) != len(target.Args) {
			return truth(false)
		}
		var formulas []ConstraintFormula
		for i := range source.Args {
			a, b := source.Args[i], target.Args[i]
			switch {
			case a.Kind != b.Kind:
				return truth(false)
			case a.Kind == jtypes.Unbounded:
				continue
			default:
				formulas = append(formulas, &EqFormula{S: syntheticOf(a.Type), T: syntheticOf(b.Type)})
			}
		}
		if (source.Outer == nil) != (target.Outer == nil) {
			return truth(false)
		}
		if source.Outer != nil {
			formulas = append(formulas, &EqFormula{S: syntheticOf(source.Outer), T: syntheticOf(target.Outer)})
		}
		if len(formulas) == 0 {
			return truth(true)
		}
		return formulas
	case *jtypes.Array:
		target, ok := tType.(*jtypes.Array)
		if !ok {
			return truth(false)
		}
		return just(&EqFormula{S: syntheticOf(source.Elem), T: syntheticOf(target.Elem)})
	}
	return truth(false)
}

// reduceContains reduces ‹S <= T› for type arguments (JLS 18.2.3)
func (r *reducer) reduceContains(s, t jtypes.TypeArg) []ConstraintFormula {
	object := syntheticOf(r.pool().Object())
	switch t.Kind {
	case jtypes.Exact:
		if s.IsWildcard() {
			return truth(false)
		}
		return just(&EqFormula{S: syntheticOf(s.Type), T: syntheticOf(t.Type)})
	case jtypes.Unbounded:
		return truth(true)
	case jtypes.Extends:
		bound := syntheticOf(t.Type)
		switch s.Kind {
		case jtypes.Exact, jtypes.Extends:
			return just(&RelFormula{S: syntheticOf(s.Type), T: bound})
		case jtypes.Unbounded:
			return just(&RelFormula{S: object, T: bound})
		default:
			return just(&EqFormula{S: object, T: bound})
		}
	case jtypes.Super:
		bound := syntheticOf(t.Type)
		switch s.Kind {
		case jtypes.Exact, jtypes.Super:
			return just(&RelFormula{S: bound, T: syntheticOf(s.Type)})
		default:
			return truth(false)
		}
	}
	return truth(false)
}
