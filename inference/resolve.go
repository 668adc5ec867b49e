package inference

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/cottand/jinfer/inference/infererr"
	"github.com/cottand/jinfer/jtypes"
	"github.com/hashicorp/go-set/v3"
)

// Resolve instantiates the inference variables of b (JLS 18.4), one clique
// per round so that later cliques see the instantiations of earlier ones.
// It stops when a round instantiates nothing. Variables for which no
// instantiation can be computed are reported and left unresolved.
func (b BoundSet) Resolve(sess *Session, unchecked UncheckedFunc) BoundSet {
	r := &resolver{
		sess:      sess,
		logger:    sess.logger.With("section", "inference.resolve"),
		unchecked: unchecked,
		failed:    newVarSet(),
	}
	current := b
	for current.IsBoundable() {
		next, progressed := r.instantiateSome(current)
		if !progressed {
			break
		}
		current = next
	}
	return current
}

type resolver struct {
	sess      *Session
	logger    *slog.Logger
	unchecked UncheckedFunc
	failed    *set.TreeSet[InferenceVariable]
}

// instantiateSome resolves the first clique in resolution order that still has
// variables to resolve
func (r *resolver) instantiateSome(b BoundSet) (BoundSet, bool) {
	resolved := b.Resolutions()
	order := b.ResolutionOrder()
	r.logger.Debug("resolution order", "order", order.String())

	for _, clique := range order.Cliques {
		var pending []InferenceVariable
		for _, v := range clique.Vars() {
			if _, ok := resolved[v]; ok || r.failed.Contains(v) {
				continue
			}
			pending = append(pending, v)
		}
		if len(pending) == 0 {
			continue
		}
		if b.involvesCapture(clique) {
			infererr.Bail("resolving %s requires capture conversion", clique)
		}

		subst := make(Substitution)
		for _, v := range pending {
			if t, ok := r.instantiate(b, v); ok {
				subst[v] = t
			} else {
				r.failed.Insert(v)
			}
		}
		if len(subst) == 0 {
			continue
		}
		return r.apply(b, subst), true
	}
	return b, false
}

// instantiate computes the instantiation of one variable from its proper bounds
func (r *resolver) instantiate(b BoundSet, v InferenceVariable) (jtypes.Type, bool) {
	pool := r.sess.pool
	var t jtypes.Type
	var rule string
	lowers := slices.DeleteFunc(b.properLowerBounds(v), func(t jtypes.Type) bool { return t == jtypes.Null })
	uppers := b.properUpperBounds(v)
	switch {
	case len(b.properEqualBounds(v)) > 0:
		t, rule = b.properEqualBounds(v)[0], "equal"
	case len(lowers) > 0:
		t, rule = pool.LeastUpperBound(lowers), "lub"
	case b.IsThrown(v) && b.onlyExceptionUppers(v):
		t, rule = &jtypes.Class{Name: jtypes.RuntimeExceptionName}, "thrown"
	case len(uppers) > 0:
		for _, u := range uppers {
			t = pool.GreatestLowerBound(t, u)
		}
		rule = "glb"
	default:
		r.sess.report(infererr.NewBoundComputation{
			Positioner: r.sess.pos,
			Var:        v.String(),
			Reason:     "it has no proper bounds",
		})
		return nil, false
	}

	if !jtypes.IsReference(t) {
		r.sess.report(infererr.NewNonReferenceInstantiation{Positioner: r.sess.pos, Var: v.String(), Type: t.String()})
		return nil, false
	}
	r.logger.Debug("instantiated", "var", v.String(), "type", t.String(), "rule", rule)
	return t, true
}

var throwableUppers = []string{jtypes.ObjectName, jtypes.ThrowableName, jtypes.ExceptionName}

// onlyExceptionUppers reports whether every proper upper bound of v is one of
// Object, Throwable or Exception
func (b BoundSet) onlyExceptionUppers(v InferenceVariable) bool {
	for _, bound := range b.Bounds() {
		sb, ok := bound.(*SimpleBound)
		if !ok || sb.Op != OpSubtype || sb.Left != SyntheticType(v) {
			continue
		}
		for _, m := range members(sb.Right) {
			if !IsProper(m) {
				continue
			}
			c, ok := AsType(m).(*jtypes.Class)
			if !ok || !slices.Contains(throwableUppers, c.Name) {
				return false
			}
		}
	}
	return true
}

// involvesCapture reports whether a clique holds a capture relation or one of
// the variables a capture relation binds
func (b BoundSet) involvesCapture(c Clique) bool {
	for _, n := range c.Nodes {
		if !n.IsVar() {
			return true
		}
	}
	for _, bound := range b.Bounds() {
		cr, ok := bound.(*CaptureRelation)
		if !ok {
			continue
		}
		for _, v := range c.Vars() {
			if cr.captures(v) {
				return true
			}
		}
	}
	return false
}

// apply records the instantiations in subst and substitutes them into every
// bound. Bounds that no longer mention any variable are checked again by
// reduction, and the result is incorporated.
func (r *resolver) apply(b BoundSet, subst Substitution) BoundSet {
	var resolutions []Bound
	for _, v := range slices.SortedFunc(maps.Keys(subst), compareVars) {
		resolutions = append(resolutions, &Resolution{Var: v, Type: subst[v]})
	}

	kept := NewBoundSet()
	if !b.IsBoundable() {
		kept = kept.WithFalse()
	}
	for _, v := range b.Thrown() {
		kept = kept.WithThrown(v)
	}
	var recheck []ConstraintFormula
	for _, bound := range b.Subst(subst).Bounds() {
		if sb, ok := bound.(*SimpleBound); ok && sb.Mentioned().Empty() {
			recheck = append(recheck, sb.asFormula())
			continue
		}
		kept = kept.With(bound)
	}
	kept = kept.With(resolutions...)

	checked := NewConstraintFormulaSet(recheck...).Reduce(r.sess, r.unchecked)
	return kept.Merge(checked).Incorporate(r.sess, r.unchecked)
}
