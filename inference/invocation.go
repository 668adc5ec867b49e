package inference

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/cottand/jinfer/ast"
	"github.com/cottand/jinfer/inference/infererr"
	"github.com/cottand/jinfer/internal/log"
	"github.com/cottand/jinfer/jtypes"
	"github.com/cottand/jinfer/util"
	xset "github.com/xtgo/set"
)

// Options configure an Engine. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	// Fuel bounds the constraint reduction steps of a single inference; zero
	// means the default
	Fuel int
}

// Engine infers the type arguments of generic method and constructor
// invocations (JLS 18.5.1 and 18.5.2) against a TypePool.
//
// An Engine holds no per-inference state: Infer may be called from several
// goroutines at once as long as the TypePool is safe for concurrent reads.
type Engine struct {
	pool TypePool
	opts Options
}

func NewEngine(pool TypePool, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.DefaultLogger
	}
	if opts.Fuel <= 0 {
		opts.Fuel = defaultStartingFuel
	}
	return &Engine{pool: pool, opts: opts}
}

// Infer runs inference for one call site.
//
// Compile errors do not make Infer return an error: they are collected in
// errs, and result is then the degraded Inferences where every type
// parameter is jtypes.Error. A non-nil err wraps infererr.ErrUnsupported and
// means the call site needs a part of inference that is not implemented;
// result is nil in that case.
func (e *Engine) Infer(callee *Callee, site *CallSite) (result *Inferences, errs *infererr.Errors, err error) {
	sess := NewSession(e.pool, e.opts.Logger.With("callee", callee.Name)).At(site.Range)
	sess.fuel = e.opts.Fuel
	defer func() { errs = sess.Errors() }()
	defer infererr.Recover(&err)

	inv := &invocation{
		sess:   sess,
		logger: sess.logger.With("section", "inference.invocation"),
		callee: callee,
		site:   site,
	}
	return inv.run(), nil, nil
}

type phase int

const (
	phaseThetaBuilt phase = iota
	phaseB1Built
	phaseApplicabilityChecked
	phaseB2Computed
	phaseB3Computed
	phaseB4Computed
	phaseResolved
	phaseFailed
)

var phaseNames = [...]string{
	phaseThetaBuilt:           "THETA_BUILT",
	phaseB1Built:              "B0_B1_BUILT",
	phaseApplicabilityChecked: "APPLICABILITY_CHECKED",
	phaseB2Computed:           "B2_COMPUTED",
	phaseB3Computed:           "B3_COMPUTED",
	phaseB4Computed:           "B4_COMPUTED",
	phaseResolved:             "RESOLVED",
	phaseFailed:               "FAILED",
}

func (p phase) String() string { return phaseNames[p] }

// invocation is the state of inference for one call site. Phases only move forward.
type invocation struct {
	sess      *Session
	logger    *slog.Logger
	callee    *Callee
	site      *CallSite
	theta     *Theta
	phase     phase
	unchecked []util.Pair[jtypes.Type, jtypes.Type]
	// order is the resolution order of B4, kept for diagnostics
	order string
}

// applicable is the outcome of the first invocation mode that succeeded
type applicable struct {
	mode Mode
	// formals holds the declared formal of each actual, variable arity expanded
	formals   []jtypes.Type
	pertinent []bool
	b2        BoundSet
	unchecked []util.Pair[jtypes.Type, jtypes.Type]
}

func (inv *invocation) enter(p phase, attrs ...any) {
	inv.phase = p
	inv.logger.Debug("phase "+p.String(), attrs...)
}

func (inv *invocation) run() *Inferences {
	inv.theta = NewTheta(inv.sess, inv.callee)
	inv.enter(phaseThetaBuilt, "vars", len(inv.theta.Params()))

	b1 := inv.declaredBounds()
	inv.enter(phaseB1Built, "bounds", b1.String())

	app, ok := inv.applicability(b1)
	if !ok {
		inv.sess.report(infererr.NewNotApplicable{
			Positioner: inv.site.Range,
			Callee:     inv.callee.String(),
			Args:       inv.site.argStrings(),
		})
		return inv.fail(ModeNone)
	}
	inv.unchecked = app.unchecked
	inv.enter(phaseApplicabilityChecked, "mode", app.mode.String())
	inv.enter(phaseB2Computed, "bounds", app.b2.String())

	b3 := inv.targetBounds(app.b2)
	inv.enter(phaseB3Computed)

	b4 := inv.deferredBounds(b3, app)
	inv.enter(phaseB4Computed, "bounds", b4.String())
	if !b4.IsBoundable() {
		inv.sess.report(infererr.NewUnboundable{Positioner: inv.site.Range, Callee: inv.callee.Name, Phase: "B4"})
		return inv.fail(app.mode)
	}
	inv.order = b4.ResolutionOrder().String()

	resolved := b4.Resolve(inv.sess, inv.recordUnchecked)
	if !resolved.IsBoundable() {
		inv.sess.report(infererr.NewUnboundable{Positioner: inv.site.Range, Callee: inv.callee.Name, Phase: "resolution"})
		return inv.fail(app.mode)
	}
	subst := resolved.Resolutions()
	if missing := inv.unresolved(subst); len(missing) > 0 {
		inv.sess.report(infererr.NewUnresolvable{Positioner: inv.site.Range, Callee: inv.callee.Name, Vars: missing})
		return inv.fail(app.mode)
	}
	result := inv.inferences(app.mode, subst)
	inv.enter(phaseResolved, "result", result.String())
	return result
}

func (inv *invocation) fail(mode Mode) *Inferences {
	inv.enter(phaseFailed)
	return errorInferences(inv.theta.Params(), mode)
}

func (inv *invocation) recordUnchecked(source, target jtypes.Type) {
	inv.unchecked = appendUnchecked(inv.unchecked, source, target)
}

func appendUnchecked(pairs []util.Pair[jtypes.Type, jtypes.Type], source, target jtypes.Type) []util.Pair[jtypes.Type, jtypes.Type] {
	for _, p := range pairs {
		if jtypes.Equal(p.Fst, source) && jtypes.Equal(p.Snd, target) {
			return pairs
		}
	}
	return append(pairs, util.NewPair(source, target))
}

// declaredBounds builds B1: each variable is bounded above by the declared
// bounds of its type parameter, or Object
func (inv *invocation) declaredBounds() BoundSet {
	b := NewBoundSet()
	for _, tp := range inv.callee.TypeParams {
		v, _ := inv.theta.Var(tp.Name)
		var bounds []SyntheticType
		for _, declared := range tp.DeclaredBounds() {
			if declared == nil || declared == jtypes.Error || !jtypes.IsReference(declared) {
				inv.sess.report(infererr.NewMissingBounds{
					Positioner: inv.site.Range,
					TypeParam:  tp.Name,
					Reason:     "a declared bound is not a known reference type",
				})
				bounds = nil
				break
			}
			bounds = append(bounds, inv.theta.CrossSynthetic(declared))
		}
		if len(bounds) == 0 {
			bounds = []SyntheticType{syntheticOf(inv.sess.pool.Object())}
		}
		b = b.With(NewSimpleBound(v, OpSubtype, IntersectionOf(bounds...)))
	}
	for _, t := range inv.callee.Throws {
		if tv, ok := t.(jtypes.TypeVar); ok && inv.theta.isParam(tv) {
			v, _ := inv.theta.Var(tv.Name)
			b = b.WithThrown(v)
		}
	}
	return b
}

var invocationModes = []Mode{ModeStrict, ModeLoose, ModeVariableArity}

// applicability tries strict, loose and variable arity invocation in turn (JLS
// 15.12.2.2 to 15.12.2.4); the first mode yielding a boundable B2 is kept
func (inv *invocation) applicability(b1 BoundSet) (*applicable, bool) {
	for _, mode := range invocationModes {
		formals, ok := inv.formalsFor(mode)
		if !ok {
			inv.logger.Debug("arity mismatch", "mode", mode.String())
			continue
		}
		if app, ok := inv.tryMode(mode, formals, b1); ok {
			return app, true
		}
		inv.logger.Debug("not applicable", "mode", mode.String())
	}
	return nil, false
}

func (inv *invocation) formalsFor(mode Mode) ([]jtypes.Type, bool) {
	formals := inv.callee.Formals
	n, k := len(formals), len(inv.site.Args)
	if mode != ModeVariableArity {
		return formals, n == k
	}
	if !inv.callee.Variadic || n == 0 || k < n-1 {
		return nil, false
	}
	last, ok := formals[n-1].(*jtypes.Array)
	if !ok {
		return nil, false
	}
	expanded := slices.Clone(formals[:n-1])
	for i := n - 1; i < k; i++ {
		expanded = append(expanded, last.Elem)
	}
	return expanded, true
}

func (inv *invocation) tryMode(mode Mode, formals []jtypes.Type, b1 BoundSet) (*applicable, bool) {
	app := &applicable{mode: mode, formals: formals, pertinent: make([]bool, len(formals))}
	var formulas []ConstraintFormula
	for i, arg := range inv.site.Args {
		app.pertinent[i] = inv.pertinentToApplicability(arg, formals[i])
		if !app.pertinent[i] {
			continue
		}
		if mode == ModeStrict && inv.primitiveMismatch(arg, formals[i]) {
			inv.logger.Debug("primitive and reference types mixed", "arg", arg.String(), "formal", formals[i].String())
			return nil, false
		}
		formulas = append(formulas, &ArgFormula{Path: ast.PathOf(arg), Formal: inv.theta.CrossSynthetic(formals[i])})
	}

	record := func(source, target jtypes.Type) {
		app.unchecked = appendUnchecked(app.unchecked, source, target)
	}
	reduced := NewConstraintFormulaSet(formulas...).Reduce(inv.sess, record)
	app.b2 = b1.Merge(reduced).Incorporate(inv.sess, record)
	return app, app.b2.IsBoundable()
}

// primitiveMismatch reports whether a strict invocation would need boxing or
// unboxing to pass arg for formal
func (inv *invocation) primitiveMismatch(arg ast.Expr, formal jtypes.Type) bool {
	if !inv.sess.isStandalone(arg) {
		return false
	}
	t, ok := inv.sess.staticType(arg)
	if !ok {
		return false
	}
	return jtypes.IsPrimitive(t) != jtypes.IsPrimitive(formal)
}

// targetBounds derives B3. Target typing of poly invocations is not
// implemented, so a poly invocation whose return type mentions inference
// variables is unsupported.
func (inv *invocation) targetBounds(b2 BoundSet) BoundSet {
	if !inv.site.PolyContext || inv.callee.Return == nil {
		return b2
	}
	if !isProperType(inv.theta.Cross(inv.callee.Return)) {
		infererr.Bail("target typing the result %s of %s", inv.callee.Return, inv.callee.Name)
	}
	return b2
}

// deferredBounds derives B4 by adding the constraints of the arguments that
// were not pertinent to applicability
func (inv *invocation) deferredBounds(b3 BoundSet, app *applicable) BoundSet {
	var formulas []ConstraintFormula
	for i, arg := range inv.site.Args {
		if app.pertinent[i] {
			continue
		}
		formulas = append(formulas, &ArgFormula{Path: ast.PathOf(arg), Formal: inv.theta.CrossSynthetic(app.formals[i])})
	}
	if len(formulas) == 0 {
		return b3
	}
	reduced := NewConstraintFormulaSet(formulas...).Reduce(inv.sess, inv.recordUnchecked)
	return b3.Merge(reduced).Incorporate(inv.sess, inv.recordUnchecked)
}

// unresolved returns the type parameters whose variables have no resolution
func (inv *invocation) unresolved(subst Substitution) []string {
	vars := inv.theta.Vars()
	wanted := make([]int, 0, len(vars))
	for _, v := range vars {
		wanted = append(wanted, v.Index)
	}
	resolved := make([]int, 0, len(subst))
	for v := range maps.Keys(subst) {
		resolved = append(resolved, v.Index)
	}
	wanted, resolved = xset.Ints(wanted), xset.Ints(resolved)
	if xset.IntsChk(xset.IsSub, slices.Clip(wanted), resolved...) {
		return nil
	}
	var missing []string
	for _, i := range xset.IntsDo(xset.Diff, slices.Clip(wanted), resolved...) {
		name, _ := inv.theta.Param(InferenceVariable{Index: i})
		missing = append(missing, name)
	}
	return missing
}

func (inv *invocation) inferences(mode Mode, subst Substitution) *Inferences {
	result := &Inferences{
		TypeParams:      inv.theta.Params(),
		Resolutions:     make(map[string]jtypes.Type, len(subst)),
		Mode:            mode,
		ResolutionOrder: inv.order,
	}
	for _, name := range inv.theta.Params() {
		v, _ := inv.theta.Var(name)
		result.Resolutions[name] = inv.theta.Export(subst[v])
	}

	ret := inv.callee.Return
	if ret == nil {
		ret = jtypes.Void
	}
	if len(inv.unchecked) == 0 {
		result.NormalResultType = inv.theta.Export(substType(inv.theta.Cross(ret), subst))
		for _, t := range inv.callee.Throws {
			result.ThrownTypes = append(result.ThrownTypes, inv.theta.Export(substType(inv.theta.Cross(t), subst)))
		}
		return result
	}

	// JLS 18.5.2.1: an applicability that needs unchecked conversion erases the result
	result.DependsOnUncheckedConversion = true
	result.NormalResultType = inv.erase(ret, 0)
	for _, t := range inv.callee.Throws {
		result.ThrownTypes = append(result.ThrownTypes, inv.erase(t, 0))
	}
	for _, p := range inv.unchecked {
		source, target := inv.theta.Export(p.Fst), inv.theta.Export(p.Snd)
		result.Unchecked = append(result.Unchecked, source.String()+" -> "+target.String())
	}
	inv.sess.report(infererr.NewUncheckedConversion{
		Positioner:  inv.site.Range,
		Callee:      inv.callee.Name,
		Conversions: result.Unchecked,
	})
	return result
}

// erase is the erasure of a declared signature type: a type parameter erases
// to the erasure of its leftmost bound
func (inv *invocation) erase(t jtypes.Type, depth int) jtypes.Type {
	switch t := t.(type) {
	case jtypes.TypeVar:
		if !inv.theta.isParam(t) || depth > len(inv.callee.TypeParams) {
			return inv.sess.pool.Erasure(t)
		}
		for _, tp := range inv.callee.TypeParams {
			if tp.Name == t.Name {
				if bounds := tp.DeclaredBounds(); len(bounds) > 0 && bounds[0] != nil {
					return inv.erase(bounds[0], depth+1)
				}
			}
		}
		return inv.sess.pool.Object()
	case *jtypes.Array:
		return jtypes.ArrayOf(inv.erase(t.Elem, depth))
	default:
		return inv.sess.pool.Erasure(t)
	}
}
