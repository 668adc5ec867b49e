package inference

import (
	"github.com/benbjohnson/immutable"
	"github.com/cottand/jinfer/jtypes"
)

// Theta maps the type parameters of a callee onto the inference variables of
// one session, and back. It is never modified after construction.
type Theta struct {
	owner   string
	params  []string
	forward *immutable.Map[string, InferenceVariable]
	reverse *immutable.Map[int, string]
}

// NewTheta allocates one fresh inference variable per type parameter of callee
func NewTheta(sess *Session, callee *Callee) *Theta {
	forward := immutable.NewMap[string, InferenceVariable](nil)
	reverse := immutable.NewMap[int, string](nil)
	params := make([]string, 0, len(callee.TypeParams))
	for _, tp := range callee.TypeParams {
		v := sess.Fresh()
		forward = forward.Set(tp.Name, v)
		reverse = reverse.Set(v.Index, tp.Name)
		params = append(params, tp.Name)
	}
	return &Theta{owner: callee.Name, params: params, forward: forward, reverse: reverse}
}

// Var returns the inference variable standing for the type parameter name
func (th *Theta) Var(name string) (InferenceVariable, bool) {
	return th.forward.Get(name)
}

// Param returns the type parameter an inference variable stands for
func (th *Theta) Param(v InferenceVariable) (string, bool) {
	return th.reverse.Get(v.Index)
}

// Vars are the inference variables in type parameter declaration order
func (th *Theta) Vars() []InferenceVariable {
	vars := make([]InferenceVariable, 0, len(th.params))
	for _, p := range th.params {
		v, _ := th.forward.Get(p)
		vars = append(vars, v)
	}
	return vars
}

// Params are the type parameter names in declaration order
func (th *Theta) Params() []string { return th.params }

// isParam reports whether tv is one of the callee's type parameters
func (th *Theta) isParam(tv jtypes.TypeVar) bool {
	if tv.Owner != th.owner {
		return false
	}
	_, ok := th.forward.Get(tv.Name)
	return ok
}

// Cross translates a type of the callee's signature into inference variable
// space: every mention of a type parameter becomes its inference variable
func (th *Theta) Cross(t jtypes.Type) jtypes.Type {
	return jtypes.Substitute(t, func(tv jtypes.TypeVar) (jtypes.Type, bool) {
		if !th.isParam(tv) {
			return nil, false
		}
		v, _ := th.forward.Get(tv.Name)
		return v.AsTypeVar(), true
	})
}

// CrossSynthetic is Cross, lifted to a synthetic type
func (th *Theta) CrossSynthetic(t jtypes.Type) SyntheticType {
	return syntheticOf(th.Cross(t))
}

// Export translates a type out of inference variable space. Inference variables
// of this theta become the type parameters they stand for.
func (th *Theta) Export(t jtypes.Type) jtypes.Type {
	return jtypes.Substitute(t, func(tv jtypes.TypeVar) (jtypes.Type, bool) {
		v, ok := asInferenceVariable(tv)
		if !ok {
			return nil, false
		}
		name, ok := th.reverse.Get(v.Index)
		if !ok {
			return nil, false
		}
		return jtypes.TypeVar{Name: name, Owner: th.owner}, true
	})
}
