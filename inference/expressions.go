package inference

import (
	"github.com/cottand/jinfer/ast"
	"github.com/cottand/jinfer/jtypes"
)

// isStandalone reports whether the type of e does not depend on the context it
// appears in
func (s *Session) isStandalone(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Name, *ast.Literal:
		return true
	case *ast.MethodCall:
		return !e.InfersTypeArgs
	case *ast.Parens:
		return s.isStandalone(e.Inner)
	case *ast.Conditional:
		_, ok := s.conditionalPrimitive(e)
		return ok
	default:
		return false
	}
}

// staticType returns the type of a standalone expression, if attribution computed it
func (s *Session) staticType(e ast.Expr) (jtypes.Type, bool) {
	switch e := e.(type) {
	case *ast.Name:
		return e.Type, e.Type != nil
	case *ast.Literal:
		return e.Type, e.Type != nil
	case *ast.MethodCall:
		return e.Type, e.Type != nil
	case *ast.Parens:
		return s.staticType(e.Inner)
	case *ast.Conditional:
		prim, ok := s.conditionalPrimitive(e)
		if !ok {
			return nil, false
		}
		return prim, true
	default:
		return nil, false
	}
}

// conditionalPrimitive types boolean and numeric conditional expressions, the
// conditionals that are standalone expressions
func (s *Session) conditionalPrimitive(e *ast.Conditional) (jtypes.Primitive, bool) {
	branch := func(b ast.Expr) (jtypes.Primitive, bool) {
		if !s.isStandalone(b) {
			return jtypes.Primitive{}, false
		}
		t, ok := s.staticType(b)
		if !ok {
			return jtypes.Primitive{}, false
		}
		if prim, ok := t.(jtypes.Primitive); ok {
			return prim, true
		}
		return s.pool.Unbox(t)
	}
	thenType, ok := branch(e.Then)
	if !ok {
		return jtypes.Primitive{}, false
	}
	elseType, ok := branch(e.Else)
	if !ok {
		return jtypes.Primitive{}, false
	}
	if thenType == elseType {
		return thenType, true
	}
	if thenType.Kind == jtypes.Boolean || elseType.Kind == jtypes.Boolean {
		return jtypes.Primitive{}, false
	}
	return promote(thenType.Kind, elseType.Kind), true
}

func promote(a, b jtypes.PrimitiveKind) jtypes.Primitive {
	for _, wide := range []jtypes.PrimitiveKind{jtypes.Double, jtypes.Float, jtypes.Long} {
		if a == wide || b == wide {
			return jtypes.Primitive{Kind: wide}
		}
	}
	if (a == jtypes.Byte && b == jtypes.Short) || (a == jtypes.Short && b == jtypes.Byte) {
		return jtypes.Primitive{Kind: jtypes.Short}
	}
	return jtypes.Primitive{Kind: jtypes.Int}
}

// pertinentToApplicability decides whether an argument takes part in the
// applicability test (JLS 15.12.2.2) given the declared formal it is passed to
func (inv *invocation) pertinentToApplicability(e ast.Expr, formal jtypes.Type) bool {
	targetsTypeParam := func() bool {
		tv, ok := formal.(jtypes.TypeVar)
		return ok && len(inv.callee.TypeParams) > 0 && inv.theta.isParam(tv)
	}
	switch e := e.(type) {
	case *ast.Lambda:
		if !e.Explicit() {
			return false
		}
		return !targetsTypeParam()
	case *ast.MethodRef:
		if !e.Exact {
			return false
		}
		return !targetsTypeParam()
	case *ast.Parens:
		return inv.pertinentToApplicability(e.Inner, formal)
	case *ast.Conditional:
		return inv.pertinentToApplicability(e.Then, formal) && inv.pertinentToApplicability(e.Else, formal)
	default:
		return true
	}
}
