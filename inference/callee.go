package inference

import (
	"strings"

	"github.com/cottand/jinfer/ast"
	"github.com/cottand/jinfer/jtypes"
)

// TypeParam is a type parameter declared by a generic method or constructor.
// Signature types reference it as jtypes.TypeVar{Name: Name, Owner: callee name}.
type TypeParam struct {
	Name string
	// Super is the class bound, nil when only interfaces (or nothing) bound the parameter
	Super      jtypes.Type
	Interfaces []jtypes.Type
}

// DeclaredBounds are the declared bounds, class bound first
func (tp TypeParam) DeclaredBounds() []jtypes.Type {
	var bounds []jtypes.Type
	if tp.Super != nil {
		bounds = append(bounds, tp.Super)
	}
	return append(bounds, tp.Interfaces...)
}

func (tp TypeParam) String() string {
	bounds := tp.DeclaredBounds()
	if len(bounds) == 0 {
		return tp.Name
	}
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		if b == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = b.String()
	}
	return tp.Name + " extends " + strings.Join(parts, " & ")
}

// Callee describes the method or constructor a call site invokes
type Callee struct {
	// Name is the canonical name, such as java.util.Collections.max
	Name       string
	TypeParams []TypeParam
	Formals    []jtypes.Type
	// Variadic callees take their last formal, an array type, as a variable arity parameter
	Variadic bool
	Throws   []jtypes.Type
	Return   jtypes.Type
}

// TypeVar returns the type variable signature types use for the type parameter name
func (c *Callee) TypeVar(name string) jtypes.TypeVar {
	return jtypes.TypeVar{Name: name, Owner: c.Name}
}

func (c *Callee) String() string {
	sb := &strings.Builder{}
	if len(c.TypeParams) > 0 {
		params := make([]string, len(c.TypeParams))
		for i, tp := range c.TypeParams {
			params[i] = tp.String()
		}
		sb.WriteString("<" + strings.Join(params, ", ") + "> ")
	}
	if c.Return != nil {
		sb.WriteString(c.Return.String() + " ")
	}
	sb.WriteString(c.Name + "(")
	for i, f := range c.Formals {
		if i > 0 {
			sb.WriteString(", ")
		}
		if arr, ok := f.(*jtypes.Array); ok && c.Variadic && i == len(c.Formals)-1 {
			sb.WriteString(arr.Elem.String() + "...")
			continue
		}
		sb.WriteString(f.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// CallSite is an invocation expression whose type arguments are to be inferred
type CallSite struct {
	ast.Range
	Args []ast.Expr
	// PolyContext is set when the invocation appears where a target type is expected
	PolyContext bool
}

func (s *CallSite) argStrings() []string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return parts
}
