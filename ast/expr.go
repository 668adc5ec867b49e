package ast

import (
	"encoding/binary"
	"hash/fnv"
	"strings"

	"github.com/cottand/jinfer/jtypes"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Positioner
	Hash() uint64
	String() string
}

// Expr is an argument expression of a call site, as produced by the parser and
// attributed by name resolution.
type Expr interface {
	Node
	exprNode() // Marker method to distinguish expressions
}

var (
	_ Expr = (*Name)(nil)
	_ Expr = (*Literal)(nil)
	_ Expr = (*Parens)(nil)
	_ Expr = (*Conditional)(nil)
	_ Expr = (*MethodCall)(nil)
	_ Expr = (*Lambda)(nil)
	_ Expr = (*MethodRef)(nil)
)

// Name is a reference to a local variable or field.
type Name struct {
	Range
	Ident string
	// Type is the static type; nil when attribution did not compute it
	Type jtypes.Type
}

func (e *Name) exprNode()      {}
func (e *Name) String() string { return e.Ident }

func (e *Name) Hash() uint64 {
	return hashNode("Name", e.Range, e.Ident, typeKey(e.Type))
}

// Literal is a literal value, null included.
type Literal struct {
	Range
	Value string
	Type  jtypes.Type
}

func (e *Literal) exprNode()      {}
func (e *Literal) String() string { return e.Value }

func (e *Literal) Hash() uint64 {
	return hashNode("Literal", e.Range, e.Value, typeKey(e.Type))
}

type Parens struct {
	Range
	Inner Expr
}

func (e *Parens) exprNode()      {}
func (e *Parens) String() string { return "(" + e.Inner.String() + ")" }

func (e *Parens) Hash() uint64 {
	return hashNode("Parens", e.Range, "", "", e.Inner)
}

// Conditional is the ternary cond ? Then : Else
type Conditional struct {
	Range
	Cond Expr
	Then Expr
	Else Expr
}

func (e *Conditional) exprNode() {}
func (e *Conditional) String() string {
	return e.Cond.String() + " ? " + e.Then.String() + " : " + e.Else.String()
}

func (e *Conditional) Hash() uint64 {
	return hashNode("Conditional", e.Range, "", "", e.Cond, e.Then, e.Else)
}

// MethodCall is a method invocation or class instance creation.
type MethodCall struct {
	Range
	Name string
	Args []Expr
	// Type is the static type, for calls whose type does not depend on their context
	Type jtypes.Type
	// InfersTypeArgs is set for calls of generic methods without explicit type
	// arguments and for diamond instance creation; such calls are poly expressions
	InfersTypeArgs bool
	Constructor    bool
}

func (e *MethodCall) exprNode() {}
func (e *MethodCall) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	prefix := ""
	if e.Constructor {
		prefix = "new "
	}
	return prefix + e.Name + "(" + strings.Join(args, ", ") + ")"
}

func (e *MethodCall) Hash() uint64 {
	flags := ""
	if e.InfersTypeArgs {
		flags += "infer"
	}
	if e.Constructor {
		flags += "new"
	}
	return hashNode("MethodCall", e.Range, e.Name+flags, typeKey(e.Type), e.Args...)
}

type Lambda struct {
	Range
	Params []string
	// ParamTypes is nil for implicitly typed lambdas
	ParamTypes []jtypes.Type
	Body       string
}

// Explicit reports whether the lambda declares the types of its parameters.
// A lambda without parameters counts as explicitly typed.
func (e *Lambda) Explicit() bool {
	return len(e.Params) == 0 || len(e.ParamTypes) == len(e.Params)
}

func (e *Lambda) exprNode() {}
func (e *Lambda) String() string {
	params := make([]string, len(e.Params))
	for i, p := range e.Params {
		if i < len(e.ParamTypes) {
			params[i] = e.ParamTypes[i].String() + " " + p
		} else {
			params[i] = p
		}
	}
	return "(" + strings.Join(params, ", ") + ") -> " + e.Body
}

func (e *Lambda) Hash() uint64 {
	return hashNode("Lambda", e.Range, strings.Join(e.Params, ",")+"->"+e.Body, "")
}

// MethodRef is Qualifier::Method
type MethodRef struct {
	Range
	Qualifier string
	Method    string
	// Exact is set when the reference denotes exactly one, non generic, non varargs method
	Exact bool
}

func (e *MethodRef) exprNode()      {}
func (e *MethodRef) String() string { return e.Qualifier + "::" + e.Method }

func (e *MethodRef) Hash() uint64 {
	exact := ""
	if e.Exact {
		exact = "exact"
	}
	return hashNode("MethodRef", e.Range, e.Qualifier+"::"+e.Method, exact)
}

// Unparen strips any number of enclosing parentheses
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*Parens)
		if !ok {
			return e
		}
		e = p.Inner
	}
}

func typeKey(t jtypes.Type) string {
	if t == nil {
		return ""
	}
	return jtypes.Key(t)
}

func hashNode(kind string, r Range, text string, typ string, children ...Expr) uint64 {
	h := fnv.New64a()
	arr := []byte(kind)
	_, _ = h.Write([]byte(text))
	_, _ = h.Write([]byte(typ))
	arr = binary.LittleEndian.AppendUint64(arr, r.Hash())
	for _, child := range children {
		arr = binary.LittleEndian.AppendUint64(arr, child.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}
