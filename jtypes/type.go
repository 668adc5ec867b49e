package jtypes

import (
	"fmt"
	"hash/fnv"
	"iter"
	"strings"
)

// Type is a Java type as seen by the type checker.
//
// Implementations are immutable; two types are the same type if and only if
// Equal reports so. Pointer identity is only used to detect that a
// substitution changed nothing.
type Type interface {
	fmt.Stringer
	Hash() uint64
	isType()
}

var (
	_ Type = Primitive{}
	_ Type = (*Class)(nil)
	_ Type = TypeVar{}
	_ Type = (*Array)(nil)
	_ Type = (*Intersection)(nil)
	_ Type = (*special)(nil)
)

type PrimitiveKind string

const (
	Boolean PrimitiveKind = "boolean"
	Byte    PrimitiveKind = "byte"
	Char    PrimitiveKind = "char"
	Short   PrimitiveKind = "short"
	Int     PrimitiveKind = "int"
	Long    PrimitiveKind = "long"
	Float   PrimitiveKind = "float"
	Double  PrimitiveKind = "double"
)

var primitiveKinds = []PrimitiveKind{Boolean, Byte, Char, Short, Int, Long, Float, Double}

type Primitive struct {
	Kind PrimitiveKind
}

func (Primitive) isType()          {}
func (p Primitive) String() string { return string(p.Kind) }
func (p Primitive) Hash() uint64   { return hashOf(p) }

// PrimitiveNamed returns the primitive type called name, if there is one
func PrimitiveNamed(name string) (Primitive, bool) {
	for _, k := range primitiveKinds {
		if string(k) == name {
			return Primitive{Kind: k}, true
		}
	}
	return Primitive{}, false
}

type WildcardKind int

const (
	Exact WildcardKind = iota
	Extends
	Super
	Unbounded
)

// TypeArg is one argument of a parameterized type: either a type or a wildcard
type TypeArg struct {
	Kind WildcardKind
	// Type is nil for Unbounded
	Type Type
}

func ExactArg(t Type) TypeArg { return TypeArg{Kind: Exact, Type: t} }

func (a TypeArg) IsWildcard() bool { return a.Kind != Exact }

func (a TypeArg) String() string {
	switch a.Kind {
	case Extends:
		return "? extends " + a.Type.String()
	case Super:
		return "? super " + a.Type.String()
	case Unbounded:
		return "?"
	default:
		return a.Type.String()
	}
}

// Class is a class or interface type, possibly parameterized.
// A Class with no Args whose declaration has type parameters is a raw type.
type Class struct {
	Name string
	Args []TypeArg
	// Outer is the enclosing parameterized type of an inner class, if any
	Outer *Class
}

func (*Class) isType()        {}
func (c *Class) Hash() uint64 { return hashOf(c) }

func (c *Class) String() string {
	sb := &strings.Builder{}
	writeType(sb, c, false)
	return sb.String()
}

// IsRaw reports whether c carries no type arguments
func (c *Class) IsRaw() bool { return len(c.Args) == 0 }

// SimpleName is the part of the name after the last dot
func (c *Class) SimpleName() string {
	if i := strings.LastIndexByte(c.Name, '.'); i >= 0 {
		return c.Name[i+1:]
	}
	return c.Name
}

func ClassOf(name string, args ...Type) *Class {
	c := &Class{Name: name}
	for _, arg := range args {
		c.Args = append(c.Args, ExactArg(arg))
	}
	return c
}

// TypeVar refers to a declared type variable.
//
// Owner distinguishes type variables that share a name: for type parameters it
// is the canonical name of the declaring method or class.
type TypeVar struct {
	Name  string
	Owner string
}

func (TypeVar) isType()          {}
func (v TypeVar) String() string { return v.Name }
func (v TypeVar) Hash() uint64   { return hashOf(v) }

type Array struct {
	Elem Type
}

func (*Array) isType()          {}
func (a *Array) String() string { return a.Elem.String() + "[]" }
func (a *Array) Hash() uint64   { return hashOf(a) }

func ArrayOf(elem Type) *Array { return &Array{Elem: elem} }

// Intersection is the type A & B & ...; construct with IntersectionOf
type Intersection struct {
	Members []Type
}

func (*Intersection) isType()   {}
func (i *Intersection) Hash() uint64 { return hashOf(i) }

func (i *Intersection) String() string {
	sb := &strings.Builder{}
	writeType(sb, i, false)
	return sb.String()
}

// IntersectionOf flattens nested intersections and drops duplicates.
// A single member is returned as is.
func IntersectionOf(members ...Type) Type {
	var flat []Type
	var add func(t Type)
	add = func(t Type) {
		if inter, ok := t.(*Intersection); ok {
			for _, m := range inter.Members {
				add(m)
			}
			return
		}
		for _, existing := range flat {
			if Equal(existing, t) {
				return
			}
		}
		flat = append(flat, t)
	}
	for _, m := range members {
		add(m)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Intersection{Members: flat}
}

type special struct {
	name string
}

func (*special) isType()          {}
func (s *special) String() string { return s.name }
func (s *special) Hash() uint64   { return hashOf(s) }

var (
	// Null is the type of the null literal
	Null Type = &special{name: "null"}
	Void Type = &special{name: "void"}
	// Error stands for a type that could not be computed
	Error Type = &special{name: "<error>"}
)

func IsPrimitive(t Type) bool {
	_, ok := t.(Primitive)
	return ok
}

// IsReference reports whether t is a class, interface, array, type variable or intersection type
func IsReference(t Type) bool {
	switch t.(type) {
	case *Class, *Array, TypeVar, *Intersection:
		return true
	}
	return false
}

func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Key(a) == Key(b)
}

// Key is a canonical textual form of t which, unlike String, also
// distinguishes type variables by owner
func Key(t Type) string {
	sb := &strings.Builder{}
	writeType(sb, t, true)
	return sb.String()
}

func hashOf(t Type) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(Key(t)))
	return h.Sum64()
}

func writeType(sb *strings.Builder, t Type, withOwners bool) {
	switch t := t.(type) {
	case *Class:
		if t.Outer != nil {
			writeType(sb, t.Outer, withOwners)
			sb.WriteString(".")
			sb.WriteString(t.SimpleName())
		} else {
			sb.WriteString(t.Name)
		}
		if len(t.Args) > 0 {
			sb.WriteString("<")
			for i, arg := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				switch arg.Kind {
				case Unbounded:
					sb.WriteString("?")
				case Extends:
					sb.WriteString("? extends ")
					writeType(sb, arg.Type, withOwners)
				case Super:
					sb.WriteString("? super ")
					writeType(sb, arg.Type, withOwners)
				default:
					writeType(sb, arg.Type, withOwners)
				}
			}
			sb.WriteString(">")
		}
	case *Array:
		writeType(sb, t.Elem, withOwners)
		sb.WriteString("[]")
	case *Intersection:
		for i, m := range t.Members {
			if i > 0 {
				sb.WriteString(" & ")
			}
			writeType(sb, m, withOwners)
		}
	case TypeVar:
		sb.WriteString(t.Name)
		if withOwners && t.Owner != "" {
			sb.WriteString("@")
			sb.WriteString(t.Owner)
		}
	case nil:
		sb.WriteString("<nil>")
	default:
		sb.WriteString(t.String())
	}
}

// TypeVars yields every type variable mentioned by t, including inside type
// arguments, wildcard bounds, array elements and enclosing types
func TypeVars(t Type) iter.Seq[TypeVar] {
	return func(yield func(TypeVar) bool) {
		walkVars(t, yield)
	}
}

func walkVars(t Type, yield func(TypeVar) bool) bool {
	switch t := t.(type) {
	case TypeVar:
		return yield(t)
	case *Class:
		if t.Outer != nil && !walkVars(t.Outer, yield) {
			return false
		}
		for _, arg := range t.Args {
			if arg.Type != nil && !walkVars(arg.Type, yield) {
				return false
			}
		}
	case *Array:
		return walkVars(t.Elem, yield)
	case *Intersection:
		for _, m := range t.Members {
			if !walkVars(m, yield) {
				return false
			}
		}
	}
	return true
}

// Substitute replaces type variables for which f returns true.
// If nothing was replaced, t itself is returned.
func Substitute(t Type, f func(TypeVar) (Type, bool)) Type {
	switch t := t.(type) {
	case TypeVar:
		if replaced, ok := f(t); ok {
			return replaced
		}
		return t
	case *Class:
		var outer *Class
		changed := false
		if t.Outer != nil {
			newOuter := Substitute(t.Outer, f)
			if asClass, ok := newOuter.(*Class); ok && newOuter != Type(t.Outer) {
				outer, changed = asClass, true
			} else {
				outer = t.Outer
			}
		}
		args := make([]TypeArg, len(t.Args))
		for i, arg := range t.Args {
			args[i] = arg
			if arg.Type == nil {
				continue
			}
			if newArg := Substitute(arg.Type, f); newArg != arg.Type {
				args[i].Type = newArg
				changed = true
			}
		}
		if !changed {
			return t
		}
		return &Class{Name: t.Name, Args: args, Outer: outer}
	case *Array:
		if elem := Substitute(t.Elem, f); elem != t.Elem {
			return &Array{Elem: elem}
		}
		return t
	case *Intersection:
		members := make([]Type, len(t.Members))
		changed := false
		for i, m := range t.Members {
			members[i] = Substitute(m, f)
			changed = changed || members[i] != m
		}
		if !changed {
			return t
		}
		return IntersectionOf(members...)
	default:
		return t
	}
}

// SubstituteMap replaces type variables by key, see Key
func SubstituteMap(t Type, m map[TypeVar]Type) Type {
	if len(m) == 0 {
		return t
	}
	return Substitute(t, func(v TypeVar) (Type, bool) {
		r, ok := m[v]
		return r, ok
	})
}
