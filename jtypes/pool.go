package jtypes

import (
	"fmt"
	"strings"
)

const (
	ObjectName           = "java.lang.Object"
	StringName           = "java.lang.String"
	ThrowableName        = "java.lang.Throwable"
	ExceptionName        = "java.lang.Exception"
	RuntimeExceptionName = "java.lang.RuntimeException"
	CloneableName        = "java.lang.Cloneable"
	SerializableName     = "java.io.Serializable"
)

// ClassDecl is the declaration of a class or interface: its type parameters and
// direct supertypes. Type parameters are referenced from Super and Interfaces as
// TypeVar{Name: param, Owner: Name}.
type ClassDecl struct {
	Name       string
	Params     []string
	Super      *Class
	Interfaces []*Class
	Interface  bool
}

func (d *ClassDecl) IsGeneric() bool { return len(d.Params) > 0 }

// Pool is the reference type pool: a class table together with the subtyping,
// conversion and lattice operations the inference engine relies on.
//
// A Pool must be fully populated before it is shared; after that all methods
// are read only and safe for concurrent use.
type Pool struct {
	classes map[string]*ClassDecl
	// names in declaration order, used wherever iteration must be deterministic
	names []string
}

// NewPool returns a Pool that already knows the java.lang, java.io and java.util
// types commonly involved in inference
func NewPool() *Pool {
	p := &Pool{classes: make(map[string]*ClassDecl)}
	declareBuiltins(p)
	return p
}

// Declare adds a class to the table. Redeclaring a name is an error.
func (p *Pool) Declare(decl ClassDecl) error {
	if decl.Name == "" {
		return fmt.Errorf("class declaration without a name")
	}
	if _, ok := p.classes[decl.Name]; ok {
		return fmt.Errorf("class %s is already declared", decl.Name)
	}
	if decl.Super == nil && decl.Name != ObjectName && !decl.Interface {
		decl.Super = p.Object()
	}
	d := decl
	p.classes[decl.Name] = &d
	p.names = append(p.names, decl.Name)
	return nil
}

func (p *Pool) Lookup(name string) (*ClassDecl, bool) {
	d, ok := p.classes[name]
	return d, ok
}

// Resolve maps a possibly simple class name onto a declared canonical name
func (p *Pool) Resolve(name string) (string, bool) {
	if _, ok := p.classes[name]; ok {
		return name, true
	}
	if strings.Contains(name, ".") {
		return "", false
	}
	for _, pkg := range []string{"java.lang.", "java.util.", "java.io.", "java.util.function."} {
		if _, ok := p.classes[pkg+name]; ok {
			return pkg + name, true
		}
	}
	for _, declared := range p.names {
		if strings.HasSuffix(declared, "."+name) {
			return declared, true
		}
	}
	return "", false
}

func (p *Pool) Object() *Class { return &Class{Name: ObjectName} }

// IsGeneric reports whether className is declared with type parameters
func (p *Pool) IsGeneric(className string) bool {
	d, ok := p.classes[className]
	return ok && d.IsGeneric()
}

func (p *Pool) IsInterface(className string) bool {
	d, ok := p.classes[className]
	return ok && d.Interface
}

// directSupertypes are the supertypes named in the declaration of c, with the
// type arguments of c substituted in
func (p *Pool) directSupertypes(c *Class) []*Class {
	if c.Name == ObjectName {
		return nil
	}
	decl, ok := p.classes[c.Name]
	if !ok {
		return []*Class{p.Object()}
	}
	var declared []*Class
	if decl.Super != nil {
		declared = append(declared, decl.Super)
	}
	declared = append(declared, decl.Interfaces...)
	if decl.Interface && decl.Super == nil {
		declared = append(declared, p.Object())
	}

	raw := c.IsRaw() && decl.IsGeneric()
	result := make([]*Class, 0, len(declared))
	for _, s := range declared {
		if raw {
			result = append(result, &Class{Name: s.Name})
			continue
		}
		if len(c.Args) != len(decl.Params) {
			// malformed parameterization, fall back to erasure
			result = append(result, &Class{Name: s.Name})
			continue
		}
		result = append(result, substituteArgs(s, decl, c.Args).(*Class))
	}
	return result
}

// substituteArgs replaces the type parameters of decl inside t. A parameter used
// directly as a type argument takes the argument over unchanged, wildcards
// included; deeper occurrences of a wildcard argument use its upper bound.
func substituteArgs(t Type, decl *ClassDecl, args []TypeArg) Type {
	index := func(v TypeVar) int {
		if v.Owner != decl.Name {
			return -1
		}
		for i, param := range decl.Params {
			if param == v.Name {
				return i
			}
		}
		return -1
	}
	deep := func(v TypeVar) (Type, bool) {
		i := index(v)
		if i < 0 {
			return nil, false
		}
		arg := args[i]
		switch arg.Kind {
		case Exact, Extends:
			return arg.Type, true
		default:
			return &Class{Name: ObjectName}, true
		}
	}
	c, ok := t.(*Class)
	if !ok {
		return Substitute(t, deep)
	}
	newArgs := make([]TypeArg, len(c.Args))
	for i, arg := range c.Args {
		if v, isVar := arg.Type.(TypeVar); isVar && arg.Kind == Exact {
			if j := index(v); j >= 0 {
				newArgs[i] = args[j]
				continue
			}
		}
		newArgs[i] = arg
		if arg.Type != nil {
			newArgs[i].Type = Substitute(arg.Type, deep)
		}
	}
	var outer *Class
	if c.Outer != nil {
		outer = substituteArgs(c.Outer, decl, args).(*Class)
	}
	return &Class{Name: c.Name, Args: newArgs, Outer: outer}
}

// Supertypes returns t followed by all of its supertypes, breadth first and
// without duplicates
func (p *Pool) Supertypes(t Type) []Type {
	var result []Type
	seen := make(map[string]bool)
	add := func(t Type) bool {
		k := Key(t)
		if seen[k] {
			return false
		}
		seen[k] = true
		result = append(result, t)
		return true
	}
	var queue []Type
	push := func(t Type) {
		if add(t) {
			queue = append(queue, t)
		}
	}

	switch t := t.(type) {
	case *Intersection:
		for _, m := range t.Members {
			push(m)
		}
	default:
		push(t)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		switch current := current.(type) {
		case *Class:
			for _, s := range p.directSupertypes(current) {
				push(s)
			}
		case TypeVar:
			push(p.Object())
		case *Array:
			push(p.Object())
			push(&Class{Name: CloneableName})
			push(&Class{Name: SerializableName})
		}
	}
	return result
}

// AsSuper finds the supertype of t whose class is className
func (p *Pool) AsSuper(t Type, className string) (*Class, bool) {
	for _, s := range p.Supertypes(t) {
		if c, ok := s.(*Class); ok && c.Name == className {
			return c, true
		}
	}
	return nil, false
}

// IsSubtype decides sub <: sup. Success outcomes are Same, ConfirmSafe,
// ConvertingLossless (primitive widening) and ConfirmUnchecked, the latter when
// only the raw form of sup is a supertype of sub.
func (p *Pool) IsSubtype(sub, sup Type) CastOutcome {
	if Equal(sub, sup) {
		return Same
	}
	if sub == Error || sup == Error {
		return ConfirmSafe
	}
	if sub == Null {
		if IsReference(sup) {
			return ConfirmSafe
		}
		return Disjoint
	}
	if sup == Null || sub == Void || sup == Void {
		return Disjoint
	}

	if subPrim, ok := sub.(Primitive); ok {
		if supPrim, ok := sup.(Primitive); ok && widens(subPrim.Kind, supPrim.Kind) {
			return ConvertingLossless
		}
		return Disjoint
	}
	if IsPrimitive(sup) {
		return Disjoint
	}

	if inter, ok := sup.(*Intersection); ok {
		outcome := Same
		for _, m := range inter.Members {
			outcome = worst(outcome, p.IsSubtype(sub, m))
		}
		if outcome == Same {
			return ConfirmSafe
		}
		return outcome
	}
	if inter, ok := sub.(*Intersection); ok {
		best := Disjoint
		for _, m := range inter.Members {
			o := p.IsSubtype(m, sup)
			if o.Compatible() && o != ConfirmUnchecked {
				return ConfirmSafe
			}
			if o.Compatible() {
				best = o
			}
		}
		return best
	}

	switch sup := sup.(type) {
	case *Class:
		s, ok := p.AsSuper(sub, sup.Name)
		if !ok {
			return Disjoint
		}
		if sup.IsRaw() {
			return ConfirmSafe
		}
		if s.IsRaw() {
			return ConfirmUnchecked
		}
		if len(s.Args) != len(sup.Args) {
			return Disjoint
		}
		for i := range sup.Args {
			if !p.Contains(sup.Args[i], s.Args[i]) {
				return Disjoint
			}
		}
		if sup.Outer != nil && s.Outer != nil && !p.IsSubtype(s.Outer, sup.Outer).Compatible() {
			return Disjoint
		}
		return ConfirmSafe
	case *Array:
		subArr, ok := sub.(*Array)
		if !ok {
			return Disjoint
		}
		if IsPrimitive(subArr.Elem) || IsPrimitive(sup.Elem) {
			if Equal(subArr.Elem, sup.Elem) {
				return ConfirmSafe
			}
			return Disjoint
		}
		return p.IsSubtype(subArr.Elem, sup.Elem)
	default:
		return Disjoint
	}
}

// Contains decides whether the type argument outer contains inner (JLS 4.5.1)
func (p *Pool) Contains(outer, inner TypeArg) bool {
	sub := func(a, b Type) bool {
		o := p.IsSubtype(a, b)
		return o.Compatible() && o != ConfirmUnchecked
	}
	switch outer.Kind {
	case Unbounded:
		return true
	case Exact:
		return inner.Kind == Exact && Equal(inner.Type, outer.Type)
	case Extends:
		switch inner.Kind {
		case Exact, Extends:
			return sub(inner.Type, outer.Type)
		default:
			return Equal(outer.Type, p.Object())
		}
	case Super:
		switch inner.Kind {
		case Exact, Super:
			return sub(outer.Type, inner.Type)
		default:
			return false
		}
	}
	return false
}

// AssignableFrom classifies the conversion of a source value to target in a
// loose invocation context: identity, widening, boxing and unboxing are
// allowed, as is unchecked conversion.
func (p *Pool) AssignableFrom(target, source Type) CastOutcome {
	if Equal(target, source) {
		return Same
	}
	if source == Error || target == Error {
		return ConfirmSafe
	}
	srcPrim, srcIsPrim := source.(Primitive)
	tgtPrim, tgtIsPrim := target.(Primitive)
	switch {
	case srcIsPrim && tgtIsPrim:
		if widens(srcPrim.Kind, tgtPrim.Kind) {
			return ConvertingLossless
		}
		if srcPrim.Kind == Boolean || tgtPrim.Kind == Boolean {
			return Disjoint
		}
		return ConvertingLossy
	case srcIsPrim:
		if p.IsSubtype(p.Box(srcPrim), target).Compatible() {
			return Box
		}
		return Disjoint
	case tgtIsPrim:
		unboxed, ok := p.Unbox(source)
		if !ok {
			return Disjoint
		}
		if unboxed.Kind == tgtPrim.Kind || widens(unboxed.Kind, tgtPrim.Kind) {
			return Unbox
		}
		return Disjoint
	}
	return p.IsSubtype(source, target)
}

var boxes = map[PrimitiveKind]string{
	Boolean: "java.lang.Boolean",
	Byte:    "java.lang.Byte",
	Char:    "java.lang.Character",
	Short:   "java.lang.Short",
	Int:     "java.lang.Integer",
	Long:    "java.lang.Long",
	Float:   "java.lang.Float",
	Double:  "java.lang.Double",
}

func (p *Pool) Box(prim Primitive) Type {
	return &Class{Name: boxes[prim.Kind]}
}

// Unbox returns the primitive type that t unboxes to, if any
func (p *Pool) Unbox(t Type) (Primitive, bool) {
	c, ok := t.(*Class)
	if !ok {
		return Primitive{}, false
	}
	for kind, name := range boxes {
		if name == c.Name {
			return Primitive{Kind: kind}, true
		}
	}
	return Primitive{}, false
}

// Erasure drops type arguments; type variables erase to Object
func (p *Pool) Erasure(t Type) Type {
	switch t := t.(type) {
	case *Class:
		if t.IsRaw() && t.Outer == nil {
			return t
		}
		return &Class{Name: t.Name}
	case *Array:
		if elem := p.Erasure(t.Elem); elem != t.Elem {
			return &Array{Elem: elem}
		}
		return t
	case TypeVar:
		return p.Object()
	case *Intersection:
		return p.Erasure(t.Members[0])
	default:
		return t
	}
}

var primitiveRank = map[PrimitiveKind]int{
	Byte: 1, Short: 2, Int: 3, Long: 4, Float: 5, Double: 6,
}

// widens reports whether from converts to to by widening primitive conversion
func widens(from, to PrimitiveKind) bool {
	if from == to || from == Boolean || to == Boolean {
		return false
	}
	if from == Char {
		return primitiveRank[to] >= primitiveRank[Int]
	}
	if to == Char {
		return false
	}
	return primitiveRank[from] < primitiveRank[to]
}
