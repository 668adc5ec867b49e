package jtypes

import "slices"

// LeastUpperBound computes lub(ts) following JLS 4.10.4, with one
// simplification: where the candidate parameterizations disagree on a type
// argument, the argument becomes an unbounded wildcard instead of the
// recursive lcta.
func (p *Pool) LeastUpperBound(ts []Type) Type {
	var refs []Type
	for _, t := range ts {
		if t == Null {
			continue
		}
		if !slices.ContainsFunc(refs, func(r Type) bool { return Equal(r, t) }) {
			refs = append(refs, t)
		}
	}
	switch len(refs) {
	case 0:
		return Null
	case 1:
		return refs[0]
	}
	if elems, ok := referenceArrayElems(refs); ok {
		return &Array{Elem: p.LeastUpperBound(elems)}
	}

	// erased candidate set, in the supertype order of the first type
	var ec []string
	for _, s := range p.Supertypes(refs[0]) {
		c, ok := s.(*Class)
		if !ok || slices.Contains(ec, c.Name) {
			continue
		}
		ec = append(ec, c.Name)
	}
	for _, t := range refs[1:] {
		ec = slices.DeleteFunc(ec, func(name string) bool {
			_, ok := p.AsSuper(t, name)
			return !ok
		})
	}

	// minimal erased candidates: drop every candidate that is a proper supertype of another
	mec := slices.DeleteFunc(slices.Clone(ec), func(name string) bool {
		for _, other := range ec {
			if other == name {
				continue
			}
			if _, ok := p.AsSuper(&Class{Name: other}, name); ok {
				return true
			}
		}
		return false
	})
	if len(mec) == 0 {
		return p.Object()
	}

	members := make([]Type, 0, len(mec))
	for _, name := range mec {
		members = append(members, p.candidateInvocation(name, refs))
	}
	// class before interfaces, as in a declared bound
	slices.SortStableFunc(members, func(a, b Type) int {
		ai, bi := p.IsInterface(a.(*Class).Name), p.IsInterface(b.(*Class).Name)
		switch {
		case ai == bi:
			return 0
		case bi:
			return -1
		default:
			return 1
		}
	})
	return IntersectionOf(members...)
}

func (p *Pool) candidateInvocation(name string, ts []Type) *Class {
	if !p.IsGeneric(name) {
		return &Class{Name: name}
	}
	var invocations []*Class
	for _, t := range ts {
		s, _ := p.AsSuper(t, name)
		if s.IsRaw() {
			return &Class{Name: name}
		}
		invocations = append(invocations, s)
	}
	first := invocations[0]
	args := make([]TypeArg, len(first.Args))
	for i := range args {
		args[i] = first.Args[i]
		for _, other := range invocations[1:] {
			if i >= len(other.Args) || !sameArg(other.Args[i], first.Args[i]) {
				args[i] = TypeArg{Kind: Unbounded}
				break
			}
		}
	}
	return &Class{Name: name, Args: args}
}

func sameArg(a, b TypeArg) bool {
	if a.Kind != b.Kind {
		return false
	}
	return a.Kind == Unbounded || Equal(a.Type, b.Type)
}

func referenceArrayElems(ts []Type) ([]Type, bool) {
	elems := make([]Type, 0, len(ts))
	for _, t := range ts {
		arr, ok := t.(*Array)
		if !ok || !IsReference(arr.Elem) {
			return nil, false
		}
		elems = append(elems, arr.Elem)
	}
	return elems, true
}

// GreatestLowerBound computes glb(a, b) (JLS 5.1.10): the more specific of the
// two if they are related, their intersection otherwise
func (p *Pool) GreatestLowerBound(a, b Type) Type {
	if a == nil {
		return b
	}
	if isSubtypeNoUnchecked(p, a, b) {
		return a
	}
	if isSubtypeNoUnchecked(p, b, a) {
		return b
	}
	inter := IntersectionOf(a, b)
	if asInter, ok := inter.(*Intersection); ok {
		members := slices.Clone(asInter.Members)
		slices.SortStableFunc(members, func(x, y Type) int {
			xi, yi := !p.isClassType(x), !p.isClassType(y)
			switch {
			case xi == yi:
				return 0
			case yi:
				return -1
			default:
				return 1
			}
		})
		return &Intersection{Members: members}
	}
	return inter
}

func (p *Pool) isClassType(t Type) bool {
	c, ok := t.(*Class)
	return ok && !p.IsInterface(c.Name)
}

func isSubtypeNoUnchecked(p *Pool, a, b Type) bool {
	o := p.IsSubtype(a, b)
	return o.Compatible() && o != ConfirmUnchecked
}
