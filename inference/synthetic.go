package inference

import (
	"cmp"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/cottand/jinfer/jtypes"
	"github.com/hashicorp/go-set/v3"
)

// InferenceOwner is the owner of the type variables that stand for inference
// variables inside jtypes.Type values. No declaration can have this name.
const InferenceOwner = "<inference>"

const inferenceVarPrefix = "α"

// SyntheticType is a type that may mention inference variables
type SyntheticType interface {
	fmt.Stringer
	Hash() uint64
	// Mentioned returns the inference variables occurring anywhere in the type,
	// nested type arguments and enclosing types included
	Mentioned() *set.TreeSet[InferenceVariable]
	// Subst replaces resolved inference variables. It returns the receiver
	// itself when none of the mentioned variables is in s.
	Subst(s Substitution) SyntheticType
	key() string
	isSynthetic()
}

var (
	_ SyntheticType = InferenceVariable{}
	_ SyntheticType = (*Nominal)(nil)
	_ SyntheticType = (*Intersection)(nil)
)

// Substitution maps resolved inference variables onto proper types
type Substitution map[InferenceVariable]jtypes.Type

func compareVars(a, b InferenceVariable) int { return cmp.Compare(a.Index, b.Index) }

func newVarSet(vars ...InferenceVariable) *set.TreeSet[InferenceVariable] {
	s := set.NewTreeSet[InferenceVariable](compareVars)
	for _, v := range vars {
		s.Insert(v)
	}
	return s
}

func addAll(dst, src *set.TreeSet[InferenceVariable]) {
	for _, v := range src.Slice() {
		dst.Insert(v)
	}
}

// InferenceVariable is a placeholder for an unknown type argument, private to
// one Session
type InferenceVariable struct {
	Index int
}

func (InferenceVariable) isSynthetic()       {}
func (v InferenceVariable) String() string { return inferenceVarPrefix + strconv.Itoa(v.Index) }
func (v InferenceVariable) key() string    { return v.String() }
func (v InferenceVariable) Hash() uint64   { return hashString(v.key()) }

func (v InferenceVariable) Mentioned() *set.TreeSet[InferenceVariable] { return newVarSet(v) }

func (v InferenceVariable) Subst(s Substitution) SyntheticType {
	if t, ok := s[v]; ok {
		return syntheticOf(t)
	}
	return v
}

// AsTypeVar is the disguise v wears inside jtypes values
func (v InferenceVariable) AsTypeVar() jtypes.TypeVar {
	return jtypes.TypeVar{Name: v.String(), Owner: InferenceOwner}
}

// asInferenceVariable recognises a disguised inference variable
func asInferenceVariable(tv jtypes.TypeVar) (InferenceVariable, bool) {
	if tv.Owner != InferenceOwner || !strings.HasPrefix(tv.Name, inferenceVarPrefix) {
		return InferenceVariable{}, false
	}
	i, err := strconv.Atoi(strings.TrimPrefix(tv.Name, inferenceVarPrefix))
	if err != nil {
		return InferenceVariable{}, false
	}
	return InferenceVariable{Index: i}, true
}

// Nominal wraps a jtypes.Type, which may mention inference variables through
// its type arguments or enclosing types
type Nominal struct {
	Type jtypes.Type
}

func (*Nominal) isSynthetic()       {}
func (n *Nominal) String() string { return n.Type.String() }
func (n *Nominal) key() string    { return jtypes.Key(n.Type) }
func (n *Nominal) Hash() uint64   { return hashString(n.key()) }

func (n *Nominal) Mentioned() *set.TreeSet[InferenceVariable] {
	return mentionedIn(n.Type)
}

func (n *Nominal) Subst(s Substitution) SyntheticType {
	if len(s) == 0 {
		return n
	}
	replaced := substType(n.Type, s)
	if replaced == n.Type {
		return n
	}
	return syntheticOf(replaced)
}

func mentionedIn(t jtypes.Type) *set.TreeSet[InferenceVariable] {
	vars := newVarSet()
	for tv := range jtypes.TypeVars(t) {
		if v, ok := asInferenceVariable(tv); ok {
			vars.Insert(v)
		}
	}
	return vars
}

func substType(t jtypes.Type, s Substitution) jtypes.Type {
	return jtypes.Substitute(t, func(tv jtypes.TypeVar) (jtypes.Type, bool) {
		v, ok := asInferenceVariable(tv)
		if !ok {
			return nil, false
		}
		r, ok := s[v]
		return r, ok
	})
}

// Intersection is the conjunction of several synthetic types, such as the
// declared bounds of <T extends A & B>. Construct with IntersectionOf.
type Intersection struct {
	Members []SyntheticType
}

func (*Intersection) isSynthetic() {}

func (i *Intersection) String() string {
	parts := make([]string, len(i.Members))
	for j, m := range i.Members {
		parts[j] = m.String()
	}
	return strings.Join(parts, " & ")
}

func (i *Intersection) key() string {
	parts := make([]string, len(i.Members))
	for j, m := range i.Members {
		parts[j] = m.key()
	}
	return strings.Join(parts, " & ")
}

func (i *Intersection) Hash() uint64 { return hashString(i.key()) }

func (i *Intersection) Mentioned() *set.TreeSet[InferenceVariable] {
	vars := newVarSet()
	for _, m := range i.Members {
		addAll(vars, m.Mentioned())
	}
	return vars
}

func (i *Intersection) Subst(s Substitution) SyntheticType {
	members := make([]SyntheticType, len(i.Members))
	changed := false
	for j, m := range i.Members {
		members[j] = m.Subst(s)
		changed = changed || members[j] != m
	}
	if !changed {
		return i
	}
	return IntersectionOf(members...)
}

// IntersectionOf flattens nested intersections and drops duplicates; a single
// member is returned unwrapped
func IntersectionOf(members ...SyntheticType) SyntheticType {
	var flat []SyntheticType
	seen := make(map[string]bool)
	var add func(m SyntheticType)
	add = func(m SyntheticType) {
		if inter, ok := m.(*Intersection); ok {
			for _, inner := range inter.Members {
				add(inner)
			}
			return
		}
		if k := m.key(); !seen[k] {
			seen[k] = true
			flat = append(flat, m)
		}
	}
	for _, m := range members {
		add(m)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Intersection{Members: flat}
}

// syntheticOf lifts a jtypes.Type, recognising disguised inference variables
func syntheticOf(t jtypes.Type) SyntheticType {
	return maybeAsInferenceVariable(&Nominal{Type: t})
}

// maybeAsInferenceVariable turns a Nominal whose type is a disguised inference
// variable into that variable; anything else is returned unchanged
func maybeAsInferenceVariable(t SyntheticType) SyntheticType {
	n, ok := t.(*Nominal)
	if !ok {
		return t
	}
	tv, ok := n.Type.(jtypes.TypeVar)
	if !ok {
		return t
	}
	if v, ok := asInferenceVariable(tv); ok {
		return v
	}
	return t
}

// AsType lowers t into a jtypes.Type, inference variables in disguise
func AsType(t SyntheticType) jtypes.Type {
	switch t := t.(type) {
	case InferenceVariable:
		return t.AsTypeVar()
	case *Nominal:
		return t.Type
	case *Intersection:
		members := make([]jtypes.Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = AsType(m)
		}
		return jtypes.IntersectionOf(members...)
	default:
		panic(fmt.Sprintf("unexpected synthetic type %T", t))
	}
}

func IsProper(t SyntheticType) bool {
	return t.Mentioned().Empty()
}

func isProperType(t jtypes.Type) bool {
	for tv := range jtypes.TypeVars(t) {
		if _, ok := asInferenceVariable(tv); ok {
			return false
		}
	}
	return true
}

// members flattens an intersection into its members
func members(t SyntheticType) []SyntheticType {
	if inter, ok := t.(*Intersection); ok {
		return inter.Members
	}
	if n, ok := t.(*Nominal); ok {
		if inter, ok := n.Type.(*jtypes.Intersection); ok {
			result := make([]SyntheticType, len(inter.Members))
			for i, m := range inter.Members {
				result[i] = syntheticOf(m)
			}
			return result
		}
	}
	return []SyntheticType{t}
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
