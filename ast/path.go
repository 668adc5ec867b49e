package ast

import "strings"

// Path is the chain of expressions from a call argument down to one of its
// sub-expressions. The last element is the expression the path denotes.
type Path []Expr

// PathOf is the path of an argument expression
func PathOf(e Expr) Path { return Path{e} }

func (p Path) Leaf() Expr {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Child extends the path by a sub-expression of its leaf, never aliasing p
func (p Path) Child(e Expr) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, e)
}

func (p Path) Pos() Range {
	if leaf := p.Leaf(); leaf != nil {
		return RangeOf(leaf)
	}
	return Range{}
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, e := range p {
		parts[i] = e.String()
	}
	return strings.Join(parts, " / ")
}
