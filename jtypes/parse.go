package jtypes

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseEnv tells Parse how to interpret names
type ParseEnv struct {
	// TypeVars are the type variables in scope, by simple name
	TypeVars map[string]TypeVar
	// Resolve maps class names onto canonical names; nil keeps names as written
	Resolve func(name string) (string, bool)
}

// Parse reads a type written in Java syntax, such as
// "java.util.List<? extends T>[]" or "Number & Comparable<T>"
func Parse(src string, env ParseEnv) (Type, error) {
	p := &typeParser{src: src, env: env}
	p.next()
	t, err := p.intersection()
	if err != nil {
		return nil, err
	}
	if p.tok != "" {
		return nil, p.errorf("unexpected %q", p.tok)
	}
	return t, nil
}

// MustParse is Parse for types known to be well formed, as in tests and built-in tables
func MustParse(src string, env ParseEnv) Type {
	t, err := Parse(src, env)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src string
	pos int
	tok string
	env ParseEnv
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("parsing type %q at offset %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) next() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok = ""
		return
	}
	start := p.pos
	if strings.ContainsRune("<>,[]&?", rune(p.src[p.pos])) {
		p.pos++
		p.tok = p.src[start:p.pos]
		return
	}
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !isIdentRune(r) {
			break
		}
		p.pos += size
	}
	if p.pos == start {
		p.pos++
	}
	p.tok = p.src[start:p.pos]
}

func isIdentRune(r rune) bool {
	return r == '.' || r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *typeParser) expect(tok string) error {
	if p.tok != tok {
		return p.errorf("expected %q, found %q", tok, p.tok)
	}
	p.next()
	return nil
}

func (p *typeParser) intersection() (Type, error) {
	first, err := p.typ()
	if err != nil {
		return nil, err
	}
	members := []Type{first}
	for p.tok == "&" {
		p.next()
		t, err := p.typ()
		if err != nil {
			return nil, err
		}
		members = append(members, t)
	}
	return IntersectionOf(members...), nil
}

func (p *typeParser) typ() (Type, error) {
	t, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.tok == "[" {
		p.next()
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		t = &Array{Elem: t}
	}
	return t, nil
}

func (p *typeParser) primary() (Type, error) {
	name := p.tok
	if name == "" || !isIdentRune([]rune(name)[0]) {
		return nil, p.errorf("expected a type name, found %q", name)
	}
	p.next()
	switch name {
	case "null":
		return Null, nil
	case "void":
		return Void, nil
	}
	if prim, ok := PrimitiveNamed(name); ok {
		return prim, nil
	}
	if v, ok := p.env.TypeVars[name]; ok {
		return v, nil
	}
	if p.env.Resolve != nil {
		resolved, ok := p.env.Resolve(name)
		if !ok {
			return nil, p.errorf("unknown type %s", name)
		}
		name = resolved
	}
	c := &Class{Name: name}
	if p.tok != "<" {
		return c, nil
	}
	p.next()
	for {
		arg, err := p.arg()
		if err != nil {
			return nil, err
		}
		c.Args = append(c.Args, arg)
		if p.tok == "," {
			p.next()
			continue
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func (p *typeParser) arg() (TypeArg, error) {
	if p.tok != "?" {
		t, err := p.typ()
		return ExactArg(t), err
	}
	p.next()
	kind := Unbounded
	switch p.tok {
	case "extends":
		kind = Extends
	case "super":
		kind = Super
	default:
		return TypeArg{Kind: Unbounded}, nil
	}
	p.next()
	t, err := p.intersection()
	if err != nil {
		return TypeArg{}, err
	}
	return TypeArg{Kind: kind, Type: t}, nil
}
