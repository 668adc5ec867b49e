package inference

import (
	"github.com/cottand/jinfer/ast"
	"github.com/cottand/jinfer/internal/log"
	"github.com/cottand/jinfer/jtypes"
)

// signature parses types of a callee's signature, with its type parameters in scope
func signature(pool *jtypes.Pool, owner string, params ...string) func(string) jtypes.Type {
	env := jtypes.ParseEnv{TypeVars: make(map[string]jtypes.TypeVar), Resolve: pool.Resolve}
	for _, p := range params {
		env.TypeVars[p] = jtypes.TypeVar{Name: p, Owner: owner}
	}
	return func(src string) jtypes.Type {
		return jtypes.MustParse(src, env)
	}
}

func named(ident string, t jtypes.Type) ast.Expr {
	return &ast.Name{Ident: ident, Type: t}
}

func literal(value string, t jtypes.Type) ast.Expr {
	return &ast.Literal{Value: value, Type: t}
}

func newTestSession(pool *jtypes.Pool) *Session {
	return NewSession(pool, log.DefaultLogger)
}

// typed lifts a jtypes.Type into synthetic form
func typed(t jtypes.Type) SyntheticType { return syntheticOf(t) }

func class(name string, args ...jtypes.Type) jtypes.Type { return jtypes.ClassOf(name, args...) }

var (
	object  = class(jtypes.ObjectName)
	str     = class(jtypes.StringName)
	integer = class("java.lang.Integer")
	double  = class("java.lang.Double")
	number  = class("java.lang.Number")
	intType = jtypes.Primitive{Kind: jtypes.Int}
)
