package scenario

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"

	"github.com/cottand/jinfer/ast"
	"github.com/cottand/jinfer/jtypes"
)

type argBuilder struct {
	file *token.File
	env  jtypes.ParseEnv
}

func (b *argBuilder) rangeOf(a *ArgSpec) ast.Range {
	if a.line <= 0 || a.line > b.file.LineCount() {
		return ast.Range{}
	}
	start := b.file.LineStart(a.line) + token.Pos(a.column-1)
	var end token.Pos
	if a.line < b.file.LineCount() {
		end = b.file.LineStart(a.line+1) - 1
	} else {
		end = token.Pos(b.file.Base() + b.file.Size())
	}
	return ast.Range{PosStart: start, PosEnd: end}
}

// typeOf parses an optional static type; an empty src means attribution
// computed none
func (b *argBuilder) typeOf(src string) (jtypes.Type, error) {
	if src == "" {
		return nil, nil
	}
	return jtypes.Parse(src, b.env)
}

func (b *argBuilder) required(a *ArgSpec, field string, sub *ArgSpec) (ast.Expr, error) {
	if sub == nil {
		return nil, fmt.Errorf("%s argument at line %d needs '%s'", a.Kind, a.line, field)
	}
	return b.build(sub)
}

func (b *argBuilder) build(a *ArgSpec) (ast.Expr, error) {
	r := b.rangeOf(a)
	switch a.Kind {
	case "name":
		t, err := b.typeOf(a.Type)
		if err != nil {
			return nil, err
		}
		return &ast.Name{Range: r, Ident: a.Text, Type: t}, nil

	case "literal":
		t, err := b.typeOf(a.Type)
		if err != nil {
			return nil, err
		}
		if t == nil {
			if t, err = literalType(a.Text); err != nil {
				return nil, err
			}
		}
		return &ast.Literal{Range: r, Value: a.Text, Type: t}, nil

	case "parens":
		inner, err := b.required(a, "inner", a.Inner)
		if err != nil {
			return nil, err
		}
		return &ast.Parens{Range: r, Inner: inner}, nil

	case "conditional":
		var cond ast.Expr = &ast.Name{Range: r, Ident: "cond", Type: jtypes.Primitive{Kind: jtypes.Boolean}}
		if a.Cond != nil {
			var err error
			if cond, err = b.build(a.Cond); err != nil {
				return nil, err
			}
		}
		then, err := b.required(a, "then", a.Then)
		if err != nil {
			return nil, err
		}
		els, err := b.required(a, "else", a.Else)
		if err != nil {
			return nil, err
		}
		return &ast.Conditional{Range: r, Cond: cond, Then: then, Else: els}, nil

	case "call":
		t, err := b.typeOf(a.Type)
		if err != nil {
			return nil, err
		}
		call := &ast.MethodCall{Range: r, Name: a.Text, Type: t, InfersTypeArgs: a.InfersTypeArgs, Constructor: a.Constructor}
		for i := range a.Args {
			arg, err := b.build(&a.Args[i])
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		return call, nil

	case "lambda":
		lambda := &ast.Lambda{Range: r, Params: a.Params, Body: a.Body}
		if len(a.ParamTypes) > 0 && len(a.ParamTypes) != len(a.Params) {
			return nil, fmt.Errorf("lambda at line %d types %d of its %d parameters", a.line, len(a.ParamTypes), len(a.Params))
		}
		for _, src := range a.ParamTypes {
			t, err := jtypes.Parse(src, b.env)
			if err != nil {
				return nil, err
			}
			lambda.ParamTypes = append(lambda.ParamTypes, t)
		}
		return lambda, nil

	case "methodref":
		return &ast.MethodRef{Range: r, Qualifier: a.Qualifier, Method: a.Method, Exact: a.Exact}, nil

	default:
		return nil, fmt.Errorf("unknown argument kind '%s' at line %d", a.Kind, a.line)
	}
}

// literalType is the type of a Java literal written as text
func literalType(text string) (jtypes.Type, error) {
	prim := func(kind jtypes.PrimitiveKind) (jtypes.Type, error) { return jtypes.Primitive{Kind: kind}, nil }
	switch {
	case text == "null":
		return jtypes.Null, nil
	case text == "true" || text == "false":
		return prim(jtypes.Boolean)
	case strings.HasPrefix(text, `"`):
		return &jtypes.Class{Name: jtypes.StringName}, nil
	case strings.HasPrefix(text, "'"):
		return prim(jtypes.Char)
	case text == "" || !(unicode.IsDigit(rune(text[0])) || text[0] == '.'):
		return nil, fmt.Errorf("cannot tell the type of literal '%s'", text)
	}
	lower := strings.ToLower(text)
	isHex := strings.HasPrefix(lower, "0x")
	switch {
	case strings.HasSuffix(lower, "l"):
		return prim(jtypes.Long)
	case !isHex && strings.HasSuffix(lower, "f"):
		return prim(jtypes.Float)
	case !isHex && (strings.HasSuffix(lower, "d") || strings.ContainsAny(lower, ".e")):
		return prim(jtypes.Double)
	default:
		return prim(jtypes.Int)
	}
}
