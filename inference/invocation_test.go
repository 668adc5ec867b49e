package inference

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/cottand/jinfer/ast"
	"github.com/cottand/jinfer/inference/infererr"
	"github.com/cottand/jinfer/jtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inferCase struct {
	name   string
	callee func(pool *jtypes.Pool) *Callee
	args   []ast.Expr
	// expected resolutions, by type parameter, as strings
	expected map[string]string
	result   string
	thrown   []string
	mode     Mode
}

func identity(pool *jtypes.Pool) *Callee {
	const name = "demo.Util.id"
	sig := signature(pool, name, "T")
	return &Callee{
		Name:       name,
		TypeParams: []TypeParam{{Name: "T"}},
		Formals:    []jtypes.Type{sig("T")},
		Return:     sig("T"),
	}
}

func pick(pool *jtypes.Pool) *Callee {
	const name = "demo.Util.pick"
	sig := signature(pool, name, "T")
	return &Callee{
		Name:       name,
		TypeParams: []TypeParam{{Name: "T"}},
		Formals:    []jtypes.Type{sig("T"), sig("T")},
		Return:     sig("T"),
	}
}

func TestInfer(t *testing.T) {
	cases := []inferCase{
		{
			name:     "identity of a String",
			callee:   identity,
			args:     []ast.Expr{named("s", str)},
			expected: map[string]string{"T": "java.lang.String"},
			result:   "java.lang.String",
			mode:     ModeStrict,
		},
		{
			name:     "lub of Integer and Double",
			callee:   pick,
			args:     []ast.Expr{named("i", integer), named("d", double)},
			expected: map[string]string{"T": "java.lang.Number & java.lang.Comparable<?>"},
			result:   "java.lang.Number & java.lang.Comparable<?>",
			mode:     ModeStrict,
		},
		{
			name:     "null argument falls back to the declared bound",
			callee:   identity,
			args:     []ast.Expr{literal("null", jtypes.Null)},
			expected: map[string]string{"T": "java.lang.Object"},
			result:   "java.lang.Object",
			mode:     ModeStrict,
		},
		{
			name:     "primitive argument is boxed under loose invocation",
			callee:   identity,
			args:     []ast.Expr{literal("1", intType)},
			expected: map[string]string{"T": "java.lang.Integer"},
			result:   "java.lang.Integer",
			mode:     ModeLoose,
		},
		{
			name: "thrown type parameter defaults to RuntimeException",
			callee: func(pool *jtypes.Pool) *Callee {
				const name = "demo.Util.sneaky"
				sig := signature(pool, name, "E")
				return &Callee{
					Name:       name,
					TypeParams: []TypeParam{{Name: "E", Super: sig("Exception")}},
					Throws:     []jtypes.Type{sig("E")},
					Return:     jtypes.Void,
				}
			},
			expected: map[string]string{"E": "java.lang.RuntimeException"},
			result:   "void",
			thrown:   []string{"java.lang.RuntimeException"},
			mode:     ModeStrict,
		},
		{
			name: "type argument of a parameterized supertype",
			callee: func(pool *jtypes.Pool) *Callee {
				const name = "demo.Util.first"
				sig := signature(pool, name, "T")
				return &Callee{
					Name:       name,
					TypeParams: []TypeParam{{Name: "T"}},
					Formals:    []jtypes.Type{sig("List<T>")},
					Return:     sig("T"),
				}
			},
			args:     []ast.Expr{named("names", class("java.util.ArrayList", str))},
			expected: map[string]string{"T": "java.lang.String"},
			result:   "java.lang.String",
			mode:     ModeStrict,
		},
		{
			name: "recursive bound",
			callee: func(pool *jtypes.Pool) *Callee {
				const name = "demo.Util.max"
				sig := signature(pool, name, "T")
				return &Callee{
					Name:       name,
					TypeParams: []TypeParam{{Name: "T", Interfaces: []jtypes.Type{sig("Comparable<T>")}}},
					Formals:    []jtypes.Type{sig("T"), sig("T")},
					Return:     sig("T"),
				}
			},
			args:     []ast.Expr{named("a", integer), named("b", integer)},
			expected: map[string]string{"T": "java.lang.Integer"},
			result:   "java.lang.Integer",
			mode:     ModeStrict,
		},
		{
			name: "two independent type parameters",
			callee: func(pool *jtypes.Pool) *Callee {
				const name = "demo.Util.mapOf"
				sig := signature(pool, name, "K", "V")
				return &Callee{
					Name:       name,
					TypeParams: []TypeParam{{Name: "K"}, {Name: "V"}},
					Formals:    []jtypes.Type{sig("K"), sig("V")},
					Return:     sig("Map<K, V>"),
				}
			},
			args:     []ast.Expr{named("k", str), named("v", integer)},
			expected: map[string]string{"K": "java.lang.String", "V": "java.lang.Integer"},
			result:   "java.util.Map<java.lang.String, java.lang.Integer>",
			mode:     ModeStrict,
		},
		{
			name: "variable arity collapses trailing formals",
			callee: func(pool *jtypes.Pool) *Callee {
				const name = "demo.Util.asList"
				sig := signature(pool, name, "T")
				return &Callee{
					Name:       name,
					TypeParams: []TypeParam{{Name: "T"}},
					Formals:    []jtypes.Type{sig("T[]")},
					Variadic:   true,
					Return:     sig("List<T>"),
				}
			},
			args:     []ast.Expr{named("a", integer), named("b", integer), named("c", integer)},
			expected: map[string]string{"T": "java.lang.Integer"},
			result:   "java.util.List<java.lang.Integer>",
			mode:     ModeVariableArity,
		},
		{
			name: "conditional argument contributes both branches",
			callee: identity,
			args: []ast.Expr{&ast.Conditional{
				Cond: named("b", jtypes.Primitive{Kind: jtypes.Boolean}),
				Then: named("s", str),
				Else: literal("null", jtypes.Null),
			}},
			expected: map[string]string{"T": "java.lang.String"},
			result:   "java.lang.String",
			mode:     ModeStrict,
		},
		{
			name: "declared bound of another type parameter",
			callee: func(pool *jtypes.Pool) *Callee {
				const name = "demo.Util.narrow"
				sig := signature(pool, name, "S", "T")
				return &Callee{
					Name:       name,
					TypeParams: []TypeParam{{Name: "S", Super: sig("T")}, {Name: "T"}},
					Formals:    []jtypes.Type{sig("S"), sig("T")},
					Return:     sig("T"),
				}
			},
			args:     []ast.Expr{named("i", integer), named("n", number)},
			expected: map[string]string{"S": "java.lang.Integer", "T": "java.lang.Number"},
			result:   "java.lang.Number",
			mode:     ModeStrict,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pool := jtypes.NewPool()
			engine := NewEngine(pool, Options{})
			result, errs, err := engine.Infer(c.callee(pool), &CallSite{Args: c.args})
			require.NoError(t, err)
			assert.False(t, errs.HasError(), "unexpected errors: %v", errs.Errors())
			require.NotNil(t, result)
			assert.False(t, result.Failed())

			resolutions := make(map[string]string)
			for name, r := range result.Resolutions {
				resolutions[name] = r.String()
			}
			assert.Equal(t, c.expected, resolutions)
			assert.Equal(t, c.result, result.NormalResultType.String())
			var thrown []string
			for _, tt := range result.ThrownTypes {
				thrown = append(thrown, tt.String())
			}
			assert.Equal(t, c.thrown, thrown)
			assert.Equal(t, c.mode, result.Mode)
			assert.False(t, result.DependsOnUncheckedConversion)
		})
	}
}

func TestInferUncheckedConversion(t *testing.T) {
	pool := jtypes.NewPool()
	const name = "demo.Util.copy"
	sig := signature(pool, name, "T")
	callee := &Callee{
		Name:       name,
		TypeParams: []TypeParam{{Name: "T"}},
		Formals:    []jtypes.Type{sig("List<T>")},
		Return:     sig("List<T>"),
	}

	result, errs, err := NewEngine(pool, Options{}).Infer(callee, &CallSite{
		Args: []ast.Expr{named("raw", class("java.util.ArrayList"))},
	})
	require.NoError(t, err)
	assert.False(t, errs.HasError())
	assert.Equal(t, 1, errs.Count(infererr.Warning))
	assert.Equal(t, infererr.UncheckedConversion, errs.Errors()[0].Code())

	assert.True(t, result.DependsOnUncheckedConversion)
	assert.Equal(t, "java.util.List", result.NormalResultType.String())
	assert.Equal(t, []string{"java.util.ArrayList -> java.util.List<T>"}, result.Unchecked)
	assert.Contains(t, errs.Errors()[0].Error(), "java.util.List<T>")
	assert.NotContains(t, errs.Errors()[0].Error(), "α0")
	assert.Equal(t, "java.lang.Object", result.Resolutions["T"].String())
}

func TestInferUncheckedErasesToLeftmostBound(t *testing.T) {
	pool := jtypes.NewPool()
	const name = "demo.Util.firstNumber"
	sig := signature(pool, name, "T")
	callee := &Callee{
		Name:       name,
		TypeParams: []TypeParam{{Name: "T", Super: sig("Number")}},
		Formals:    []jtypes.Type{sig("List<T>")},
		Return:     sig("T"),
	}

	result, _, err := NewEngine(pool, Options{}).Infer(callee, &CallSite{
		Args: []ast.Expr{named("raw", class("java.util.ArrayList"))},
	})
	require.NoError(t, err)
	assert.True(t, result.DependsOnUncheckedConversion)
	assert.Equal(t, "java.lang.Number", result.NormalResultType.String())
}

func TestInferFailures(t *testing.T) {
	cases := []struct {
		name   string
		callee func(pool *jtypes.Pool) *Callee
		args   []ast.Expr
		code   infererr.ErrCode
	}{
		{
			name: "no invocation mode applies",
			callee: func(pool *jtypes.Pool) *Callee {
				const name = "demo.Util.f"
				sig := signature(pool, name, "T")
				return &Callee{
					Name:       name,
					TypeParams: []TypeParam{{Name: "T"}},
					Formals:    []jtypes.Type{sig("T"), sig("String")},
					Return:     jtypes.Void,
				}
			},
			args: []ast.Expr{named("s", str), literal("1", intType)},
			code: infererr.NotApplicable,
		},
		{
			name: "lower bound outside the declared bound",
			callee: func(pool *jtypes.Pool) *Callee {
				const name = "demo.Util.num"
				sig := signature(pool, name, "T")
				return &Callee{
					Name:       name,
					TypeParams: []TypeParam{{Name: "T", Super: sig("Number")}},
					Formals:    []jtypes.Type{sig("T")},
					Return:     sig("T"),
				}
			},
			args: []ast.Expr{named("s", str)},
			code: infererr.NotApplicable,
		},
		{
			name:   "arity mismatch",
			callee: identity,
			code:   infererr.NotApplicable,
		},
		{
			name: "conflicting equality bounds",
			callee: func(pool *jtypes.Pool) *Callee {
				const name = "demo.Util.same"
				sig := signature(pool, name, "T")
				return &Callee{
					Name:       name,
					TypeParams: []TypeParam{{Name: "T"}},
					Formals:    []jtypes.Type{sig("List<T>"), sig("List<T>")},
					Return:     sig("T"),
				}
			},
			args: []ast.Expr{
				named("a", class("java.util.ArrayList", str)),
				named("b", class("java.util.ArrayList", integer)),
			},
			code: infererr.NotApplicable,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pool := jtypes.NewPool()
			callee := c.callee(pool)
			result, errs, err := NewEngine(pool, Options{}).Infer(callee, &CallSite{Args: c.args})
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.True(t, result.Failed())
			assert.Equal(t, 1, errs.Count(infererr.Severe), "errors: %v", errs.Errors())
			assert.Equal(t, c.code, errs.Errors()[0].Code())
			assert.Equal(t, jtypes.Error, result.NormalResultType)
			assert.Empty(t, result.ThrownTypes)
			for _, tp := range callee.TypeParams {
				assert.Equal(t, jtypes.Error, result.Resolutions[tp.Name])
			}
		})
	}
}

func TestInferUnsupported(t *testing.T) {
	supplierOfT := func(pool *jtypes.Pool) *Callee {
		const name = "demo.Util.get"
		sig := signature(pool, name, "T")
		return &Callee{
			Name:       name,
			TypeParams: []TypeParam{{Name: "T"}},
			Formals:    []jtypes.Type{sig("Supplier<T>")},
			Return:     sig("T"),
		}
	}
	cases := []struct {
		name   string
		callee func(pool *jtypes.Pool) *Callee
		site   *CallSite
	}{
		{
			name:   "explicitly typed lambda",
			callee: supplierOfT,
			site:   &CallSite{Args: []ast.Expr{&ast.Lambda{Body: "1"}}},
		},
		{
			name:   "implicitly typed lambda",
			callee: identity,
			site:   &CallSite{Args: []ast.Expr{&ast.Lambda{Params: []string{"x"}, Body: "x"}}},
		},
		{
			name:   "inexact method reference",
			callee: supplierOfT,
			site:   &CallSite{Args: []ast.Expr{&ast.MethodRef{Qualifier: "Foo", Method: "bar"}}},
		},
		{
			name:   "generic method call argument",
			callee: identity,
			site: &CallSite{Args: []ast.Expr{&ast.MethodCall{
				Name:           "emptyList",
				InfersTypeArgs: true,
			}}},
		},
		{
			name:   "invocation in a poly context",
			callee: identity,
			site:   &CallSite{Args: []ast.Expr{named("s", str)}, PolyContext: true},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pool := jtypes.NewPool()
			result, _, err := NewEngine(pool, Options{}).Infer(c.callee(pool), c.site)
			assert.Error(t, err)
			assert.True(t, infererr.IsUnsupported(err), "got %v", err)
			assert.Nil(t, result)
		})
	}
}

func TestInferPolyContextWithoutTypeParamsInReturn(t *testing.T) {
	pool := jtypes.NewPool()
	const name = "demo.Util.log"
	sig := signature(pool, name, "T")
	callee := &Callee{
		Name:       name,
		TypeParams: []TypeParam{{Name: "T"}},
		Formals:    []jtypes.Type{sig("T")},
		Return:     sig("String"),
	}
	result, errs, err := NewEngine(pool, Options{}).Infer(callee, &CallSite{
		Args:        []ast.Expr{named("i", integer)},
		PolyContext: true,
	})
	require.NoError(t, err)
	assert.False(t, errs.HasError())
	assert.Equal(t, "java.lang.String", result.NormalResultType.String())
	assert.Equal(t, "java.lang.Integer", result.Resolutions["T"].String())
}

// inferLogged runs inference with a debug logger and returns what it logged
func inferLogged(t *testing.T, callee func(*jtypes.Pool) *Callee, args ...ast.Expr) (*Inferences, string) {
	t.Helper()
	out := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	pool := jtypes.NewPool()
	result, _, err := NewEngine(pool, Options{Logger: logger}).Infer(callee(pool), &CallSite{Args: args})
	require.NoError(t, err)
	return result, out.String()
}

func TestStrictDoesNotFallThroughWhenApplicable(t *testing.T) {
	result, logged := inferLogged(t, identity, named("i", integer))
	assert.Equal(t, ModeStrict, result.Mode)

	assert.Contains(t, logged, "mode=strict")
	for _, unexpected := range []string{`msg="not applicable"`, `msg="arity mismatch"`, "mode=loose", "mode=variable-arity"} {
		assert.NotContains(t, logged, unexpected)
	}
}

func TestLooseTriedAfterStrictFails(t *testing.T) {
	result, logged := inferLogged(t, identity, literal("1", jtypes.Primitive{Kind: jtypes.Int}))
	assert.Equal(t, ModeLoose, result.Mode)
	assert.Regexp(t, `msg="not applicable".*mode=strict`, logged)
	assert.NotContains(t, logged, "mode=variable-arity")
}

func TestMissingTypeReportedOnce(t *testing.T) {
	pool := jtypes.NewPool()
	result, errs, err := NewEngine(pool, Options{}).Infer(identity(pool), &CallSite{
		Args: []ast.Expr{named("x", nil)},
	})
	require.NoError(t, err)
	assert.True(t, result.Failed())

	var codes []infererr.ErrCode
	for _, e := range errs.Errors() {
		codes = append(codes, e.Code())
	}
	assert.Equal(t, []infererr.ErrCode{infererr.MissingType, infererr.NotApplicable}, codes)
}

func TestInferInParallel(t *testing.T) {
	pool := jtypes.NewPool()
	engine := NewEngine(pool, Options{})
	argTypes := []jtypes.Type{str, integer, double, number, object}

	const rounds = 50
	results := make([]string, rounds)
	errs := make([]error, rounds)
	wg := sync.WaitGroup{}
	for i := range rounds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			arg := argTypes[i%len(argTypes)]
			result, _, err := engine.Infer(identity(pool), &CallSite{Args: []ast.Expr{named(fmt.Sprint("a", i), arg)}})
			errs[i] = err
			if result != nil {
				results[i] = result.Resolutions["T"].String()
			}
		}()
	}
	wg.Wait()

	for i := range rounds {
		assert.NoError(t, errs[i])
		assert.Equal(t, argTypes[i%len(argTypes)].String(), results[i])
	}
}

func TestInferRecordsResolutionOrder(t *testing.T) {
	pool := jtypes.NewPool()
	const name = "demo.Util.widen"
	sig := signature(pool, name, "S", "T", "U")
	callee := &Callee{
		Name:       name,
		TypeParams: []TypeParam{{Name: "S", Super: sig("T")}, {Name: "T"}, {Name: "U"}},
		Formals:    []jtypes.Type{sig("S"), sig("T"), sig("List<U>")},
		Return:     sig("T"),
	}
	result, _, err := NewEngine(pool, Options{}).Infer(callee, &CallSite{
		Args: []ast.Expr{named("i", integer), named("n", number), named("l", class("java.util.List", str))},
	})
	require.NoError(t, err)
	assert.Equal(t, "{α0, α1} -> {α2}", result.ResolutionOrder)

	failed, _, err := NewEngine(pool, Options{}).Infer(identity(pool), &CallSite{})
	require.NoError(t, err)
	assert.Empty(t, failed.ResolutionOrder)
}
