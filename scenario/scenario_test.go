package scenario

import (
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/cottand/jinfer/inference"
	"github.com/cottand/jinfer/jtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	testdata := os.DirFS("testdata")
	files, err := fs.Glob(testdata, "*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		t.Run(strings.TrimSuffix(name, ".yaml"), func(t *testing.T) {
			s, err := LoadFile(testdata, name)
			require.NoError(t, err)
			require.NotNil(t, s.Expect, "scenario %s states no expectation", name)

			result, errs, err := s.Infer(inference.Options{})
			assert.Empty(t, s.Expect.Check(result, errs, err))
		})
	}
}

func TestLoadBuildsCallee(t *testing.T) {
	const src = `
callee:
  name: demo.Util.sort
  typeParams:
    - {name: T, bounds: ["Comparable<T>"]}
    - {name: U, bounds: [Number, "Comparable<U>"]}
    - {name: V, bounds: [T]}
  formals: ["List<T>", "U", "V[]"]
  variadic: true
  throws: [java.io.IOException]
  returns: void
`
	s, err := Load("sort.yaml", []byte(src))
	require.NoError(t, err)

	callee := s.Callee
	require.Len(t, callee.TypeParams, 3)
	assert.Nil(t, callee.TypeParams[0].Super)
	assert.Equal(t, "T extends java.lang.Comparable<T>", callee.TypeParams[0].String())
	assert.Equal(t, "java.lang.Number", callee.TypeParams[1].Super.String())
	assert.Len(t, callee.TypeParams[1].Interfaces, 1)
	assert.Equal(t, callee.TypeVar("T"), callee.TypeParams[2].Super)

	assert.True(t, callee.Variadic)
	assert.Equal(t, jtypes.Void, callee.Return)
	assert.Equal(t, "java.io.IOException", callee.Throws[0].String())
	assert.Empty(t, s.Site.Args)
}

func TestLoadFailures(t *testing.T) {
	cases := map[string]string{
		"empty document":      ``,
		"unknown field":       "callee: {name: f}\nextra: 1\n",
		"unknown type":        "callee: {name: f, formals: [Missing]}\n",
		"callee without name": "callee: {formals: [String]}\n",
		"unknown argument kind": `
callee: {name: f}
args:
  - {kind: spread, text: xs}
`,
		"conditional without else": `
callee: {name: f}
args:
  - kind: conditional
    then: {kind: literal, text: "1"}
`,
		"primitive supertype": `
classes:
  - {name: demo.Bad, super: int}
callee: {name: f}
`,
		"redeclared class": `
classes:
  - {name: java.lang.String}
callee: {name: f}
`,
		"untyped literal": `
callee: {name: f}
args:
  - {kind: literal, text: someConstant}
`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(name+".yaml", []byte(src))
			assert.Error(t, err)
		})
	}
}

func TestFormatErrorPointsAtArguments(t *testing.T) {
	const src = `callee:
  name: demo.Util.put
  typeParams: [{name: T}]
  formals: [T, String]
args:
  - {kind: name, text: s, type: String}
  - {kind: literal, text: "1"}
`
	s, err := Load("put.yaml", []byte(src))
	require.NoError(t, err)

	first := s.Position(s.Site.Args[0].Pos())
	assert.Equal(t, 6, first.Line)
	assert.Equal(t, 5, first.Column)

	_, errs, err := s.Infer(inference.Options{})
	require.NoError(t, err)
	require.Len(t, errs.Errors(), 1)
	assert.True(t, strings.HasPrefix(s.FormatError(errs.Errors()[0]), "put.yaml:6:5: (E007) SEVERE: "),
		s.FormatError(errs.Errors()[0]))
}

func TestNestedArguments(t *testing.T) {
	const src = `
callee: {name: f}
args:
  - kind: parens
    inner:
      kind: call
      text: emptyList
      infersTypeArgs: true
      args: [{kind: literal, text: "2.5f"}]
  - {kind: lambda, params: [a, b], paramTypes: [int, String], body: a}
  - {kind: methodref, qualifier: String, method: length, exact: true}
`
	s, err := Load("nested.yaml", []byte(src))
	require.NoError(t, err)
	require.Len(t, s.Site.Args, 3)
	assert.Equal(t, "(emptyList(2.5f))", s.Site.Args[0].String())
	assert.Equal(t, "(int a, java.lang.String b) -> a", s.Site.Args[1].String())
	assert.Equal(t, "String::length", s.Site.Args[2].String())
}

func TestLiteralType(t *testing.T) {
	cases := map[string]string{
		"null":    "null",
		"true":    "boolean",
		`"text"`:  "java.lang.String",
		"'c'":     "char",
		"42":      "int",
		"0x1F":    "int",
		"42L":     "long",
		"1.5f":    "float",
		"1.5":     "double",
		"1e3":     "double",
		"2d":      "double",
		".5":      "double",
		"0xCAFEl": "long",
	}
	for text, expected := range cases {
		t.Run(text, func(t *testing.T) {
			typ, err := literalType(text)
			require.NoError(t, err)
			assert.Equal(t, expected, typ.String())
		})
	}
	_, err := literalType("answer")
	assert.Error(t, err)
}

func TestExpectationReportsMismatches(t *testing.T) {
	s, err := LoadFile(os.DirFS("testdata"), "identity.yaml")
	require.NoError(t, err)
	result, errs, err := s.Infer(inference.Options{})
	require.NoError(t, err)

	wrong := &Expectation{
		Mode:        "loose",
		Result:      "java.lang.Object",
		Resolutions: map[string]string{"T": "java.lang.Object", "X": "java.lang.Object"},
		Thrown:      []string{"java.io.IOException"},
		Unchecked:   true,
		Errors:      []string{"Unboundable"},
		Order:       "{α1}",
	}
	assert.Len(t, wrong.Check(result, errs, nil), 8)
	assert.Len(t, (&Expectation{Unsupported: true}).Check(result, errs, nil), 1)
}
