// Package scenario reads YAML descriptions of a single generic call site: the
// classes involved, the callee's signature and the attributed arguments. It
// builds the inputs of one inference run out of them.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"io/fs"
	"strings"

	"github.com/cottand/jinfer/ast"
	"github.com/cottand/jinfer/inference"
	"github.com/cottand/jinfer/inference/infererr"
	"github.com/cottand/jinfer/internal/log"
	"github.com/cottand/jinfer/jtypes"
	"gopkg.in/yaml.v3"
)

var logger = log.DefaultLogger.With("section", "scenario")

// File is the document a scenario is written as
type File struct {
	// Classes are declared on top of the built-in java.lang, java.io and java.util classes
	Classes     []ClassSpec  `yaml:"classes"`
	Callee      CalleeSpec   `yaml:"callee"`
	Args        []ArgSpec    `yaml:"args"`
	PolyContext bool         `yaml:"polyContext"`
	Expect      *Expectation `yaml:"expect"`
}

type ClassSpec struct {
	Name       string   `yaml:"name"`
	Params     []string `yaml:"params"`
	Super      string   `yaml:"super"`
	Interfaces []string `yaml:"interfaces"`
	Interface  bool     `yaml:"interface"`
}

type TypeParamSpec struct {
	Name string `yaml:"name"`
	// Bounds are written as in a declaration: the class or type variable bound
	// first, interfaces after it
	Bounds []string `yaml:"bounds"`
}

type CalleeSpec struct {
	Name       string          `yaml:"name"`
	TypeParams []TypeParamSpec `yaml:"typeParams"`
	Formals    []string        `yaml:"formals"`
	Variadic   bool            `yaml:"variadic"`
	Throws     []string        `yaml:"throws"`
	Returns    string          `yaml:"returns"`
}

// ArgSpec is one argument expression. Kind selects which of the other fields apply:
//
//	name         text, type
//	literal      text, type (derived from text when omitted)
//	parens       inner
//	conditional  cond (optional), then, else
//	call         text, type, args, infersTypeArgs, new
//	lambda       params, paramTypes, body
//	methodref    qualifier, method, exact
type ArgSpec struct {
	Kind           string    `yaml:"kind"`
	Text           string    `yaml:"text"`
	Type           string    `yaml:"type"`
	Inner          *ArgSpec  `yaml:"inner"`
	Cond           *ArgSpec  `yaml:"cond"`
	Then           *ArgSpec  `yaml:"then"`
	Else           *ArgSpec  `yaml:"else"`
	Args           []ArgSpec `yaml:"args"`
	InfersTypeArgs bool      `yaml:"infersTypeArgs"`
	Constructor    bool      `yaml:"new"`
	Params         []string  `yaml:"params"`
	ParamTypes     []string  `yaml:"paramTypes"`
	Body           string    `yaml:"body"`
	Qualifier      string    `yaml:"qualifier"`
	Method         string    `yaml:"method"`
	Exact          bool      `yaml:"exact"`

	line, column int
}

// UnmarshalYAML keeps the position of the argument in the document, so
// diagnostics can point back at it
func (a *ArgSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain ArgSpec
	if err := value.Decode((*plain)(a)); err != nil {
		return err
	}
	a.line, a.column = value.Line, value.Column
	return nil
}

// Scenario is a loaded, type checked scenario, ready for inference
type Scenario struct {
	Name   string
	Pool   *jtypes.Pool
	Callee *inference.Callee
	Site   *inference.CallSite
	// Expect is nil when the document states no expected outcome
	Expect *Expectation

	fSet *token.FileSet
	file *token.File
}

// LoadFile reads and builds the scenario at name in fsys
func LoadFile(fsys fs.FS, name string) (*Scenario, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return Load(name, content)
}

// Load builds the scenario in content; name is only used in positions
func Load(name string, content []byte) (*Scenario, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario %s is empty", name)
		}
		return nil, fmt.Errorf("could not decode scenario %s: %w", name, err)
	}

	fSet := token.NewFileSet()
	file := fSet.AddFile(name, -1, len(content))
	file.SetLinesForContent(content)

	s, err := f.build(file)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	s.Name = name
	s.fSet = fSet
	return s, nil
}

// Infer runs inference for the scenario's call site
func (s *Scenario) Infer(opts inference.Options) (*inference.Inferences, *infererr.Errors, error) {
	return inference.NewEngine(s.Pool, opts).Infer(s.Callee, s.Site)
}

// Position resolves a position of this scenario's document
func (s *Scenario) Position(pos token.Pos) token.Position {
	if s.fSet == nil {
		return token.Position{Filename: s.Name}
	}
	return s.fSet.Position(pos)
}

// FormatError renders a diagnostic with the document position it refers to
func (s *Scenario) FormatError(e infererr.InferError) string {
	return fmt.Sprintf("%s: %s", s.Position(e.Pos()), infererr.FormatWithCode(e))
}

func (f *File) build(file *token.File) (*Scenario, error) {
	pool := jtypes.NewPool()
	resolve := f.resolver(pool)
	for _, c := range f.Classes {
		decl, err := c.decl(resolve)
		if err != nil {
			return nil, err
		}
		if err := pool.Declare(decl); err != nil {
			return nil, err
		}
		logger.Debug("declared class", "name", decl.Name, "params", decl.Params)
	}

	callee, err := f.Callee.build(pool, resolve)
	if err != nil {
		return nil, err
	}
	logger.Debug("built callee", "callee", callee.String())

	b := &argBuilder{file: file, env: jtypes.ParseEnv{Resolve: resolve}}
	site := &inference.CallSite{PolyContext: f.PolyContext}
	for i := range f.Args {
		arg, err := b.build(&f.Args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		site.Args = append(site.Args, arg)
	}
	if len(site.Args) > 0 {
		site.Range = ast.Range{
			PosStart: site.Args[0].Pos(),
			PosEnd:   site.Args[len(site.Args)-1].End(),
		}
	}
	return &Scenario{Pool: pool, Callee: callee, Site: site, Expect: f.Expect, file: file}, nil
}

// resolver resolves class names against the built-in classes and the classes
// the document declares, which may refer to each other in any order
func (f *File) resolver(pool *jtypes.Pool) func(string) (string, bool) {
	return func(name string) (string, bool) {
		if resolved, ok := pool.Resolve(name); ok {
			return resolved, true
		}
		for _, c := range f.Classes {
			if c.Name == name || strings.HasSuffix(c.Name, "."+name) {
				return c.Name, true
			}
		}
		return "", false
	}
}

func (c ClassSpec) decl(resolve func(string) (string, bool)) (jtypes.ClassDecl, error) {
	decl := jtypes.ClassDecl{Name: c.Name, Params: c.Params, Interface: c.Interface}
	env := jtypes.ParseEnv{TypeVars: make(map[string]jtypes.TypeVar), Resolve: resolve}
	for _, p := range c.Params {
		env.TypeVars[p] = jtypes.TypeVar{Name: p, Owner: c.Name}
	}
	classOf := func(src string) (*jtypes.Class, error) {
		t, err := jtypes.Parse(src, env)
		if err != nil {
			return nil, err
		}
		class, ok := t.(*jtypes.Class)
		if !ok {
			return nil, fmt.Errorf("supertype %s of %s is not a class or interface type", src, c.Name)
		}
		return class, nil
	}
	if c.Super != "" {
		super, err := classOf(c.Super)
		if err != nil {
			return decl, err
		}
		decl.Super = super
	}
	for _, src := range c.Interfaces {
		iface, err := classOf(src)
		if err != nil {
			return decl, err
		}
		decl.Interfaces = append(decl.Interfaces, iface)
	}
	return decl, nil
}

func (c CalleeSpec) build(pool *jtypes.Pool, resolve func(string) (string, bool)) (*inference.Callee, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("callee without a name")
	}
	callee := &inference.Callee{Name: c.Name, Variadic: c.Variadic}
	env := jtypes.ParseEnv{TypeVars: make(map[string]jtypes.TypeVar), Resolve: resolve}
	for _, tp := range c.TypeParams {
		env.TypeVars[tp.Name] = callee.TypeVar(tp.Name)
	}
	parse := func(src string) (jtypes.Type, error) {
		return jtypes.Parse(src, env)
	}

	for _, spec := range c.TypeParams {
		tp := inference.TypeParam{Name: spec.Name}
		for i, src := range spec.Bounds {
			bound, err := parse(src)
			if err != nil {
				return nil, fmt.Errorf("bound of %s: %w", spec.Name, err)
			}
			if i == 0 && !isInterface(pool, bound) {
				tp.Super = bound
				continue
			}
			tp.Interfaces = append(tp.Interfaces, bound)
		}
		callee.TypeParams = append(callee.TypeParams, tp)
	}
	for _, src := range c.Formals {
		formal, err := parse(src)
		if err != nil {
			return nil, fmt.Errorf("formal of %s: %w", c.Name, err)
		}
		callee.Formals = append(callee.Formals, formal)
	}
	for _, src := range c.Throws {
		thrown, err := parse(src)
		if err != nil {
			return nil, fmt.Errorf("throws clause of %s: %w", c.Name, err)
		}
		callee.Throws = append(callee.Throws, thrown)
	}
	if c.Returns != "" {
		ret, err := parse(c.Returns)
		if err != nil {
			return nil, fmt.Errorf("return type of %s: %w", c.Name, err)
		}
		callee.Return = ret
	}
	return callee, nil
}

func isInterface(pool *jtypes.Pool, t jtypes.Type) bool {
	c, ok := t.(*jtypes.Class)
	return ok && pool.IsInterface(c.Name)
}
