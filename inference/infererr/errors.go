package infererr

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/cottand/jinfer/ast"
)

// enableDebugErrorPrinting makes errors include the frame that created them when printed
const enableDebugErrorPrinting bool = false

type ErrCode int

const (
	None ErrCode = iota
	UncheckedConversion
	MissingType
	MissingBounds
	BoundComputation
	NonReferenceInstantiation
	Unresolvable
	NotApplicable
	Unboundable
)

var errCodeNames = [...]string{
	None:                      "None",
	UncheckedConversion:       "UncheckedConversion",
	MissingType:               "MissingType",
	MissingBounds:             "MissingBounds",
	BoundComputation:          "BoundComputation",
	NonReferenceInstantiation: "NonReferenceInstantiation",
	Unresolvable:              "Unresolvable",
	NotApplicable:             "NotApplicable",
	Unboundable:               "Unboundable",
}

func (c ErrCode) String() string {
	if c >= 0 && int(c) < len(errCodeNames) {
		return errCodeNames[c]
	}
	return fmt.Sprintf("ErrCode(%d)", int(c))
}

type Severity int

const (
	Warning Severity = iota
	Severe
)

func (s Severity) String() string {
	if s == Warning {
		return "WARNING"
	}
	return "SEVERE"
}

// Level is the slog level diagnostics of this severity are logged at
func (s Severity) Level() slog.Level {
	if s == Warning {
		return slog.LevelWarn
	}
	return slog.LevelError
}

type InferError interface {
	Error() string
	Code() ErrCode
	Severity() Severity
	ast.Positioner

	withStack([]byte) InferError
	getStack() []byte
}

func FormatWithCode(e InferError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := strings.Split(string(e.getStack()), "\n")
		if len(stack) > 6 {
			return fmt.Sprintf("%s:(E%03d) %s: %s", stack[6], e.Code(), e.Severity(), e.Error())
		}
	}
	return fmt.Sprintf("(E%03d) %s: %s", e.Code(), e.Severity(), e.Error())
}

func New[E InferError](err E) InferError {
	return err.withStack(debug.Stack())
}

type NewUncheckedConversion struct {
	ast.Positioner
	Callee string
	// Conversions are the source -> target pairs that needed unchecked conversion
	Conversions []string
	stack       []byte
}

func (e NewUncheckedConversion) Error() string {
	return fmt.Sprintf("inference for %s required unchecked conversion: %s", e.Callee, strings.Join(e.Conversions, ", "))
}
func (e NewUncheckedConversion) Code() ErrCode       { return UncheckedConversion }
func (e NewUncheckedConversion) Severity() Severity { return Warning }
func (e NewUncheckedConversion) getStack() []byte   { return e.stack }
func (e NewUncheckedConversion) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

type NewMissingType struct {
	ast.Positioner
	Expr  string
	stack []byte
}

func (e NewMissingType) Error() string {
	return fmt.Sprintf("no static type is known for expression '%s'", e.Expr)
}
func (e NewMissingType) Code() ErrCode       { return MissingType }
func (e NewMissingType) Severity() Severity { return Severe }
func (e NewMissingType) getStack() []byte   { return e.stack }
func (e NewMissingType) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

type NewMissingBounds struct {
	ast.Positioner
	TypeParam string
	Reason    string
	stack     []byte
}

func (e NewMissingBounds) Error() string {
	return fmt.Sprintf("could not compute the declared bounds of type parameter %s: %s", e.TypeParam, e.Reason)
}
func (e NewMissingBounds) Code() ErrCode       { return MissingBounds }
func (e NewMissingBounds) Severity() Severity { return Severe }
func (e NewMissingBounds) getStack() []byte   { return e.stack }
func (e NewMissingBounds) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

type NewBoundComputation struct {
	ast.Positioner
	Var    string
	Reason string
	stack  []byte
}

func (e NewBoundComputation) Error() string {
	return fmt.Sprintf("could not compute an instantiation for %s: %s", e.Var, e.Reason)
}
func (e NewBoundComputation) Code() ErrCode       { return BoundComputation }
func (e NewBoundComputation) Severity() Severity { return Severe }
func (e NewBoundComputation) getStack() []byte   { return e.stack }
func (e NewBoundComputation) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

type NewNonReferenceInstantiation struct {
	ast.Positioner
	Var   string
	Type  string
	stack []byte
}

func (e NewNonReferenceInstantiation) Error() string {
	return fmt.Sprintf("refusing to instantiate %s to '%s', which is not a reference type", e.Var, e.Type)
}
func (e NewNonReferenceInstantiation) Code() ErrCode       { return NonReferenceInstantiation }
func (e NewNonReferenceInstantiation) Severity() Severity { return Severe }
func (e NewNonReferenceInstantiation) getStack() []byte   { return e.stack }
func (e NewNonReferenceInstantiation) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

type NewUnresolvable struct {
	ast.Positioner
	Callee string
	Vars   []string
	stack  []byte
}

func (e NewUnresolvable) Error() string {
	return fmt.Sprintf("could not infer %s for call to %s", strings.Join(e.Vars, ", "), e.Callee)
}
func (e NewUnresolvable) Code() ErrCode       { return Unresolvable }
func (e NewUnresolvable) Severity() Severity { return Severe }
func (e NewUnresolvable) getStack() []byte   { return e.stack }
func (e NewUnresolvable) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

type NewNotApplicable struct {
	ast.Positioner
	Callee string
	Args   []string
	stack  []byte
}

func (e NewNotApplicable) Error() string {
	return fmt.Sprintf("%s is not applicable to arguments (%s) by strict, loose or variable arity invocation",
		e.Callee, strings.Join(e.Args, ", "))
}
func (e NewNotApplicable) Code() ErrCode       { return NotApplicable }
func (e NewNotApplicable) Severity() Severity { return Severe }
func (e NewNotApplicable) getStack() []byte   { return e.stack }
func (e NewNotApplicable) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

type NewUnboundable struct {
	ast.Positioner
	Callee string
	// Phase names the bound set that became false, such as "B4"
	Phase string
	stack []byte
}

func (e NewUnboundable) Error() string {
	return fmt.Sprintf("bounds inferred for call to %s are contradictory (%s)", e.Callee, e.Phase)
}
func (e NewUnboundable) Code() ErrCode       { return Unboundable }
func (e NewUnboundable) Severity() Severity { return Severe }
func (e NewUnboundable) getStack() []byte   { return e.stack }
func (e NewUnboundable) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}
