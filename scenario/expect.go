package scenario

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cottand/jinfer/inference"
	"github.com/cottand/jinfer/inference/infererr"
	"github.com/cottand/jinfer/util"
)

// Expectation is the outcome a scenario documents. Fields left empty are not checked,
// except Errors: an expectation without errors expects a run without diagnostics.
type Expectation struct {
	// Mode is strict, loose, variable-arity or none
	Mode        string            `yaml:"mode"`
	Result      string            `yaml:"result"`
	Resolutions map[string]string `yaml:"resolutions"`
	Thrown      []string          `yaml:"thrown"`
	Unchecked   bool              `yaml:"unchecked"`
	Unsupported bool              `yaml:"unsupported"`
	// Errors are the codes of the expected diagnostics, in the order they are reported
	Errors []string `yaml:"errors"`
	Order  string   `yaml:"order"`
}

// Check compares the outcome of an inference run against e and describes
// every mismatch
func (e *Expectation) Check(result *inference.Inferences, errs *infererr.Errors, err error) []string {
	var mismatches []string
	mismatch := func(format string, args ...any) {
		mismatches = append(mismatches, fmt.Sprintf(format, args...))
	}

	if e.Unsupported {
		if !infererr.IsUnsupported(err) {
			mismatch("expected the call site to be unsupported, got error %v", err)
		}
		return mismatches
	}
	if err != nil {
		return []string{fmt.Sprintf("unexpected failure: %v", err)}
	}

	codes := make([]string, 0, len(errs.Errors()))
	for _, inferErr := range errs.Errors() {
		codes = append(codes, inferErr.Code().String())
	}
	if !slices.Equal(codes, e.Errors) {
		mismatch("expected diagnostics [%s], got [%s]", strings.Join(e.Errors, ", "), strings.Join(codes, ", "))
	}

	if e.Mode != "" && e.Mode != result.Mode.String() {
		mismatch("expected %s invocation, got %s", e.Mode, result.Mode)
	}
	if e.Result != "" && e.Result != result.NormalResultType.String() {
		mismatch("expected result type %s, got %s", e.Result, result.NormalResultType)
	}
	for _, param := range slices.Sorted(maps.Keys(e.Resolutions)) {
		expected := e.Resolutions[param]
		actual, ok := result.Resolution(param)
		if !ok {
			mismatch("%s is not a type parameter of the callee", param)
			continue
		}
		if actual.String() != expected {
			mismatch("expected %s := %s, got %s", param, expected, actual)
		}
	}
	if e.Thrown != nil {
		thrown := util.Strings(result.ThrownTypes)
		if !slices.Equal(thrown, e.Thrown) {
			mismatch("expected thrown [%s], got [%s]", strings.Join(e.Thrown, ", "), strings.Join(thrown, ", "))
		}
	}
	if e.Unchecked != result.DependsOnUncheckedConversion {
		mismatch("expected unchecked conversion %t, got %t", e.Unchecked, result.DependsOnUncheckedConversion)
	}
	if e.Order != "" && e.Order != result.ResolutionOrder {
		mismatch("expected resolution order %s, got %s", e.Order, result.ResolutionOrder)
	}
	return mismatches
}
