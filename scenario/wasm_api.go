//go:build js && wasm

package scenario

import (
	"fmt"
	"strings"
	"syscall/js"

	"github.com/cottand/jinfer/inference"
)

// InferAndShow loads the scenario document passed as the only argument and
// returns the inference result, or the diagnostics that prevented one.
//
// output: { error: string } | { result: string, order: string }
func InferAndShow(_ js.Value, args []js.Value) (ret any) {
	errorObj := func(err string) any {
		return js.ValueOf(map[string]any{
			"error": err,
		})
	}
	defer func() {
		if r := recover(); r != nil {
			ret = errorObj("inference panicked: " + fmt.Sprint(r))
		}
	}()
	if len(args) != 1 {
		return errorObj(fmt.Sprintf("expected 1 argument, got %d", len(args)))
	}

	s, err := Load("scenario.yaml", []byte(args[0].String()))
	if err != nil {
		return errorObj(fmt.Sprintf("the scenario could not be loaded:\n\n%s", err))
	}
	result, errs, err := s.Infer(inference.Options{})
	if err != nil {
		return errorObj(fmt.Sprintf("feature not yet supported:\n\n%s", err))
	}
	if errs.HasError() {
		sb := strings.Builder{}
		sb.WriteString("inference failed with the following errors:\n")
		for _, inferErr := range errs.Errors() {
			sb.WriteString(s.FormatError(inferErr))
			sb.WriteByte('\n')
		}
		return errorObj(sb.String())
	}
	return js.ValueOf(map[string]any{
		"result": result.String(),
		"order":  result.ResolutionOrder,
	})
}
