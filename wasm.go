//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cottand/jinfer/scenario"
)

func main() {
	js.Global().Set("InferAndShow", js.FuncOf(scenario.InferAndShow))

	// wait indefinitely so that Go does not terminate execution
	// and the function remains available
	<-make(chan struct{})
}
