//go:build js && wasm

// Command gorebol-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `gorebol` object with the following API:
//
//	gorebol.version()          → string
//	gorebol.eval(source)       → molded result  (throws on error)
//	gorebol.session()          → { eval(source) → molded result }  words persist between calls
//
// PRINT output is forwarded to console.log.
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o gorebol.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	require('./wasm_exec.js')
//	const go = new Go()
//	const { instance } = await WebAssembly.instantiate(fs.readFileSync('gorebol.wasm'), go.importObject)
//	go.run(instance)
//	console.log(gorebol.eval('catch [throw 42]')) // 42
package main

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/sandrolain/gorebol"
	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/types"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	js.Global().Get("Error").New(msg)
	panic(msg)
}

// console writes PRINT output to console.log one line at a time.
type console struct{ pending strings.Builder }

func (c *console) Write(p []byte) (int, error) {
	c.pending.Write(p)
	text := c.pending.String()
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		for _, line := range strings.Split(text[:i], "\n") {
			js.Global().Get("console").Call("log", line)
		}
		c.pending.Reset()
		c.pending.WriteString(text[i+1:])
	}
	return len(p), nil
}

var ev = evaluator.New(
	gorebol.WithConcurrency(false),
	gorebol.WithOutput(&console{}),
)

func result(name string, v types.Value, err error) any {
	if err != nil {
		jsThrow(fmt.Sprintf("%s: %v", name, err))
	}
	return types.Mold(v)
}

// jsEval implements gorebol.eval(source) → molded result.
func jsEval(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		jsThrow("gorebol.eval requires 1 argument: source (string)")
	}
	script, err := ev.Compile(args[0].String())
	if err != nil {
		jsThrow(fmt.Sprintf("gorebol.eval: %v", err))
	}
	v, err := ev.Eval(context.Background(), script)
	return result("gorebol.eval", v, err)
}

// jsSession implements gorebol.session() → { eval(source) → molded result }.
func jsSession(_ js.Value, _ []js.Value) any {
	s := ev.NewSession()
	evalFn := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) < 1 {
			jsThrow("session.eval requires 1 argument: source (string)")
		}
		v, err := s.EvalString(context.Background(), args[0].String())
		return result("session.eval", v, err)
	})
	return js.ValueOf(map[string]any{"eval": evalFn})
}

func main() {
	api := map[string]any{
		"eval":    js.FuncOf(jsEval),
		"session": js.FuncOf(jsSession),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) any {
			return gorebol.Version()
		}),
	}
	js.Global().Set("gorebol", js.ValueOf(api))

	// The JS event loop owns execution from here.
	select {}
}
