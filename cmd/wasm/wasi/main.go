//go:build wasip1

// Command gorebol-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "source": "<script>" }
//	stdout: { "result": "<molded value>", "output": "<printed text>" }  on success
//	        { "error":  "<message>",      "output": "<printed text>" }  on failure (exit code 1)
//
// A script that ends with QUIT/RETURN reports its molded payload as the
// result and exits with the payload when it is an integer.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o gorebol.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"source":"catch [throw 42]"}' | wasmtime gorebol.wasm
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/sandrolain/gorebol"
	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/types"
)

type request struct {
	Source string `json:"source"`
}

type response struct {
	Result string `json:"result,omitempty"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	var out strings.Builder
	result, err := gorebol.EvalWithContext(context.Background(), req.Source,
		gorebol.WithConcurrency(false),
		gorebol.WithOutput(&out),
	)
	if err != nil {
		var quit *evaluator.QuitError
		if errors.As(err, &quit) {
			writeResponse(response{Result: types.Mold(quit.Value), Output: out.String()}, quit.ExitCode())
		}
		writeResponse(response{Error: err.Error(), Output: out.String()}, 1)
	}

	writeResponse(response{Result: types.Mold(result), Output: out.String()}, 0)
}
