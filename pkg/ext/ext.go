// Package ext provides optional extensions for gorebol beyond the core
// natives.
//
// The extensions live in sub-packages:
//   - extfunc – PIPE, TAP and MEMOIZE (higher-order helpers)
//   - extstring – case conversion, searching and templating of strings
//   - extwasm – LOAD-EXTENSION, WebAssembly modules as command natives
//
// # Integration – all extensions at once
//
//	import "github.com/sandrolain/gorebol/pkg/ext"
//
//	loader := extwasm.NewLoader()
//	defer loader.Close(ctx)
//	result, err := gorebol.Eval(ctx, source, ext.WithAll(loader))
//
// # Integration – single function from a sub-package
//
//	import "github.com/sandrolain/gorebol/pkg/ext/extfunc"
//
//	result, err := gorebol.Eval(ctx, source,
//	    gorebol.WithFunctions(extfunc.Pipe()),
//	)
package ext

import (
	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/ext/extfunc"
	"github.com/sandrolain/gorebol/pkg/ext/extstring"
	"github.com/sandrolain/gorebol/pkg/ext/extwasm"
	"github.com/sandrolain/gorebol/pkg/functions"
)

// All returns all simple (non-HOF) extension function definitions.
func All() []functions.CustomFunctionDef {
	var all []functions.CustomFunctionDef
	all = append(all, extstring.All()...)
	return all
}

// AllAdvanced returns all advanced (HOF) extension function definitions.
func AllAdvanced() []functions.AdvancedCustomFunctionDef {
	var all []functions.AdvancedCustomFunctionDef
	all = append(all, extfunc.AllAdvanced()...)
	return all
}

// AllEntries returns all extension function definitions as
// [functions.FunctionEntry], suitable for spreading into
// [evaluator.WithFunctions]:
//
//	evaluator.WithFunctions(ext.AllEntries()...)
func AllEntries() []functions.FunctionEntry {
	simple := All()
	adv := AllAdvanced()
	out := make([]functions.FunctionEntry, 0, len(simple)+len(adv))
	for _, f := range simple {
		out = append(out, f)
	}
	for _, f := range adv {
		out = append(out, f)
	}
	return out
}

// WithAll returns an EvalOption that registers every extension. Modules
// loaded by scripts go to loader; a nil loader leaves LOAD-EXTENSION out.
func WithAll(loader *extwasm.Loader) evaluator.EvalOption {
	fns := evaluator.WithFunctions(AllEntries()...)
	if loader == nil {
		return fns
	}
	wasm := loader.Option()
	return func(opts *evaluator.EvalOptions) {
		fns(opts)
		wasm(opts)
	}
}

// WithFunctional returns an EvalOption for the functional helpers.
func WithFunctional() evaluator.EvalOption {
	return evaluator.WithFunctions(extfunc.AllEntries()...)
}

// WithString returns an EvalOption for the string helpers.
func WithString() evaluator.EvalOption {
	return evaluator.WithFunctions(extstring.AllEntries()...)
}

// WithWasm returns an EvalOption for LOAD-EXTENSION backed by loader.
func WithWasm(loader *extwasm.Loader) evaluator.EvalOption {
	return loader.Option()
}
