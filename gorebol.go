// Package gorebol embeds an evaluator for a REBOL-style block language.
//
// Scripts are blocks of values evaluated left to right. The language is built
// around non-local control flow: THROW and CATCH, BREAK and CONTINUE inside
// loops, EXIT and RETURN from functions, QUIT from the whole script, and TRAP
// and ATTEMPT for errors. ALL, ANY, IF, EITHER, CASE and SWITCH consume those
// signals the same way user code does.
//
// # Quick Start
//
//	// Simple evaluation
//	result, err := gorebol.Eval(`catch [loop 3 [throw 10] 20]`)
//
//	// Compile once, evaluate many times
//	script, err := gorebol.Compile(`either x > 10 ["big"] ["small"]`)
//	ev := evaluator.New()
//	result, _ := ev.EvalWithBindings(ctx, script, map[string]types.Value{"x": types.Integer(12)})
//
//	// With options
//	result, err := gorebol.Eval(source,
//	    gorebol.WithMaxDepth(500),
//	    gorebol.WithTimeout(5*time.Second),
//	)
//
// # Errors
//
// Failures come back as *types.Error carrying an error code, the args of the
// failure and the name of the native that raised it. A THROW nobody caught is
// reported as a no-catch error holding the payload; QUIT returns an
// *evaluator.QuitError with the script's exit value.
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/gorebol/pkg/parser
//   - Evaluator: github.com/sandrolain/gorebol/pkg/evaluator
//   - Functions: github.com/sandrolain/gorebol/pkg/functions
//   - Types: github.com/sandrolain/gorebol/pkg/types
package gorebol

import (
	"context"
	"fmt"
	"time"

	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/parser"
	"github.com/sandrolain/gorebol/pkg/types"
)

// Version returns the current version of GoRebol.
func Version() string {
	return "v0.1.0-dev"
}

// Option re-exports, so callers that only evaluate scripts need not import
// the evaluator package.
type (
	EvalOption = evaluator.EvalOption
	Legacy     = evaluator.Legacy
)

var (
	WithCaching          = evaluator.WithCaching
	WithCacheSize        = evaluator.WithCacheSize
	WithCache            = evaluator.WithCache
	WithConcurrency      = evaluator.WithConcurrency
	WithTimeout          = evaluator.WithTimeout
	WithDebug            = evaluator.WithDebug
	WithLogger           = evaluator.WithLogger
	WithMaxDepth         = evaluator.WithMaxDepth
	WithOutput           = evaluator.WithOutput
	WithLegacy           = evaluator.WithLegacy
	WithNative           = evaluator.WithNative
	WithGlobal           = evaluator.WithGlobal
	WithCustomFunction   = evaluator.WithCustomFunction
	WithAdvancedFunction = evaluator.WithAdvancedFunction
	WithFunctions        = evaluator.WithFunctions
)

// Compile parses a script for repeated evaluation.
//
// The compiled script is immutable and can be evaluated by several
// evaluators or goroutines at once.
//
// Example:
//
//	script, err := gorebol.Compile(`all [x > 0 x < 10]`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(source string, opts ...parser.CompileOption) (*types.Script, error) {
	return parser.Compile(source, opts...)
}

// Eval is a convenience function that compiles and evaluates a script in a
// single call. Evaluation is bounded to 30 seconds unless WithTimeout says
// otherwise.
//
// Example:
//
//	result, err := gorebol.Eval(`any [none 2 3]`)
func Eval(source string, opts ...EvalOption) (types.Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return EvalWithContext(ctx, source, opts...)
}

// EvalWithContext evaluates a script with a custom context.
func EvalWithContext(ctx context.Context, source string, opts ...EvalOption) (types.Value, error) {
	ev := evaluator.New(opts...)
	script, err := ev.Compile(source)
	if err != nil {
		return nil, err
	}
	return ev.Eval(ctx, script)
}

// MustCompile is like Compile but panics if the script cannot be parsed.
// It simplifies safe initialization of global variables.
func MustCompile(source string) *types.Script {
	script, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("gorebol: Compile(%q): %v", source, err))
	}
	return script
}
