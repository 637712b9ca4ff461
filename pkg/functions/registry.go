// Package functions provides types for registering host functions.
//
// Users of gorebol can define their own functions in Go and register them
// via [gorebol.WithCustomFunction]; scripts call them like any other
// native.
//
// # Example
//
//	result, err := gorebol.Eval(ctx, `greet "World"`,
//	    gorebol.WithCustomFunction("greet", "name [string!]", func(ctx context.Context, args ...types.Value) (types.Value, error) {
//	        return types.Str("Hello, " + types.Form(args[0]) + "!"), nil
//	    }),
//	)
//	// result is the string! "Hello, World!"
package functions

import (
	"context"

	"github.com/sandrolain/gorebol/pkg/types"
)

// CustomFunc is the signature for host functions.
// args contains the evaluated arguments in spec order; unused refinements
// are none.
// An error that is not a *types.Error is reported to scripts as a user
// error, so TRAP and ATTEMPT can intercept it.
type CustomFunc func(ctx context.Context, args ...types.Value) (types.Value, error)

// CustomFunctionDef describes a host function together with its optional
// spec block source (e.g. `value [integer!] /twice`).
// An empty Spec declares a function without arguments.
type CustomFunctionDef struct {
	// Name is the word the function is bound to.
	Name string
	// Spec is the source of the spec block used for argument gathering
	// and type checking.
	Spec string
	// Fn is the implementation.
	Fn CustomFunc
}

// Caller can invoke a function value (a native or a user function) that
// was passed as an argument. It is provided to AdvancedCustomFunc
// implementations so they can call back into the evaluator.
type Caller interface {
	// Call invokes fn with positional args, in spec order.
	Call(ctx context.Context, fn types.Value, args ...types.Value) (types.Value, error)
}

// AdvancedCustomFunc is like CustomFunc but also receives a Caller so the
// implementation can invoke function values passed as arguments.
type AdvancedCustomFunc func(ctx context.Context, caller Caller, args ...types.Value) (types.Value, error)

// AdvancedCustomFunctionDef is the struct counterpart of AdvancedCustomFunc.
type AdvancedCustomFunctionDef struct {
	// Name is the word the function is bound to.
	Name string
	// Spec is the source of the spec block.
	Spec string
	// Fn is the implementation.
	Fn AdvancedCustomFunc
}

// FunctionEntry is a common marker interface implemented by both
// [CustomFunctionDef] and [AdvancedCustomFunctionDef].
// It allows mixing both kinds in a single variadic call to [WithFunctions].
type FunctionEntry interface {
	isFunctionEntry()
}

func (c CustomFunctionDef) isFunctionEntry()         {}
func (a AdvancedCustomFunctionDef) isFunctionEntry() {}
