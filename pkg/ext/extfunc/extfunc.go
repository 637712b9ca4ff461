// Package extfunc provides functional helpers that call back into scripts.
package extfunc

import (
	"context"
	"sync"

	"github.com/sandrolain/gorebol/pkg/evaluator"
	"github.com/sandrolain/gorebol/pkg/functions"
	"github.com/sandrolain/gorebol/pkg/types"
)

// AllAdvanced returns all advanced (HOF) functional utility definitions.
// These require a Caller to invoke function arguments.
func AllAdvanced() []functions.AdvancedCustomFunctionDef {
	return []functions.AdvancedCustomFunctionDef{
		Pipe(),
		Tap(),
		Memoize(),
	}
}

// AllEntries returns all functional utility definitions as [functions.FunctionEntry],
// suitable for spreading into [evaluator.WithFunctions].
func AllEntries() []functions.FunctionEntry {
	all := AllAdvanced()
	out := make([]functions.FunctionEntry, len(all))
	for i, f := range all {
		out[i] = f
	}
	return out
}

// Pipe threads a value through a block of functions, left to right.
//
// Example:
//
//	pipe 3 reduce [:double :negate]  ; == -6
//
// A THROW or BREAK raised by a step leaves the pipe like any other
// non-local exit.
func Pipe() functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name: "pipe",
		Spec: "value [any-value!] steps [block!]",
		Fn: func(ctx context.Context, caller functions.Caller, args ...types.Value) (types.Value, error) {
			value := args[0]
			for i, step := range args[1].(*types.Block).Values() {
				if !step.Kind().IsFunction() {
					return nil, types.Errorf(types.CodeInvalidArg, "pipe step %d is %s, not a function", i+1, step.Kind()).
						WithArgs(step)
				}
				result, err := caller.Call(ctx, step, value)
				if err != nil {
					return nil, err
				}
				value = result
			}
			return value, nil
		},
	}
}

// Tap calls fn with value for its side effects and returns value.
func Tap() functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name: "tap",
		Spec: "value [any-value!] fn [any-function!]",
		Fn: func(ctx context.Context, caller functions.Caller, args ...types.Value) (types.Value, error) {
			if _, err := caller.Call(ctx, args[1], args[0]); err != nil {
				return nil, err
			}
			return args[0], nil
		},
	}
}

// Memoize wraps a one-argument function in a native that caches results by
// the molded argument. Calls that end in an error or a throw are not cached.
//
//	slow-square: memoize func [n] [n * n]
func Memoize() functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name: "memoize",
		Spec: "fn [any-function!]",
		Fn: func(_ context.Context, _ functions.Caller, args ...types.Value) (types.Value, error) {
			m := &memoized{fn: args[0], cache: make(map[string]types.Value)}
			fn, err := evaluator.NewNative("memoized", "value [any-type!]", m.call)
			if err != nil {
				return nil, err
			}
			return fn, nil
		},
	}
}

type memoized struct {
	fn    types.Value
	mu    sync.Mutex
	cache map[string]types.Value
}

func (m *memoized) call(ctx context.Context, c *evaluator.Call) (types.Value, error) {
	arg := c.Arg("value")
	key := types.Mold(arg)

	m.mu.Lock()
	v, ok := m.cache[key]
	m.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err := c.Apply(ctx, m.fn, arg)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.cache[key] = v
	m.mu.Unlock()
	return v, nil
}
