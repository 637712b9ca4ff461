package evaluator

import (
	"context"
	"errors"

	"github.com/sandrolain/gorebol/pkg/functions"
	"github.com/sandrolain/gorebol/pkg/types"
)

// hostNative wraps a registered host function as a native.
func hostNative(def functions.CustomFunctionDef) (*Function, error) {
	return NewNative(def.Name, def.Spec, func(ctx context.Context, c *Call) (types.Value, error) {
		v, err := def.Fn(ctx, c.Args()...)
		return v, hostError(def.Name, err)
	})
}

// advancedHostNative wraps a host function that calls back into scripts.
func advancedHostNative(def functions.AdvancedCustomFunctionDef) (*Function, error) {
	return NewNative(def.Name, def.Spec, func(ctx context.Context, c *Call) (types.Value, error) {
		v, err := def.Fn(ctx, caller{c}, c.Args()...)
		return v, hostError(def.Name, err)
	})
}

// hostError passes throws, script errors and cancellations through and
// wraps anything else as a trappable user error.
func hostError(name string, err error) error {
	if err == nil || IsSignal(err) {
		return err
	}
	if _, ok := AsError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return types.Errorf(types.CodeUser, "%s: %v", name, err).WithCause(err)
}

// caller implements functions.Caller over the native's call frame.
type caller struct {
	c *Call
}

func (k caller) Call(ctx context.Context, fn types.Value, args ...types.Value) (types.Value, error) {
	return k.c.Apply(ctx, fn, args...)
}
