package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandrolain/gorebol/pkg/types"
)

// printable forms a value for PRINT; blocks are reduced first and their
// items joined with spaces.
func (c *Call) printable(ctx context.Context, v types.Value) (string, error) {
	blk, ok := v.(*types.Block)
	if !ok || blk.Kind() != types.KindBlock {
		return types.Form(v), nil
	}
	values, err := c.t.reduce(ctx, c.env, blk)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(values))
	for _, item := range values {
		if types.IsUnset(item) {
			continue
		}
		parts = append(parts, types.Form(item))
	}
	return strings.Join(parts, " "), nil
}

func nativePrint(ctx context.Context, c *Call) (types.Value, error) {
	text, err := c.printable(ctx, c.Arg("value"))
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintln(c.Output(), text); err != nil {
		return nil, types.Errorf(types.CodeMisc, "print failed").WithCause(err)
	}
	return types.UnsetValue, nil
}

func nativePrin(ctx context.Context, c *Call) (types.Value, error) {
	text, err := c.printable(ctx, c.Arg("value"))
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprint(c.Output(), text); err != nil {
		return nil, types.Errorf(types.CodeMisc, "prin failed").WithCause(err)
	}
	return types.UnsetValue, nil
}

func nativeProbe(_ context.Context, c *Call) (types.Value, error) {
	v := c.Arg("value")
	if _, err := fmt.Fprintln(c.Output(), types.Mold(v)); err != nil {
		return nil, types.Errorf(types.CodeMisc, "probe failed").WithCause(err)
	}
	return v, nil
}

func nativeMold(_ context.Context, c *Call) (types.Value, error) {
	return types.Str(types.Mold(c.Arg("value"))), nil
}

func nativeForm(_ context.Context, c *Call) (types.Value, error) {
	return types.Str(types.Form(c.Arg("value"))), nil
}
