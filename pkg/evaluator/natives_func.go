package evaluator

import (
	"context"

	"github.com/sandrolain/gorebol/pkg/types"
)

// Function values are closed over the context they were made in; their
// bodies run in a child of it.

func nativeFunc(_ context.Context, c *Call) (types.Value, error) {
	return makeFunction(c.fn.Name, c.Arg("spec").(*types.Block), c.Arg("body").(*types.Block), c.env)
}

func nativeDoes(_ context.Context, c *Call) (types.Value, error) {
	return makeFunction("does", types.NewBlock(), c.Arg("body").(*types.Block), c.env)
}

func nativeHas(_ context.Context, c *Call) (types.Value, error) {
	spec := types.NewBlock(types.NewWord(types.KindRefinement, "local"))
	if err := spec.Append(c.Arg("vars").(*types.Block).Values()...); err != nil {
		return nil, err
	}
	return makeFunction("has", spec, c.Arg("body").(*types.Block), c.env)
}

func makeFunction(name string, spec, body *types.Block, env *EvalContext) (types.Value, error) {
	fn, err := newUserFunction(name, spec, body, env)
	if err != nil {
		return nil, err
	}
	return fn, nil
}
