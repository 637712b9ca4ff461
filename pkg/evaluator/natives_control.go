package evaluator

import (
	"context"

	"github.com/sandrolain/gorebol/pkg/types"
)

// nativeCatch runs a block and consumes the throws it asks for. Anything it
// does not claim is returned unchanged.
func nativeCatch(ctx context.Context, c *Call) (types.Value, error) {
	if c.Ref("any") && c.Ref("name") {
		return nil, types.Errorf(types.CodeBadRefines, "catch cannot combine /any and /name")
	}

	v, err := c.DoBlock(ctx, c.Arg("block").(*types.Block))
	if err == nil {
		return v, nil
	}
	th, ok := AsThrow(err)
	if !ok {
		return nil, err
	}

	mine, merr := c.claims(th)
	if merr != nil {
		return nil, merr
	}
	if !mine {
		return nil, err
	}

	if c.Ref("with") {
		name := th.Name()
		payload := th.Take()
		return c.runHandler(ctx, c.Arg("handler"), payload, name)
	}
	return th.Take(), nil
}

// claims reports whether the refinements of a CATCH select th.
func (c *Call) claims(th *Throw) (bool, error) {
	if th.Origin == OriginQuit {
		return c.Ref("quit"), nil
	}
	if c.Ref("any") {
		return true, nil
	}
	if !c.Ref("name") {
		return th.Unnamed(), nil
	}

	candidates := []types.Value{c.Arg("word")}
	if blk, ok := c.Arg("word").(*types.Block); ok {
		candidates = blk.Values()
	}
	for _, cand := range candidates {
		if _, nested := cand.(*types.Block); nested {
			return false, types.Errorf(types.CodeInvalidArg, "catch/name does not accept nested blocks").
				WithArgs(cand)
		}
		ok, err := th.matchesName(cand)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// runHandler runs a /with handler. A block is evaluated; a function gets as
// many of args as its spec takes before the first refinement.
func (c *Call) runHandler(ctx context.Context, handler types.Value, args ...types.Value) (types.Value, error) {
	switch h := handler.(type) {
	case *types.Block:
		return c.DoBlock(ctx, h)
	case *Function:
		n := h.Arity()
		if n > len(args) {
			n = len(args)
		}
		return c.t.apply(ctx, c.env, h, args[:n])
	}
	return nil, types.Errorf(types.CodeInvalidArg, "invalid handler %s", handler.Kind())
}

func nativeThrow(_ context.Context, c *Call) (types.Value, error) {
	value := c.Arg("value")
	if _, ok := value.(*types.Error); ok {
		return nil, types.Errorf(types.CodeUseFailForError, "use fail to raise an error").WithArgs(value)
	}
	var name types.Value
	if c.Ref("name") {
		name = c.Arg("word")
		if _, ok := name.(*types.Block); ok {
			return nil, types.Errorf(types.CodeInvalidArg, "throw name cannot be a block").WithArgs(name)
		}
	}
	return nil, newThrow(OriginThrow, name, value)
}

// guarded runs blk under a fresh trap and returns the error that landed, if
// any. Throws and cancellations are returned as err.
func (c *Call) guarded(ctx context.Context, blk *types.Block) (types.Value, *types.Error, error) {
	guard := c.t.pushTrap()
	v, err := c.DoBlock(ctx, blk)
	landed := guard.land(err)
	guard.drop()

	if landed != nil {
		if c.t.ev.opts.Debug {
			c.t.logger.Debug("trap landed", "code", string(landed.Code), "depth", c.t.depth)
		}
		return nil, landed, nil
	}
	return v, nil, err
}

func nativeTrap(ctx context.Context, c *Call) (types.Value, error) {
	v, landed, err := c.guarded(ctx, c.Arg("block").(*types.Block))
	if err != nil {
		return nil, err
	}
	if landed == nil {
		return v, nil
	}
	if c.Ref("with") {
		return c.runHandler(ctx, c.Arg("handler"), landed)
	}
	return landed, nil
}

func nativeAttempt(ctx context.Context, c *Call) (types.Value, error) {
	v, landed, err := c.guarded(ctx, c.Arg("block").(*types.Block))
	if err != nil {
		return nil, err
	}
	if landed != nil {
		return types.NoneValue, nil
	}
	return v, nil
}

// signal builds the throw of an exit native.
func (c *Call) signal(payload types.Value) *Throw {
	th := newThrow(c.fn.Origin, nil, payload)
	th.native = c.fn
	return th
}

func nativeBreak(_ context.Context, c *Call) (types.Value, error) {
	var payload types.Value = types.UnsetValue
	switch {
	case c.Ref("with"):
		payload = c.Arg("value")
	case c.Ref("return"):
		payload = c.Arg("return-value")
	}
	return nil, c.signal(payload)
}

func nativeContinue(_ context.Context, c *Call) (types.Value, error) {
	var payload types.Value = types.UnsetValue
	if c.Ref("with") {
		payload = c.Arg("value")
	}
	return nil, c.signal(payload)
}

func nativeExit(_ context.Context, c *Call) (types.Value, error) {
	var payload types.Value = types.UnsetValue
	if c.Ref("with") {
		payload = c.Arg("value")
	}
	return nil, c.signal(payload)
}

// nativeReturn is only reached outside a function body; calls bind their
// own definitional return.
func nativeReturn(_ context.Context, _ *Call) (types.Value, error) {
	return nil, types.Errorf(types.CodeMisc, "return used outside of a function")
}

func nativeQuit(_ context.Context, c *Call) (types.Value, error) {
	var payload types.Value = types.UnsetValue
	if c.Ref("return") {
		payload = c.Arg("value")
	}
	return nil, c.signal(payload)
}

func nativeAll(ctx context.Context, c *Call) (types.Value, error) {
	blk := c.Arg("block").(*types.Block)
	out := types.Value(types.True)
	for i := 0; ; {
		next, v, err := c.DoNext(ctx, blk, i)
		if err != nil {
			return nil, err
		}
		if next == EndFlag {
			break
		}
		if types.IsConditionalFalse(v) {
			return types.NoneValue, nil
		}
		out, i = v, next
	}
	if types.IsUnset(out) {
		return types.True, nil
	}
	return out, nil
}

func nativeAny(ctx context.Context, c *Call) (types.Value, error) {
	blk := c.Arg("block").(*types.Block)
	for i := 0; ; {
		next, v, err := c.DoNext(ctx, blk, i)
		if err != nil {
			return nil, err
		}
		if next == EndFlag {
			break
		}
		if types.IsConditionalTrue(v) {
			return v, nil
		}
		i = next
	}
	return types.NoneValue, nil
}
