package evaluator

import (
	"context"

	"github.com/sandrolain/gorebol/pkg/types"
)

// branch evaluates a block branch unless /only is set. Other values are
// returned as they are.
func (c *Call) branch(ctx context.Context, v types.Value) (types.Value, error) {
	if blk, ok := v.(*types.Block); ok && blk.Kind() == types.KindBlock && !c.Ref("only") {
		return c.DoBlock(ctx, blk)
	}
	return v, nil
}

func nativeIf(ctx context.Context, c *Call) (types.Value, error) {
	if types.IsConditionalTrue(c.Arg("condition")) {
		return c.branch(ctx, c.Arg("branch"))
	}
	return c.noValue(), nil
}

func nativeUnless(ctx context.Context, c *Call) (types.Value, error) {
	if types.IsConditionalFalse(c.Arg("condition")) {
		return c.branch(ctx, c.Arg("branch"))
	}
	return c.noValue(), nil
}

func nativeEither(ctx context.Context, c *Call) (types.Value, error) {
	if types.IsConditionalTrue(c.Arg("condition")) {
		return c.branch(ctx, c.Arg("true-branch"))
	}
	return c.branch(ctx, c.Arg("false-branch"))
}

// nativeCase walks condition/body pairs. Both slots are evaluated as
// expressions, so a body that is not a literal block still runs even when
// its condition is false.
func nativeCase(ctx context.Context, c *Call) (types.Value, error) {
	blk := c.Arg("block").(*types.Block)
	out := c.noValue()
	for i := 0; ; {
		next, cond, err := c.DoNext(ctx, blk, i)
		if err != nil {
			return nil, err
		}
		if next == EndFlag {
			return out, nil
		}
		if types.IsUnset(cond) {
			return nil, types.Errorf(types.CodeNoReturn, "case condition did not return a value").
				WithArgs(blk.At(i))
		}

		after, body, err := c.DoNext(ctx, blk, next)
		if err != nil {
			return nil, err
		}
		if after == EndFlag {
			return nil, types.Errorf(types.CodePastEnd, "case condition has no branch").WithArgs(blk.At(i))
		}

		if types.IsConditionalTrue(cond) {
			if out, err = c.branch(ctx, body); err != nil {
				return nil, err
			}
			if !c.Ref("all") {
				return out, nil
			}
		}
		i = after
	}
}

// nativeSwitch scans cases for keys equal to value and runs the block that
// follows a match.
func nativeSwitch(ctx context.Context, c *Call) (types.Value, error) {
	value := c.Arg("value")
	cases := c.Arg("cases").(*types.Block).Values()
	legacy := c.t.ev.opts.Legacy
	strict := Equal
	if c.Ref("strict") {
		strict = StrictEqual
	}

	out := c.noValue()
	matched := false
	for i := 0; i < len(cases); i++ {
		if blk, ok := cases[i].(*types.Block); ok && blk.Kind() == types.KindBlock {
			out = c.noValue()
			continue
		}

		key := cases[i]
		if !legacy.NoSwitchEvals {
			var err error
			if key, err = c.switchKey(ctx, key); err != nil {
				return nil, err
			}
		}
		// an unmatched key is the fallthrough result until a block follows
		out = key
		eq, err := Compare(value, key, strict)
		if err != nil {
			return nil, err
		}
		if !eq {
			continue
		}

		matched = true
		for i++; i < len(cases); i++ {
			if _, ok := cases[i].(*types.Block); ok && cases[i].Kind() == types.KindBlock {
				break
			}
		}
		if i == len(cases) {
			return types.UnsetValue, nil
		}
		if out, err = c.DoBlock(ctx, cases[i].(*types.Block)); err != nil {
			return nil, err
		}
		if !c.Ref("all") {
			return out, nil
		}
	}

	if !matched && c.Ref("default") {
		return c.DoBlock(ctx, c.Arg("case").(*types.Block))
	}
	if legacy.NoSwitchFallthrough {
		return types.NoneValue, nil
	}
	return out, nil
}

// switchKey evaluates parens, get-words and get-paths used as SWITCH keys.
func (c *Call) switchKey(ctx context.Context, key types.Value) (types.Value, error) {
	switch k := key.(type) {
	case *types.Block:
		if k.Kind() == types.KindParen {
			return c.DoBlock(ctx, k)
		}
	case types.Word:
		if k.K == types.KindGetWord {
			return c.env.Get(k.Name)
		}
	case *types.Path:
		if k.K == types.KindGetPath {
			return c.t.getPath(ctx, c.env, k)
		}
	}
	return key, nil
}
