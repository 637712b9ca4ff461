package evaluator

import (
	"context"
	"os"

	"github.com/sandrolain/gorebol/pkg/types"
)

func nativeDo(ctx context.Context, c *Call) (types.Value, error) {
	value := c.Arg("value")
	switch v := value.(type) {
	case types.Unset:
		return types.UnsetValue, nil
	case types.None:
		return types.NoneValue, nil
	case *types.Error:
		return nil, v
	case *types.Block:
		return c.doSeries(ctx, v)
	case *types.String:
		blk, err := c.load(v)
		if err != nil {
			return nil, err
		}
		return c.doSeries(ctx, blk)
	}
	return nil, types.Errorf(types.CodeUseEvalForEval, "do cannot run %s, use eval", value.Kind()).
		WithArgs(types.Datatype{Of: value.Kind()})
}

// load compiles the source held by a string, or read from a file!.
func (c *Call) load(s *types.String) (*types.Block, error) {
	source := s.Text()
	if s.Kind() == types.KindFile {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, types.Errorf(types.CodeCannotOpen, "cannot open %s", source).
				WithArgs(s).WithCause(err)
		}
		source = string(data)
	}
	script, err := c.t.ev.Compile(source)
	if err != nil {
		return nil, err
	}
	return script.Body(), nil
}

// doSeries runs a block or paren for DO, one expression at a time under
// /next.
func (c *Call) doSeries(ctx context.Context, blk *types.Block) (types.Value, error) {
	env := c.env
	if c.Ref("args") {
		frame := types.NewObject()
		frame.Define("args", c.Arg("arg"))
		env = env.NewChildContext(frame)
	}

	if !c.Ref("next") {
		return c.t.doBlock(ctx, env, blk)
	}

	word := c.Arg("var").(types.Word)
	next, v, err := c.t.doNext(ctx, env, blk, 0)
	switch {
	case err != nil:
		if serr := env.SetBinding(word.Name, blk); serr != nil {
			return nil, serr
		}
		return nil, err
	case next == EndFlag:
		if err := env.SetBinding(word.Name, blk.Skip(blk.Len())); err != nil {
			return nil, err
		}
		return types.UnsetValue, nil
	}
	if err := env.SetBinding(word.Name, blk.Skip(next)); err != nil {
		return nil, err
	}
	return v, nil
}

// nativeEval returns its argument; the evaluator then evaluates it inline
// because eval is marked Reevaluate.
func nativeEval(_ context.Context, c *Call) (types.Value, error) {
	return c.Arg("value"), nil
}

func nativeApply(ctx context.Context, c *Call) (types.Value, error) {
	fn := c.Arg("func").(*Function)
	blk := c.Arg("block").(*types.Block)
	values := blk.Values()
	if !c.Ref("only") {
		var err error
		if values, err = c.t.reduce(ctx, c.env, blk); err != nil {
			return nil, err
		}
	}
	return c.t.apply(ctx, c.env, fn, values)
}

// reduce evaluates each expression of blk and collects the results.
func (t *task) reduce(ctx context.Context, env *EvalContext, blk *types.Block) ([]types.Value, error) {
	var out []types.Value
	for i := 0; ; {
		next, v, err := t.doNext(ctx, env, blk, i)
		if err != nil {
			return nil, err
		}
		if next == EndFlag {
			return out, nil
		}
		out = append(out, v)
		i = next
	}
}

func nativeFail(ctx context.Context, c *Call) (types.Value, error) {
	switch reason := c.Arg("reason").(type) {
	case *types.Error:
		return nil, reason
	case *types.String:
		return nil, types.Errorf(types.CodeUser, "%s", reason.Text()).WithArgs(reason)
	case *types.Block:
		for _, item := range reason.Values() {
			if !failItemAllowed(c.env, item) {
				return nil, types.Errorf(types.CodeLimitedFail, "fail only takes strings, scalars, parens and words in blocks").
					WithArgs(item)
			}
		}
		values, err := c.t.reduce(ctx, c.env, reason)
		if err != nil {
			return nil, err
		}
		msg := types.Form(types.NewBlock(values...))
		return nil, types.Errorf(types.CodeUser, "%s", msg).WithArgs(types.Str(msg))
	}
	return nil, types.Errorf(types.CodeInvalidArg, "invalid fail reason")
}

// failItemAllowed keeps FAIL blocks from dispatching functions; paths and
// function words must be wrapped in parens.
func failItemAllowed(env *EvalContext, item types.Value) bool {
	k := item.Kind()
	switch {
	case k == types.KindString, k == types.KindParen, types.Scalar.Has(k):
		return true
	case k == types.KindWord:
		v, ok := env.GetBinding(item.(types.Word).Name)
		return !ok || !v.Kind().IsFunction()
	}
	return false
}

func nativeAlso(_ context.Context, c *Call) (types.Value, error) {
	return c.Arg("value1"), nil
}

func nativeComment(_ context.Context, _ *Call) (types.Value, error) {
	return types.UnsetValue, nil
}

func nativeReduce(ctx context.Context, c *Call) (types.Value, error) {
	blk, ok := c.Arg("value").(*types.Block)
	if !ok || blk.Kind() != types.KindBlock {
		return c.Arg("value"), nil
	}
	values, err := c.t.reduce(ctx, c.env, blk)
	if err != nil {
		return nil, err
	}
	return c.into(types.NewBlock(values...))
}

// into appends the items of result to the /into target when given.
func (c *Call) into(result *types.Block) (types.Value, error) {
	if !c.Ref("into") {
		return result, nil
	}
	target := c.Arg("target").(*types.Block)
	if err := target.Append(result.Values()...); err != nil {
		return nil, err
	}
	return target, nil
}

func nativeCompose(ctx context.Context, c *Call) (types.Value, error) {
	blk, ok := c.Arg("value").(*types.Block)
	if !ok || blk.Kind() != types.KindBlock {
		return c.Arg("value"), nil
	}
	values, err := c.compose(ctx, blk, c.Ref("deep"), c.Ref("only"))
	if err != nil {
		return nil, err
	}
	return c.into(types.NewBlock(values...))
}

// compose evaluates the parens of blk. Block results are spliced unless
// only is set; unset results are dropped.
func (c *Call) compose(ctx context.Context, blk *types.Block, deep, only bool) ([]types.Value, error) {
	var out []types.Value
	for _, item := range blk.Values() {
		inner, ok := item.(*types.Block)
		if !ok {
			out = append(out, item)
			continue
		}
		switch {
		case inner.Kind() == types.KindParen:
			v, err := c.DoBlock(ctx, inner)
			if err != nil {
				return nil, err
			}
			switch r := v.(type) {
			case types.Unset:
			case *types.Block:
				if only || r.Kind() != types.KindBlock {
					out = append(out, r)
				} else {
					out = append(out, r.Values()...)
				}
			default:
				out = append(out, v)
			}
		case deep:
			values, err := c.compose(ctx, inner, deep, only)
			if err != nil {
				return nil, err
			}
			out = append(out, types.NewBlock(values...))
		default:
			out = append(out, item)
		}
	}
	return out, nil
}
