package evaluator

import (
	"context"
	"iter"
	"math"
	"slices"

	"github.com/sandrolain/gorebol/pkg/types"
)

// iterate runs one loop body. BREAK ends the loop with its payload as the
// result; CONTINUE ends only this iteration.
func (c *Call) iterate(ctx context.Context, env *EvalContext, body *types.Block) (v types.Value, done bool, err error) {
	v, err = c.t.doBlock(ctx, env, body)
	if err == nil {
		return v, false, nil
	}
	th, ok := AsThrow(err)
	if !ok {
		return nil, false, err
	}
	switch th.Origin {
	case OriginBreak:
		return th.Take(), true, nil
	case OriginContinue:
		return th.Take(), false, nil
	}
	return nil, false, err
}

func countOf(v types.Value) int64 {
	switch n := v.(type) {
	case types.Integer:
		return int64(n)
	case types.Decimal:
		return int64(math.Floor(float64(n)))
	case types.Percent:
		return int64(math.Floor(float64(n)))
	}
	return 0
}

func nativeLoop(ctx context.Context, c *Call) (types.Value, error) {
	body := c.Arg("block").(*types.Block)
	out := types.Value(types.NoneValue)
	for n := countOf(c.Arg("count")); n > 0; n-- {
		v, done, err := c.iterate(ctx, c.env, body)
		if err != nil {
			return nil, err
		}
		out = v
		if done {
			break
		}
	}
	return out, nil
}

// items returns what REPEAT and FOREACH step through in a series.
func items(series types.Value) []types.Value {
	switch s := series.(type) {
	case *types.Block:
		return s.Values()
	case *types.String:
		runes := []rune(s.Text())
		out := make([]types.Value, len(runes))
		for i, r := range runes {
			out[i] = types.NewString(types.KindString, string(r))
		}
		return out
	}
	return nil
}

// each runs body once per value with word bound to it in a fresh frame.
func (c *Call) each(ctx context.Context, word types.Word, values iter.Seq[types.Value], body *types.Block) (types.Value, error) {
	frame := types.NewObject()
	slot := frame.Define(word.Name, types.NoneValue)
	env := c.env.NewChildContext(frame)

	out := types.Value(types.NoneValue)
	var err error
	values(func(v types.Value) bool {
		slot.Value = v
		var done bool
		out, done, err = c.iterate(ctx, env, body)
		return err == nil && !done
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func nativeRepeat(ctx context.Context, c *Call) (types.Value, error) {
	word := c.Arg("word").(types.Word)
	body := c.Arg("body").(*types.Block)
	value := c.Arg("value")

	if value.Kind().IsNumber() {
		n := countOf(value)
		return c.each(ctx, word, func(yield func(types.Value) bool) {
			for i := int64(1); i <= n; i++ {
				if !yield(types.Integer(i)) {
					return
				}
			}
		}, body)
	}
	return c.each(ctx, word, slices.Values(items(value)), body)
}

func nativeForeach(ctx context.Context, c *Call) (types.Value, error) {
	body := c.Arg("body").(*types.Block)
	values := items(c.Arg("data"))

	spec, ok := c.Arg("word").(*types.Block)
	if !ok {
		return c.each(ctx, c.Arg("word").(types.Word), slices.Values(values), body)
	}
	if spec.Len() == 0 {
		return nil, types.Errorf(types.CodeInvalidArg, "foreach needs at least one word")
	}
	words := make([]types.Word, spec.Len())
	for i, v := range spec.Values() {
		w, ok := v.(types.Word)
		if !ok || w.K != types.KindWord {
			return nil, types.Errorf(types.CodeInvalidArg, "foreach cannot bind %s", types.Mold(v)).WithArgs(v)
		}
		words[i] = w
	}
	return c.eachGroup(ctx, words, values, body)
}

// eachGroup binds words to successive groups of values. A short final group
// leaves the remaining words none.
func (c *Call) eachGroup(ctx context.Context, words []types.Word, values []types.Value, body *types.Block) (types.Value, error) {
	frame := types.NewObject()
	slots := make([]*types.Var, len(words))
	for i, w := range words {
		slots[i] = frame.Define(w.Name, types.NoneValue)
	}
	env := c.env.NewChildContext(frame)

	out := types.Value(types.NoneValue)
	for i := 0; i < len(values); i += len(words) {
		for j, slot := range slots {
			slot.Value = types.NoneValue
			if i+j < len(values) {
				slot.Value = values[i+j]
			}
		}
		v, done, err := c.iterate(ctx, env, body)
		if err != nil {
			return nil, err
		}
		out = v
		if done {
			break
		}
	}
	return out, nil
}

func nativeWhile(ctx context.Context, c *Call) (types.Value, error) {
	cond := c.Arg("cond-block").(*types.Block)
	body := c.Arg("body-block").(*types.Block)
	out := types.Value(types.NoneValue)
	for {
		ok, done, err := c.iterate(ctx, c.env, cond)
		if err != nil {
			return nil, err
		}
		if done {
			return ok, nil
		}
		if !types.IsConditionalTrue(ok) {
			return out, nil
		}

		v, done, err := c.iterate(ctx, c.env, body)
		if err != nil {
			return nil, err
		}
		out = v
		if done {
			return out, nil
		}
	}
}

func nativeUntil(ctx context.Context, c *Call) (types.Value, error) {
	body := c.Arg("block").(*types.Block)
	for {
		v, done, err := c.iterate(ctx, c.env, body)
		if err != nil {
			return nil, err
		}
		if done || types.IsConditionalTrue(v) {
			return v, nil
		}
	}
}

func nativeForever(ctx context.Context, c *Call) (types.Value, error) {
	body := c.Arg("body").(*types.Block)
	for {
		v, done, err := c.iterate(ctx, c.env, body)
		if err != nil {
			return nil, err
		}
		if done {
			return v, nil
		}
	}
}
