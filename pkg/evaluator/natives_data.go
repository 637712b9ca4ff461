package evaluator

import (
	"context"
	"strings"

	"github.com/sandrolain/gorebol/pkg/types"
)

func nativeSet(_ context.Context, c *Call) (types.Value, error) {
	value := c.Arg("value")
	if types.IsUnset(value) && !c.Ref("any") {
		return nil, types.Errorf(types.CodeNeedValue, "set needs a value, use set/any for unset")
	}

	switch w := c.Arg("word").(type) {
	case types.Word:
		return value, c.env.SetBinding(w.Name, value)
	case *types.Block:
		// set [a b] [1 2] assigns pairwise; a single value goes to every word
		values, spread := value.(*types.Block)
		for i, item := range w.Values() {
			word, ok := item.(types.Word)
			if !ok || !word.K.IsAnyWord() {
				return nil, types.Errorf(types.CodeInvalidArg, "set cannot assign to %s", item.Kind()).WithArgs(item)
			}
			v := value
			if spread {
				if v = values.At(i); v == nil {
					v = types.NoneValue
				}
			}
			if err := c.env.SetBinding(word.Name, v); err != nil {
				return nil, err
			}
		}
	}
	return value, nil
}

func nativeGet(_ context.Context, c *Call) (types.Value, error) {
	w := c.Arg("word").(types.Word)
	v, err := c.env.Get(w.Name)
	if err != nil {
		return nil, err
	}
	if types.IsUnset(v) && !c.Ref("any") {
		return nil, types.Errorf(types.CodeNoValue, "%s has no value", w.Name).WithArgs(w)
	}
	return v, nil
}

func nativeValueQ(_ context.Context, c *Call) (types.Value, error) {
	v, ok := c.env.GetBinding(c.Arg("value").(types.Word).Name)
	return types.LogicOf(ok && !types.IsUnset(v)), nil
}

func nativeTypeQ(_ context.Context, c *Call) (types.Value, error) {
	k := c.Arg("value").Kind()
	if c.Ref("word") {
		return types.NewWord(types.KindWord, k.String()), nil
	}
	return types.Datatype{Of: k}, nil
}

func nativeQuote(_ context.Context, c *Call) (types.Value, error) {
	return c.Arg("value"), nil
}

func nativeNot(_ context.Context, c *Call) (types.Value, error) {
	return types.LogicOf(types.IsConditionalFalse(c.Arg("value"))), nil
}

func kindPredicate(k types.Kind) NativeImpl {
	return func(_ context.Context, c *Call) (types.Value, error) {
		return types.LogicOf(c.Arg("value").Kind() == k), nil
	}
}

func nativeAppend(_ context.Context, c *Call) (types.Value, error) {
	value := c.Arg("value")
	switch s := c.Arg("series").(type) {
	case *types.Block:
		var err error
		if blk, ok := value.(*types.Block); ok && !c.Ref("only") {
			err = s.Append(blk.Values()...)
		} else {
			err = s.Append(value)
		}
		if err != nil {
			return nil, err
		}
		return s, nil
	case *types.String:
		if err := s.Append(types.Form(value)); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, types.Errorf(types.CodeInvalidArg, "cannot append to %s", c.Arg("series").Kind())
}

func nativeCopy(_ context.Context, c *Call) (types.Value, error) {
	switch v := c.Arg("value").(type) {
	case *types.Block:
		return v.Copy(c.Ref("deep")), nil
	case *types.String:
		return v.Copy(), nil
	case *types.Object:
		return v.Copy(), nil
	}
	return c.Arg("value"), nil
}

func nativeLength(_ context.Context, c *Call) (types.Value, error) {
	switch s := c.Arg("series").(type) {
	case *types.Block:
		return types.Integer(s.Len()), nil
	case *types.String:
		return types.Integer(s.Len()), nil
	}
	return types.Integer(0), nil
}

func nativeFirst(_ context.Context, c *Call) (types.Value, error) {
	return pick(c.Arg("series"), 1)
}

func nativePick(_ context.Context, c *Call) (types.Value, error) {
	return pick(c.Arg("series"), int(c.Arg("index").(types.Integer)))
}

// pick returns the item at a 1-based index, none when out of range.
func pick(series types.Value, i int) (types.Value, error) {
	if i < 1 {
		return types.NoneValue, nil
	}
	switch s := series.(type) {
	case *types.Block:
		if v := s.At(i - 1); v != nil {
			return v, nil
		}
	case *types.String:
		text := []rune(s.Text())
		if i <= len(text) {
			return types.NewString(types.KindString, string(text[i-1])), nil
		}
	}
	return types.NoneValue, nil
}

func nativeSelect(_ context.Context, c *Call) (types.Value, error) {
	value := c.Arg("value")
	switch s := c.Arg("series").(type) {
	case *types.Object:
		if w, ok := value.(types.Word); ok {
			if v, ok := s.Get(w.Name); ok {
				return v, nil
			}
		}
	case *types.Block:
		values := s.Values()
		for i := 0; i+1 < len(values); i++ {
			eq, err := Compare(values[i], value, Equal)
			if err != nil {
				return nil, err
			}
			if eq {
				return values[i+1], nil
			}
		}
	}
	return types.NoneValue, nil
}

func nativeNext(_ context.Context, c *Call) (types.Value, error) {
	return c.Arg("series").(*types.Block).Skip(1), nil
}

func nativeHead(_ context.Context, c *Call) (types.Value, error) {
	blk := c.Arg("series").(*types.Block)
	return blk.Skip(-blk.Index()), nil
}

func nativeTailQ(_ context.Context, c *Call) (types.Value, error) {
	switch s := c.Arg("series").(type) {
	case *types.Block:
		return types.LogicOf(s.Len() == 0), nil
	case *types.String:
		return types.LogicOf(s.Len() == 0), nil
	}
	return types.True, nil
}

func nativeJoin(_ context.Context, c *Call) (types.Value, error) {
	rest := c.Arg("rest")
	switch v := c.Arg("value").(type) {
	case *types.Block:
		out := v.Copy(false)
		if blk, ok := rest.(*types.Block); ok {
			return out, out.Append(blk.Values()...)
		}
		return out, out.Append(rest)
	case *types.String:
		return types.NewString(v.Kind(), v.Text()+joinText(rest)), nil
	default:
		return types.Str(types.Form(v) + joinText(rest)), nil
	}
}

func joinText(v types.Value) string {
	if blk, ok := v.(*types.Block); ok {
		var sb strings.Builder
		for _, item := range blk.Values() {
			sb.WriteString(types.Form(item))
		}
		return sb.String()
	}
	return types.Form(v)
}

func nativeRejoin(ctx context.Context, c *Call) (types.Value, error) {
	values, err := c.t.reduce(ctx, c.env, c.Arg("block").(*types.Block))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return types.Str(""), nil
	}
	if blk, ok := values[0].(*types.Block); ok {
		out := blk.Copy(false)
		return out, out.Append(values[1:]...)
	}
	var sb strings.Builder
	for _, v := range values {
		sb.WriteString(types.Form(v))
	}
	if s, ok := values[0].(*types.String); ok {
		return types.NewString(s.Kind(), sb.String()), nil
	}
	return types.Str(sb.String()), nil
}

// nativeContext evaluates blk in a new object whose set-words are its
// fields.
func nativeContext(ctx context.Context, c *Call) (types.Value, error) {
	blk := c.Arg("blk").(*types.Block)
	obj := types.NewObject()
	for _, item := range blk.Values() {
		if w, ok := item.(types.Word); ok && w.K == types.KindSetWord {
			if _, exists := obj.Var(w.Name); !exists {
				obj.Define(w.Name, types.NoneValue)
			}
		}
	}
	if _, err := c.t.doBlock(ctx, c.env.NewChildContext(obj), blk); err != nil {
		return nil, err
	}
	return obj, nil
}
