package evaluator

import (
	"context"

	"github.com/sandrolain/gorebol/pkg/types"
)

// evalPath evaluates a path. A function met along the way is invoked with
// the remaining parts as refinements.
func (t *task) evalPath(ctx context.Context, env *EvalContext, p *types.Path, blk *types.Block, next int) (int, types.Value, error) {
	v, err := t.pathHead(env, p)
	if err != nil {
		return ThrownFlag, nil, err
	}
	for i := 1; i < len(p.Parts); i++ {
		if fn, ok := v.(*Function); ok {
			return t.invokeReeval(ctx, env, fn, p.Parts[i:], blk, next)
		}
		if v, err = t.selectPart(ctx, env, p, v, p.Parts[i]); err != nil {
			return ThrownFlag, nil, err
		}
	}
	if fn, ok := v.(*Function); ok {
		return t.invokeReeval(ctx, env, fn, nil, blk, next)
	}
	return next, v, nil
}

// getPath walks a path without invoking functions.
func (t *task) getPath(ctx context.Context, env *EvalContext, p *types.Path) (types.Value, error) {
	v, err := t.pathHead(env, p)
	if err != nil {
		return nil, err
	}
	for _, part := range p.Parts[1:] {
		if v, err = t.selectPart(ctx, env, p, v, part); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// setPath assigns through a path: an object word or a block position.
func (t *task) setPath(ctx context.Context, env *EvalContext, p *types.Path, value types.Value) error {
	if len(p.Parts) < 2 {
		return badPath(p)
	}
	parent, err := t.getPath(ctx, env, &types.Path{K: types.KindGetPath, Parts: p.Parts[:len(p.Parts)-1]})
	if err != nil {
		return err
	}
	sel, err := t.selector(ctx, env, p.Parts[len(p.Parts)-1])
	if err != nil {
		return err
	}

	switch x := parent.(type) {
	case *types.Object:
		if w, ok := sel.(types.Word); ok {
			return x.Set(w.Name, value)
		}
	case *types.Block:
		if n, ok := sel.(types.Integer); ok {
			return x.Poke(int(n)-1, value)
		}
	}
	return badPath(p)
}

func (t *task) pathHead(env *EvalContext, p *types.Path) (types.Value, error) {
	if len(p.Parts) == 0 {
		return nil, badPath(p)
	}
	w, ok := p.Parts[0].(types.Word)
	if !ok {
		return nil, badPath(p)
	}
	return env.Get(w.Name)
}

// selector resolves a path part: parens are evaluated, get-words looked up.
func (t *task) selector(ctx context.Context, env *EvalContext, part types.Value) (types.Value, error) {
	switch x := part.(type) {
	case *types.Block:
		if x.Kind() == types.KindParen {
			return t.doBlock(ctx, env, x)
		}
	case types.Word:
		if x.K == types.KindGetWord {
			return env.Get(x.Name)
		}
	}
	return part, nil
}

func (t *task) selectPart(ctx context.Context, env *EvalContext, p *types.Path, v, part types.Value) (types.Value, error) {
	sel, err := t.selector(ctx, env, part)
	if err != nil {
		return nil, err
	}

	switch x := v.(type) {
	case *types.Object:
		if w, ok := sel.(types.Word); ok {
			if slot, ok := x.Var(w.Name); ok {
				if slot.Hidden {
					return nil, types.Errorf(types.CodeHidden, "%s is hidden", w.Name)
				}
				return slot.Value, nil
			}
		}
	case *types.Error:
		if w, ok := sel.(types.Word); ok {
			if f, ok := x.Field(w.Canon()); ok {
				return f, nil
			}
		}
	case *types.Block:
		switch s := sel.(type) {
		case types.Integer:
			if item := x.At(int(s) - 1); item != nil && s > 0 {
				return item, nil
			}
			return types.NoneValue, nil
		case types.Word:
			vals := x.Values()
			for i, item := range vals {
				if w, ok := item.(types.Word); ok && w.Canon() == s.Canon() {
					if i+1 < len(vals) {
						return vals[i+1], nil
					}
					return types.NoneValue, nil
				}
			}
			return types.NoneValue, nil
		}
	case *types.String:
		if n, ok := sel.(types.Integer); ok {
			text := []rune(x.Text())
			if n < 1 || int(n) > len(text) {
				return types.NoneValue, nil
			}
			return types.NewString(types.KindString, string(text[n-1])), nil
		}
	}
	return nil, badPath(p)
}

func badPath(p *types.Path) error {
	return types.Errorf(types.CodeBadPath, "cannot evaluate path %s", types.Mold(p)).WithArgs(p)
}
